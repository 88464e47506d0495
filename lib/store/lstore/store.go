package lstore

import (
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/rKV/lib/pubsub"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

type storeImpl struct {
	mu     sync.RWMutex
	data   map[string][]byte
	index  atomic.Uint64
	broker *pubsub.Broker
}

// NewLocalStore creates a new in-memory store. backlog is the number of
// messages a subscriber may buffer before it is dropped (<= 0 for the default).
func NewLocalStore(backlog int) store.IStore {
	return &storeImpl{
		data:   make(map[string][]byte),
		broker: pubsub.NewBroker(backlog),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return clone(val), true
}

func (s *storeImpl) Set(key string, value []byte) {
	val := clone(value)
	s.mu.Lock()
	s.data[key] = val
	s.index.Add(1)
	s.mu.Unlock()
}

func (s *storeImpl) Publish(channel string, message []byte) int {
	n := s.broker.Publish(channel, clone(message))
	Logger.Debugf("published %d bytes on %q to %d subscribers", len(message), channel, n)
	return n
}

func (s *storeImpl) Subscribe(channels ...string) *pubsub.Subscription {
	return s.broker.Subscribe(channels...)
}

func (s *storeImpl) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *storeImpl) Index() uint64 {
	return s.index.Load()
}

func (s *storeImpl) Snapshot() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		snapshot[k] = clone(v)
	}
	return snapshot
}

// clone returns a copy of b that is never nil
func clone(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
