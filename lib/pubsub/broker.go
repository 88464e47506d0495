package pubsub

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

const (
	// DefaultBacklog is the number of undelivered messages a subscriber may
	// accumulate before it is dropped
	DefaultBacklog = 1024
)

var (
	// ErrLagged ends a subscription whose backlog overflowed
	ErrLagged = errors.New("pubsub: subscriber lagged behind and was dropped")
	// ErrClosed ends a subscription that was closed by its owner
	ErrClosed = errors.New("pubsub: subscription closed")
)

// Message is a single published payload together with its channel name.
// Payload is shared between all receivers and must not be modified.
type Message struct {
	Channel string
	Payload []byte
}

// --------------------------------------------------------------------------
// Broker
// --------------------------------------------------------------------------

// Broker is a registry of named channels. Channels are created on the first
// subscription and removed again when their last subscriber leaves.
// A Broker is safe for concurrent use.
type Broker struct {
	channels *xsync.MapOf[string, *channel]
	backlog  int
	nextID   atomic.Uint64
}

// channel holds the live subscribers of one channel name
type channel struct {
	mu          sync.Mutex
	subscribers map[uint64]*Subscription
}

// NewBroker creates a broker whose subscribers buffer up to backlog messages.
// A backlog <= 0 selects DefaultBacklog.
func NewBroker(backlog int) *Broker {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}
	return &Broker{
		channels: xsync.NewMapOf[string, *channel](),
		backlog:  backlog,
	}
}

// Subscribe registers a new subscription for the given channels. Duplicate
// names are subscribed once. The returned subscription receives every message
// published to any of its channels after this call returns.
func (b *Broker) Subscribe(channels ...string) *Subscription {
	names := make([]string, 0, len(channels))
	seen := make(map[string]struct{}, len(channels))
	for _, name := range channels {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	id := b.nextID.Add(1)
	sub := &Subscription{
		channels: names,
		messages: make(chan Message, b.backlog),
	}
	sub.detach = func() {
		for _, name := range names {
			b.remove(name, id)
		}
	}

	for _, name := range names {
		b.channels.Compute(name, func(ch *channel, loaded bool) (*channel, bool) {
			if !loaded {
				ch = &channel{subscribers: make(map[uint64]*Subscription)}
			}
			ch.mu.Lock()
			ch.subscribers[id] = sub
			ch.mu.Unlock()
			return ch, false
		})
	}
	return sub
}

// Publish delivers payload to every current subscriber of the channel and
// returns the number of subscribers that received it. Without subscribers the
// message is discarded and 0 is returned. Publish never blocks on a slow
// subscriber: a subscriber with a full backlog is dropped with ErrLagged.
func (b *Broker) Publish(name string, payload []byte) int {
	ch, ok := b.channels.Load(name)
	if !ok {
		return 0
	}

	msg := Message{Channel: name, Payload: payload}
	delivered := 0
	var dropped []*Subscription

	ch.mu.Lock()
	for _, sub := range ch.subscribers {
		if sub.deliver(msg) {
			delivered++
		} else {
			dropped = append(dropped, sub)
		}
	}
	ch.mu.Unlock()

	for _, sub := range dropped {
		sub.detach()
	}
	return delivered
}

// Subscribers returns the number of subscribers of a channel
func (b *Broker) Subscribers(name string) int {
	ch, ok := b.channels.Load(name)
	if !ok {
		return 0
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.subscribers)
}

// Channels returns the number of channels with at least one subscriber
func (b *Broker) Channels() int {
	return b.channels.Size()
}

// remove deletes a subscriber from a channel and drops the channel once it is empty
func (b *Broker) remove(name string, id uint64) {
	b.channels.Compute(name, func(ch *channel, loaded bool) (*channel, bool) {
		if !loaded {
			return nil, true
		}
		ch.mu.Lock()
		delete(ch.subscribers, id)
		empty := len(ch.subscribers) == 0
		ch.mu.Unlock()
		return ch, empty
	})
}

// --------------------------------------------------------------------------
// Subscription
// --------------------------------------------------------------------------

// Subscription is the consumer side of a Broker.Subscribe call
type Subscription struct {
	channels []string
	messages chan Message
	detach   func()

	mu     sync.Mutex // guards err and sends on messages
	err    error
	closed bool
}

// Messages returns the stream of received messages. The channel is closed
// when the subscription ends, Err then reports why.
func (s *Subscription) Messages() <-chan Message {
	return s.messages
}

// Channels returns the channel names of this subscription
func (s *Subscription) Channels() []string {
	return append([]string(nil), s.channels...)
}

// Err returns nil while the subscription is active, ErrLagged if it was
// dropped by the broker and ErrClosed if Close was called
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the subscription and unregisters it from all channels.
// Calling Close more than once is a no-op.
func (s *Subscription) Close() {
	if s.end(ErrClosed) {
		s.detach()
	}
}

// deliver enqueues msg without blocking. It returns false if the subscription
// is gone, in which case the caller must detach it.
func (s *Subscription) deliver(msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.messages <- msg:
		return true
	default:
		s.closeLocked(ErrLagged)
		return false
	}
}

// end marks the subscription as finished. It reports whether this call ended it.
func (s *Subscription) end(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closeLocked(err)
	return true
}

func (s *Subscription) closeLocked(err error) {
	s.closed = true
	s.err = err
	close(s.messages)
}
