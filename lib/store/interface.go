package store

import (
	"github.com/ValentinKolb/rKV/lib/pubsub"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the shared state of a server: the key-value map and the pub/sub
// channel registry. One instance is handed to every connection handler.
// Implementations must be safe for concurrent use. A reader never observes
// a partially applied write.
type IStore interface {
	// Get returns a copy of the value stored under key. The boolean return
	// value indicates whether the key exists.
	Get(key string) (value []byte, loaded bool)
	// Set inserts or replaces the value of key. The value is copied.
	Set(key string, value []byte)
	// Publish delivers message to all current subscribers of channel and
	// returns how many received it. Without subscribers the message is discarded.
	Publish(channel string, message []byte) int
	// Subscribe registers a subscription for the given channels
	Subscribe(channels ...string) *pubsub.Subscription
	// Len returns the number of keys
	Len() int
	// Index returns the number of writes applied so far
	Index() uint64
	// Snapshot returns a copy of all key-value pairs
	Snapshot() map[string][]byte
}

// Factory creates a new, empty store
type Factory func() IStore
