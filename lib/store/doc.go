// Package store defines the IStore interface, the single piece of state that
// all connection handlers of an rKV server share.
//
// An IStore combines two independent namespaces:
//
//   - Keys: a map from string keys to opaque byte values. Set is an atomic
//     upsert (last write wins), Get returns an independent copy of the value.
//
//   - Channels: a pub/sub registry. Publish fans a message out to all current
//     subscribers of a channel, Subscribe returns a pubsub.Subscription.
//
// The store is created once per server and passed explicitly to every
// handler; there is no global instance.
//
// Implementations:
//
//	- Local Store (lstore): an in-memory map guarded by a reader/writer lock
//	  plus a pubsub.Broker. Available in the
//	  "github.com/ValentinKolb/rKV/lib/store/lstore" package.
//
// The conformance test suite in "github.com/ValentinKolb/rKV/lib/store/testing"
// runs against any implementation.
package store
