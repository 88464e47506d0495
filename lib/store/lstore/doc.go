// Package lstore implements the local, in-memory store.IStore used by the rKV
// server. Data lives only in memory; durability is added on top by the
// append-only log (see lib/aof).
//
// Implementation Details:
//
//   - Key-value map: a single map guarded by a sync.RWMutex. Any number of
//     readers proceed in parallel, a writer excludes everybody else. Values
//     are copied on the way in and on the way out, so callers can never
//     alias the stored bytes.
//
//   - Write index: an atomic counter incremented by every Set. It is a cheap
//     way to tell whether the store changed (e.g. after replaying a log).
//
//   - Pub/sub: delegated to a pubsub.Broker. Channel names do not share the
//     key namespace.
//
// Usage Example:
//
//	st := lstore.NewLocalStore(0)
//	st.Set("foo", []byte("bar"))
//	value, ok := st.Get("foo")
//
//	sub := st.Subscribe("news")
//	defer sub.Close()
//	st.Publish("news", []byte("hello")) // == 1
package lstore
