// Package testing provides standardised tests and benchmarks for
// implementations of the store.IStore interface.
//
// The package contains:
//   - RunIStoreTests: a conformance suite covering copy semantics, edge cases,
//     pub/sub fan-out, namespace separation and concurrent access
//   - RunIStoreBenchmarks: throughput benchmarks for the common operations
//
// Example usage:
//
//	factory := func() store.IStore {
//		return lstore.NewLocalStore(0)
//	}
//
//	storetesting.RunIStoreTests(t, "LocalStore", factory)
//	storetesting.RunIStoreBenchmarks(b, "LocalStore", factory)
package testing
