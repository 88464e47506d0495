// Package cmd implements the command-line interface of rKV. It provides a
// hierarchical command structure for running the server and the sentinel and
// for talking to them as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Start and configure the rKV server
//   - kv: Key-value and pub/sub operations on a single node (get, set, publish, subscribe, perf)
//   - cluster: The same operations routed over several nodes by key
//   - sentinel: Run the failover monitor
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set as an environment variable RKV_<FLAG>, with
// dashes replaced by underscores. Variables are also read from .env and
// .env.local.
//
// See rkv -help for a list of all commands.
package cmd
