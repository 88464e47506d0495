// Package rpc contains the network side of rKV: the server, the clients and
// everything between them and the socket.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures of server, client and sentinel, and
//     the logger factory shared by all packages.
//
//   - connection: Frame oriented reads and writes on a byte stream. This is
//     the only place that deals with partial reads.
//
//   - transport: Pluggable listeners and dialers (tcp, unix sockets, tls).
//
//   - server: The accept loop and the per connection request handling.
//
//   - client: A client for a single node, the subscriber and the liveness
//     prober used by the failover monitor.
//
//   - cluster: Key based routing over a fixed set of nodes.
package rpc
