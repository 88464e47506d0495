// Package transport defines how rKV nodes and clients obtain byte-stream
// connections. The protocol layer (rpc/connection) only needs a net.Conn, so
// every transport reduces to two small connector interfaces.
//
// Key Components:
//
//   - IServerConnector: creates the listener of a server and tunes accepted
//     connections (socket buffers, TCP options).
//
//   - IClientConnector: dials one connection to an endpoint and tunes it.
//
// Implementations:
//
//   - tcp: plain TCP sockets ("host:port")
//   - unix: unix domain sockets (a file system path)
//   - tls: TCP wrapped in TLS using certificate files from common.TLSConf
package transport
