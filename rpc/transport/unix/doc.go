// Package unix implements the unix domain socket connectors of the rKV
// transport layer, for clients running on the same machine as the server.
//
// Key Components:
//
//   - clientConnector: dials a socket path
//
//   - serverConnector: removes a stale socket file and listens on the path
//
// Only the socket buffer sizes of common.SocketConf apply to this transport.
package unix
