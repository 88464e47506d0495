// Package tcp implements the TCP connectors of the rKV transport layer.
//
// Key Components:
//
//   - clientConnector: dials "host:port" endpoints (transport.IClientConnector)
//
//   - serverConnector: listens on "host:port" (transport.IServerConnector)
//
//   - UpgradeConnection: applies TCP_NODELAY, keep-alive, linger and socket
//     buffer sizes. It is shared by both connectors and by the tls transport.
package tcp
