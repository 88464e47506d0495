// Package server implements the rKV server.
//
// A Server listens on one transport (tcp, unix or tls) and serves every
// accepted connection in its own goroutine. All connections share one
// in-memory store. Requests on a connection are handled strictly in order,
// one response per request:
//
//	PING [msg]            -> +PONG or the echoed message as bulk string
//	GET key               -> bulk string, or null if the key is unset
//	SET key value         -> +OK
//	PUBLISH channel msg   -> number of subscribers that received msg
//	SUBSCRIBE channel...  -> one confirmation per distinct channel, then a
//	                         stream of ["message", channel, payload] frames
//	anything else         -> -unknown command '<name>'
//
// A frame that violates the protocol is answered with a best effort error
// frame and only that connection is closed. A subscriber that cannot keep up
// with its channels is dropped and its connection closed.
//
// With an append-only log configured every SET is appended to the log in the
// order it was applied. On start the log is replayed into the empty store.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Endpoint:          "0.0.0.0:6379",
//	  SubscriberBacklog: pubsub.DefaultBacklog,
//	  AOF:               common.AOFConf{Path: "rkv.aof", Replay: true},
//	  LogLevel:          "info",
//	}
//
//	s := server.NewServer(config, tcp.NewServerConnector())
//	if err := s.Serve(ctx); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Cancelling ctx stops the server: the listener is closed and all open
// connections are dropped.
//
// Metrics:
//
//	If MetricsEndpoint is set the server exposes Prometheus metrics on
//	http://<MetricsEndpoint>/metrics.
package server
