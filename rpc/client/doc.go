// Package client implements the rKV client for a single node.
//
// A Client owns one connection. Every request writes one command frame and
// reads exactly one response frame; the response shape is validated against
// the request:
//
//	GET     -> bulk string or null
//	SET     -> simple string "OK"
//	PUBLISH -> integer
//	PING    -> "PONG" or the echoed message
//
// Error frames become a *ServerError, any other unexpected frame an
// *UnexpectedResponseError. Transport failures leave the client broken; the
// cluster router uses IsServerError to decide whether a cached client can
// still be used.
//
// Subscribe turns the client into a Subscriber that streams messages until
// the connection is closed.
//
// Usage Example:
//
//	c, err := client.Connect(ctx, "localhost:6379", config, tcp.NewClientConnector())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	_ = c.Set(ctx, "foo", []byte("bar"))
//	value, ok, _ := c.Get(ctx, "foo")
//
// PingProber adapts the client to the failover monitor's IProber interface.
//
// Thread Safety:
//
//	A Client can be used from multiple goroutines; requests are serialized.
package client
