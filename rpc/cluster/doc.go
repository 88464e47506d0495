// Package cluster implements client side routing over a fixed set of rKV nodes.
//
// Each key is owned by exactly one node:
//
//	owner(key) = nodes[fnv1a(key) mod len(nodes)]
//
// The Router keeps one client per node and opens it on the first request to
// that node. A client that fails with a transport error is dropped from the
// cache, so the next request dials again. Error replies from the server do
// not affect the cached client.
//
// Membership is static. There is no rebalancing: changing the node list
// changes the owner of most keys.
//
// Usage Example:
//
//	r, err := cluster.NewRouter([]string{"10.0.0.1:6379", "10.0.0.2:6379"}, config, tcp.NewClientConnector())
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	_ = r.Set(ctx, "foo", []byte("bar"))
//	value, ok, err := r.Get(ctx, "foo")
package cluster
