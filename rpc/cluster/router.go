package cluster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ValentinKolb/rKV/rpc/client"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("cluster")

// ErrNoNodes is returned by NewRouter for an empty node list
var ErrNoNodes = errors.New("cluster: at least one node is required")

// Router sends every request to the node that owns its key. Ownership is
// hash(key) mod len(nodes) over a fixed node list, so adding or removing a
// node remaps most keys.
type Router struct {
	nodes     []string
	config    common.ClientConfig
	connector transport.IClientConnector

	// clients caches one connection per node, created on first use
	clients *xsync.MapOf[string, *client.Client]
}

// NewRouter creates a router over nodes. No connection is opened until the
// first request to a node.
func NewRouter(nodes []string, config common.ClientConfig, connector transport.IClientConnector) (*Router, error) {
	if len(nodes) == 0 {
		return nil, ErrNoNodes
	}
	for _, node := range nodes {
		if strings.TrimSpace(node) == "" {
			return nil, fmt.Errorf("cluster: empty node address in %v", nodes)
		}
	}

	return &Router{
		nodes:     append([]string(nil), nodes...),
		config:    config,
		connector: connector,
		clients:   xsync.NewMapOf[string, *client.Client](),
	}, nil
}

// Nodes returns the configured node addresses
func (r *Router) Nodes() []string {
	return append([]string(nil), r.nodes...)
}

// TargetNode returns the address of the node owning key
func (r *Router) TargetNode(key string) string {
	return r.nodes[HashString(key, 0)%uint64(len(r.nodes))]
}

// Get reads key from its owning node
func (r *Router) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	err = r.do(ctx, key, func(c *client.Client) error {
		value, ok, err = c.Get(ctx, key)
		return err
	})
	return value, ok, err
}

// Set writes key on its owning node
func (r *Router) Set(ctx context.Context, key string, value []byte) error {
	return r.do(ctx, key, func(c *client.Client) error {
		return c.Set(ctx, key, value)
	})
}

// Publish sends message to the node owning channel. Subscribers must be
// connected to TargetNode(channel) to receive it.
func (r *Router) Publish(ctx context.Context, channel string, message []byte) (n int64, err error) {
	err = r.do(ctx, channel, func(c *client.Client) error {
		n, err = c.Publish(ctx, channel, message)
		return err
	})
	return n, err
}

// Close closes all cached connections
func (r *Router) Close() error {
	var errs []error
	r.clients.Range(func(node string, c *client.Client) bool {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", node, err))
		}
		r.clients.Delete(node)
		return true
	})
	return errors.Join(errs...)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// do runs fn with the client of the node owning key. A client that fails
// with anything but an error reply from the server is evicted, the next
// request to that node dials again.
func (r *Router) do(ctx context.Context, key string, fn func(c *client.Client) error) error {
	node := r.TargetNode(key)

	c, err := r.client(ctx, node)
	if err != nil {
		return err
	}

	if err := fn(c); err != nil {
		if !client.IsServerError(err) {
			r.evict(node, c)
		}
		return err
	}
	return nil
}

// client returns the cached client for node or dials a new one
func (r *Router) client(ctx context.Context, node string) (*client.Client, error) {
	if c, ok := r.clients.Load(node); ok {
		return c, nil
	}

	c, err := client.Connect(ctx, node, r.config, r.connector)
	if err != nil {
		return nil, err
	}

	// another request may have dialed the same node concurrently
	actual, loaded := r.clients.LoadOrStore(node, c)
	if loaded {
		_ = c.Close()
	}
	return actual, nil
}

// evict removes c from the cache if it is still the client for node
func (r *Router) evict(node string, c *client.Client) {
	r.clients.Compute(node, func(current *client.Client, loaded bool) (*client.Client, bool) {
		// keep a client that replaced c in the meantime
		return current, !loaded || current == c
	})
	_ = c.Close()
	Logger.Debugf("Evicted connection to %s", node)
}
