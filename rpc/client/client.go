package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/connection"
	"github.com/ValentinKolb/rKV/rpc/transport"
)

var (
	// ErrClosed is returned by requests on a closed client
	ErrClosed = errors.New("client: closed")
	// ErrSubscribed is returned by requests on a client that was handed to a Subscriber
	ErrSubscribed = errors.New("client: connection is in subscribe mode")
)

// Client is a connection to a single rKV node. Requests on one client are
// serialized: each request writes one frame and waits for exactly one response.
// A Client is safe for concurrent use. After a transport failure the client
// is broken and every further request returns the same error.
type Client struct {
	endpoint string
	config   common.ClientConfig
	conn     net.Conn
	frames   *connection.Connection

	mu     sync.Mutex // serializes requests, guards broken
	broken error
	closed atomic.Bool
}

// Connect dials endpoint with the given connector. Failed dials are retried
// config.RetryCount times with exponential backoff.
func Connect(ctx context.Context, endpoint string, config common.ClientConfig, connector transport.IClientConnector) (*Client, error) {
	// We always try at least once
	maxRetries := config.RetryCount
	if maxRetries < 1 {
		maxRetries = 1
	}

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := connector.Connect(ctx, endpoint)
		if err == nil {
			if err := connector.UpgradeConnection(conn, config); err != nil {
				Logger.Warningf("Failed to upgrade %s connection to %s: %v", connector.GetName(), endpoint, err)
			}
			return New(conn, endpoint, config), nil
		}

		lastErr = err
		Logger.Debugf("Connect attempt %d/%d to %s failed: %v", i+1, maxRetries, endpoint, err)

		if i < maxRetries-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			select {
			case <-time.After(time.Duration(jitter) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoffMs *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", endpoint, maxRetries, lastErr)
}

// New wraps an established connection
func New(conn net.Conn, endpoint string, config common.ClientConfig) *Client {
	return &Client{
		endpoint: endpoint,
		config:   config,
		conn:     conn,
		frames:   connection.New(conn),
	}
}

// Endpoint returns the address this client is connected to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close closes the underlying connection. A request blocked on the
// connection returns with an error.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.conn.Close()
}

// roundTrip sends cmd and reads the single response frame
func (c *Client) roundTrip(ctx context.Context, cmd command.Command) (resp.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.usable(); err != nil {
		return resp.Frame{}, err
	}

	stop := c.watch(ctx)
	defer stop()

	if err := c.frames.WriteFrame(cmd.Frame()); err != nil {
		return resp.Frame{}, c.fail(ctx, err)
	}
	frame, err := c.frames.ReadFrame()
	if err != nil {
		return resp.Frame{}, c.fail(ctx, err)
	}
	return frame, nil
}

func (c *Client) usable() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.broken
}

// watch maps the context deadline, the configured timeout and cancellation
// onto the connection deadline. The returned func must be called when the
// request is done.
func (c *Client) watch(ctx context.Context) func() {
	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if timeout := c.config.Timeout(); timeout > 0 {
		if d := time.Now().Add(timeout); deadline.IsZero() || d.Before(deadline) {
			deadline = d
		}
	}
	_ = c.conn.SetDeadline(deadline)

	stop := context.AfterFunc(ctx, func() {
		// unblock a pending read or write
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	return func() { stop() }
}

// fail marks the client as broken. A cancelled context takes precedence
// over the resulting i/o error.
func (c *Client) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w (%v)", ctxErr, err)
	}
	c.broken = fmt.Errorf("connection to %s: %w", c.endpoint, err)
	Logger.Debugf("%v", c.broken)
	return c.broken
}
