package client

import (
	"context"
	"errors"
	"time"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/pubsub"
	"github.com/ValentinKolb/rKV/lib/resp"
)

// Subscriber receives the messages of a SUBSCRIBE request. It owns the
// connection of the client it was created from.
type Subscriber struct {
	client   *Client
	channels []string
}

// Subscribe switches the connection into subscribe mode. It waits for the
// confirmation of every channel. Afterwards the client only serves the
// returned Subscriber; other requests fail with ErrSubscribed.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (*Subscriber, error) {
	if len(channels) == 0 {
		return nil, errors.New("subscribe: at least one channel is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.usable(); err != nil {
		return nil, err
	}

	stop := c.watch(ctx)
	defer stop()

	if err := c.frames.WriteFrame(command.Subscribe{Channels: channels}.Frame()); err != nil {
		return nil, c.fail(ctx, err)
	}

	// the server acknowledges every distinct channel once
	confirmed := make(map[string]struct{}, len(channels))
	var pending []string
	for _, ch := range channels {
		if _, ok := confirmed[ch]; !ok {
			confirmed[ch] = struct{}{}
			pending = append(pending, ch)
		}
	}

	for i, ch := range pending {
		frame, err := c.frames.ReadFrame()
		if err != nil {
			return nil, c.fail(ctx, err)
		}
		if err := checkConfirmation(frame, ch, int64(i+1)); err != nil {
			c.broken = err
			return nil, err
		}
	}

	c.broken = ErrSubscribed
	return &Subscriber{client: c, channels: pending}, nil
}

// checkConfirmation validates ["subscribe", channel, count]
func checkConfirmation(frame resp.Frame, channel string, count int64) error {
	if err := checkResponse("SUBSCRIBE", frame, resp.KindArray); err != nil {
		return err
	}
	parts := frame.Array
	if len(parts) != 3 {
		return &UnexpectedResponseError{Command: "SUBSCRIBE", Frame: frame}
	}
	kind, _ := parts[0].Text()
	name, _ := parts[1].Text()
	if kind != "subscribe" || name != channel || parts[2].Kind != resp.KindInteger || parts[2].Int != count {
		return &UnexpectedResponseError{Command: "SUBSCRIBE", Frame: frame}
	}
	return nil
}

// Channels returns the confirmed channel names
func (s *Subscriber) Channels() []string {
	return append([]string(nil), s.channels...)
}

// Receive blocks until the next message arrives, the context ends or the
// connection fails. The server closes the connection when it drops a slow
// subscriber, which surfaces here as an error. An expired or cancelled
// context also ends the subscription.
func (s *Subscriber) Receive(ctx context.Context) (pubsub.Message, error) {
	c := s.client
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return pubsub.Message{}, ErrClosed
	}
	if c.broken != ErrSubscribed {
		return pubsub.Message{}, c.broken
	}

	// subscriptions are long lived, only the context bounds the wait
	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	_ = c.conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	frame, err := c.frames.ReadFrame()
	if err != nil {
		return pubsub.Message{}, c.fail(ctx, err)
	}

	if err := checkResponse("SUBSCRIBE", frame, resp.KindArray); err != nil {
		return pubsub.Message{}, err
	}
	parts := frame.Array
	if len(parts) != 3 || parts[2].Kind != resp.KindBulk {
		return pubsub.Message{}, &UnexpectedResponseError{Command: "SUBSCRIBE", Frame: frame}
	}
	kind, _ := parts[0].Text()
	channel, ok := parts[1].Text()
	if kind != "message" || !ok {
		return pubsub.Message{}, &UnexpectedResponseError{Command: "SUBSCRIBE", Frame: frame}
	}
	return pubsub.Message{Channel: channel, Payload: parts[2].Bulk}, nil
}

// Close ends the subscription by closing the connection
func (s *Subscriber) Close() error {
	return s.client.Close()
}
