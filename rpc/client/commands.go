package client

import (
	"context"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
)

// Get returns the value of key. The boolean is false if the key does not exist.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	frame, err := c.roundTrip(ctx, command.Get{Key: key})
	if err != nil {
		return nil, false, err
	}
	if err := checkResponse("GET", frame, resp.KindBulk, resp.KindNull); err != nil {
		return nil, false, err
	}
	if frame.IsNull() {
		return nil, false, nil
	}
	return frame.Bulk, true, nil
}

// Set stores value under key
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	frame, err := c.roundTrip(ctx, command.Set{Key: key, Value: value})
	if err != nil {
		return err
	}
	if err := checkResponse("SET", frame, resp.KindSimple); err != nil {
		return err
	}
	if frame.Str != "OK" {
		return &UnexpectedResponseError{Command: "SET", Frame: frame}
	}
	return nil
}

// Publish sends message on channel and returns the number of receivers
func (c *Client) Publish(ctx context.Context, channel string, message []byte) (int64, error) {
	frame, err := c.roundTrip(ctx, command.Publish{Channel: channel, Message: message})
	if err != nil {
		return 0, err
	}
	if err := checkResponse("PUBLISH", frame, resp.KindInteger); err != nil {
		return 0, err
	}
	return frame.Int, nil
}

// Ping checks that the server is alive. Without a message the reply is
// "PONG", otherwise the server echoes message.
func (c *Client) Ping(ctx context.Context, message []byte) ([]byte, error) {
	frame, err := c.roundTrip(ctx, command.Ping{Message: message})
	if err != nil {
		return nil, err
	}
	if err := checkResponse("PING", frame, resp.KindSimple, resp.KindBulk); err != nil {
		return nil, err
	}
	reply, _ := frame.Text()
	return []byte(reply), nil
}
