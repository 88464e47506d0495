package server

import (
	"context"
	"errors"
	"time"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/pubsub"
	"github.com/ValentinKolb/rKV/lib/resp"
)

// subscribe acknowledges every distinct channel and then streams published
// messages until the client disconnects, the server shuts down or the
// subscriber falls too far behind. The connection serves no other requests.
func (s *Server) subscribe(ctx context.Context, sess *session, cmd command.Subscribe) error {
	sub := s.store.Subscribe(cmd.Channels...)
	defer sub.Close()

	// subscriptions are long lived, the idle timeout no longer applies
	_ = sess.conn.SetReadDeadline(time.Time{})

	for i, ch := range sub.Channels() {
		ack := resp.NewArray(
			resp.NewBulkString("subscribe"),
			resp.NewBulkString(ch),
			resp.NewInteger(int64(i+1)),
		)
		if err := s.writeStream(sess, ack); err != nil {
			return err
		}
	}

	Logger.Debugf("Connection %d subscribed to %v", sess.id, sub.Channels())

	// the only way to notice a disconnect is to keep reading
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, err := sess.frames.ReadFrame(); err != nil {
				return
			}
			Logger.Debugf("Ignoring request on subscribed connection %d", sess.id)
		}
	}()

	for {
		select {
		case msg, ok := <-sub.Messages():
			if !ok {
				if errors.Is(sub.Err(), pubsub.ErrLagged) {
					s.metrics.laggedSubscribers.Inc()
					Logger.Warningf("Dropping lagging subscriber on connection %d", sess.id)
				}
				return nil
			}
			frame := resp.NewArray(
				resp.NewBulkString("message"),
				resp.NewBulkString(msg.Channel),
				resp.NewBulk(msg.Payload),
			)
			if err := s.writeStream(sess, frame); err != nil {
				return err
			}
			s.metrics.delivered.Inc()

		case <-closed:
			Logger.Debugf("Subscriber on connection %d disconnected", sess.id)
			return nil

		case <-ctx.Done():
			return nil
		}
	}
}

// writeStream writes one frame of a subscription stream
func (s *Server) writeStream(sess *session, frame resp.Frame) error {
	if timeout := time.Duration(s.config.TimeoutSecond) * time.Second; timeout > 0 {
		if err := sess.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return sess.frames.WriteFrame(frame)
}
