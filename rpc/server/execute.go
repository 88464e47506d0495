package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
)

// lineBreaks escapes CR and LF, which an error frame cannot carry
var lineBreaks = strings.NewReplacer("\r", "\\r", "\n", "\\n")

// execute runs cmd against the store and writes the response. done is true
// if the connection must not serve further requests.
func (s *Server) execute(ctx context.Context, sess *session, cmd command.Command) (done bool, err error) {
	s.metrics.command(cmd.Type().String()).Inc()

	switch cmd := cmd.(type) {
	case command.Ping:
		if cmd.Message == nil {
			return false, sess.frames.WriteFrame(resp.NewSimple("PONG"))
		}
		return false, sess.frames.WriteFrame(resp.NewBulk(cmd.Message))

	case command.Get:
		value, ok := s.store.Get(cmd.Key)
		if !ok {
			return false, sess.frames.WriteFrame(resp.NewNull())
		}
		return false, sess.frames.WriteFrame(resp.NewBulk(value))

	case command.Set:
		s.set(cmd)
		return false, sess.frames.WriteFrame(resp.NewSimple("OK"))

	case command.Publish:
		n := s.store.Publish(cmd.Channel, cmd.Message)
		s.metrics.published.Inc()
		return false, sess.frames.WriteFrame(resp.NewInteger(int64(n)))

	case command.Subscribe:
		return true, s.subscribe(ctx, sess, cmd)

	case command.Unknown:
		Logger.Debugf("Unknown command %q on connection %d", cmd.Name(), sess.id)
		return false, sess.frames.WriteFrame(resp.NewError(fmt.Sprintf("unknown command '%s'", lineBreaks.Replace(cmd.Name()))))

	default:
		return true, fmt.Errorf("unhandled command type %T", cmd)
	}
}

// set applies a write. With the append-only log enabled the record is
// appended in the same critical section, so log order matches apply order.
// A failed append is logged, the write stays visible in memory.
func (s *Server) set(cmd command.Set) {
	if s.aof == nil {
		s.store.Set(cmd.Key, cmd.Value)
		return
	}
	if err := s.aof.Commit(s.store, cmd); err != nil {
		s.metrics.aofErrors.Inc()
		Logger.Errorf("Failed to append %q to the append-only log: %v", cmd.Key, err)
	}
}
