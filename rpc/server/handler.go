package server

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/ValentinKolb/rKV/lib/command"
	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/ValentinKolb/rKV/rpc/connection"
)

// session is the per connection state of a handler
type session struct {
	id     uint64
	conn   net.Conn
	frames *connection.Connection
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handleConnection serves requests of one connection until the client
// disconnects, a protocol violation occurs or the server shuts down
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	sess := &session{
		id:   s.nextConnID.Add(1),
		conn: conn,
	}
	s.conns.Store(sess.id, conn)
	s.metrics.connectionsTotal.Inc()
	defer func() {
		s.conns.Delete(sess.id)
		_ = conn.Close()
	}()

	// shutdown may have started between Accept and Store
	if ctx.Err() != nil {
		return
	}

	if err := s.connector.UpgradeConnection(conn, s.config); err != nil {
		Logger.Warningf("Failed to upgrade connection %d: %v", sess.id, err)
	}
	sess.frames = connection.New(conn)

	Logger.Debugf("Accepted connection %d from %s", sess.id, conn.RemoteAddr())

	// Timeout in seconds
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Errorf("Failed to set read deadline: %v", err)
				return
			}
		}

		frame, err := sess.frames.ReadFrame()

		// Case EOF: Connection closed by client
		if errors.Is(err, io.EOF) {
			Logger.Debugf("Connection %d closed by client", sess.id)
			return
		}

		if err != nil {
			switch {
			case ctx.Err() != nil:
				// server is shutting down
			case errors.Is(err, resp.ErrProtocol):
				s.rejectProtocol(sess, err)
			default:
				Logger.Warningf("Error reading from connection %d: %v", sess.id, err)
			}
			return
		}

		cmd, err := command.FromFrame(frame)
		if err != nil {
			s.rejectProtocol(sess, err)
			return
		}

		done, err := s.execute(ctx, sess, cmd)
		if err != nil {
			if ctx.Err() == nil {
				Logger.Warningf("Error handling %s on connection %d: %v", cmd.Name(), sess.id, err)
			}
			return
		}
		if done {
			return
		}
	}
}

// rejectProtocol answers a protocol violation with a best effort error frame.
// The caller closes the connection afterwards.
func (s *Server) rejectProtocol(sess *session, err error) {
	s.metrics.protocolErrors.Inc()
	Logger.Warningf("Protocol violation on connection %d: %v", sess.id, err)

	if timeout := time.Duration(s.config.TimeoutSecond) * time.Second; timeout > 0 {
		_ = sess.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	_ = sess.frames.WriteFrame(resp.NewError(err.Error()))
}
