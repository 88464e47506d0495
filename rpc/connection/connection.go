package connection

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ValentinKolb/rKV/lib/resp"
)

const (
	// initialBufferSize is the starting capacity of the read buffer (4 KB)
	initialBufferSize = 4 * 1024
	// minReadSize is the minimum free space offered to a single Read call
	minReadSize = 512
)

// ErrConnectionReset is returned when the peer closes the stream in the middle of a frame
var ErrConnectionReset = errors.New("connection reset by peer")

// Connection reads and writes frames on a byte stream. Reads and writes may
// happen from different goroutines, but at most one goroutine may read at a time.
type Connection struct {
	r io.Reader
	w io.Writer

	// buf[start:] holds received bytes that are not yet decoded
	buf     []byte
	start   int
	readErr error

	writeMu sync.Mutex
	scratch []byte
}

// New wraps a byte stream. Writes go to rw only if it implements io.Writer.
func New(rw io.Reader) *Connection {
	c := &Connection{
		r:   rw,
		buf: make([]byte, 0, initialBufferSize),
	}
	if w, ok := rw.(io.Writer); ok {
		c.w = w
	}
	return c
}

// ReadFrame returns the next complete frame. It returns io.EOF if the peer
// closed the stream cleanly between two frames and ErrConnectionReset if it
// closed the stream inside a frame. Malformed input yields an error wrapping
// resp.ErrProtocol.
func (c *Connection) ReadFrame() (resp.Frame, error) {
	for {
		if c.start < len(c.buf) {
			frame, n, err := resp.Decode(c.buf[c.start:])
			if err == nil {
				c.start += n
				return frame, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				return resp.Frame{}, err
			}
		}

		if c.readErr != nil {
			return resp.Frame{}, c.terminalError()
		}

		c.fill()
	}
}

// fill reads at least once from the stream into the free space of the buffer
func (c *Connection) fill() {
	// compact: move the pending bytes to the front
	if c.start > 0 {
		n := copy(c.buf, c.buf[c.start:])
		c.buf = c.buf[:n]
		c.start = 0
	}

	// grow: keep at least minReadSize bytes free
	if cap(c.buf)-len(c.buf) < minReadSize {
		grown := make([]byte, len(c.buf), 2*cap(c.buf)+minReadSize)
		copy(grown, c.buf)
		c.buf = grown
	}

	n, err := c.r.Read(c.buf[len(c.buf):cap(c.buf)])
	c.buf = c.buf[:len(c.buf)+n]
	if err != nil {
		c.readErr = err
	} else if n == 0 {
		// io.Reader allows (0, nil), treat it like a closed stream
		c.readErr = io.EOF
	}
}

// terminalError maps the stored read error to the error reported to the caller
func (c *Connection) terminalError() error {
	if errors.Is(c.readErr, io.EOF) {
		if c.start == len(c.buf) {
			return io.EOF
		}
		return ErrConnectionReset
	}
	return fmt.Errorf("read frame: %w", c.readErr)
}

// Buffered returns the number of received bytes that are not yet decoded
func (c *Connection) Buffered() int {
	return len(c.buf) - c.start
}

// WriteFrame encodes frame and writes it in a single Write call. Concurrent
// calls are serialized, frames are never interleaved.
func (c *Connection) WriteFrame(frame resp.Frame) error {
	if c.w == nil {
		return errors.New("write frame: connection is read only")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	encoded, err := resp.AppendFrame(c.scratch[:0], frame)
	if err != nil {
		return err
	}
	c.scratch = encoded

	if _, err := c.w.Write(encoded); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	// do not keep huge buffers around after a large response
	if cap(c.scratch) > 1<<20 {
		c.scratch = nil
	}
	return nil
}
