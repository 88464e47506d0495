package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrIncomplete is returned by Decode when the buffer holds only a prefix
	// of a frame. It is not a failure, the caller should read more bytes.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrProtocol is wrapped by every error that reports bytes which can
	// never form a valid frame
	ErrProtocol = errors.New("resp: protocol error")
)

const (
	// MaxBulkLength is the largest bulk payload accepted by Decode (512 MiB)
	MaxBulkLength = 512 << 20
	// MaxArrayLength is the largest element count accepted by Decode
	MaxArrayLength = 1 << 20
	// maxNesting limits how deep arrays may be nested, for Decode and Encode
	maxNesting = 32
)

var crlf = []byte{'\r', '\n'}

// Decode parses one frame from the start of buf. On success it returns the
// frame and the number of bytes consumed. If buf does not yet hold a complete
// frame the error is ErrIncomplete. Malformed input yields an error wrapping
// ErrProtocol. Bulk payloads of the returned frame are copies and do not
// alias buf.
func Decode(buf []byte) (Frame, int, error) {
	d := decoder{buf: buf}
	f, err := d.frame(0)
	if err != nil {
		return Frame{}, 0, err
	}
	return f, d.pos, nil
}

// decoder holds the parse cursor for one call to Decode
type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) frame(depth int) (Frame, error) {
	if d.pos >= len(d.buf) {
		return Frame{}, ErrIncomplete
	}

	typ := d.buf[d.pos]
	d.pos++

	switch typ {
	case '+':
		line, err := d.line()
		if err != nil {
			return Frame{}, err
		}
		return NewSimple(string(line)), nil

	case '-':
		line, err := d.line()
		if err != nil {
			return Frame{}, err
		}
		return NewError(string(line)), nil

	case ':':
		n, err := d.decimal()
		if err != nil {
			return Frame{}, err
		}
		return NewInteger(n), nil

	case '$':
		n, err := d.decimal()
		if err != nil {
			return Frame{}, err
		}
		if n == -1 {
			return NewNull(), nil
		}
		if n < 0 || n > MaxBulkLength {
			return Frame{}, fmt.Errorf("%w: invalid bulk length %d", ErrProtocol, n)
		}
		size := int(n)
		if len(d.buf)-d.pos < size+2 {
			return Frame{}, ErrIncomplete
		}
		if !bytes.Equal(d.buf[d.pos+size:d.pos+size+2], crlf) {
			return Frame{}, fmt.Errorf("%w: bulk payload not terminated by CRLF", ErrProtocol)
		}
		payload := make([]byte, size)
		copy(payload, d.buf[d.pos:d.pos+size])
		d.pos += size + 2
		return NewBulk(payload), nil

	case '*':
		n, err := d.decimal()
		if err != nil {
			return Frame{}, err
		}
		if n == -1 {
			return NewNull(), nil
		}
		if n < 0 || n > MaxArrayLength {
			return Frame{}, fmt.Errorf("%w: invalid array length %d", ErrProtocol, n)
		}
		if depth >= maxNesting {
			return Frame{}, fmt.Errorf("%w: arrays nested deeper than %d", ErrProtocol, maxNesting)
		}
		// do not trust the declared count for the allocation, every element needs at least 3 bytes
		elems := make([]Frame, 0, min(int(n), (len(d.buf)-d.pos)/3+1))
		for i := int64(0); i < n; i++ {
			elem, err := d.frame(depth + 1)
			if err != nil {
				return Frame{}, err
			}
			elems = append(elems, elem)
		}
		return NewArray(elems...), nil

	default:
		return Frame{}, fmt.Errorf("%w: invalid frame type byte %q", ErrProtocol, typ)
	}
}

// line returns the bytes up to the next CRLF and moves the cursor behind it
func (d *decoder) line() ([]byte, error) {
	idx := bytes.Index(d.buf[d.pos:], crlf)
	if idx < 0 {
		return nil, ErrIncomplete
	}
	line := d.buf[d.pos : d.pos+idx]
	if bytes.IndexByte(line, '\r') >= 0 || bytes.IndexByte(line, '\n') >= 0 {
		return nil, fmt.Errorf("%w: line contains a bare CR or LF", ErrProtocol)
	}
	d.pos += idx + 2
	return line, nil
}

// decimal reads a line and parses it as a signed base 10 integer. Only the
// canonical form is accepted (no plus sign, no leading zeros, no "-0"), so
// every decoded frame encodes back to the same bytes.
func (d *decoder) decimal() (int64, error) {
	line, err := d.line()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != string(line) {
		return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
	}
	return n, nil
}
