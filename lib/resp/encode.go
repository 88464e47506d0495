package resp

import (
	"fmt"
	"strconv"
	"strings"
)

// Encode returns the wire representation of f
func Encode(f Frame) ([]byte, error) {
	return AppendFrame(nil, f)
}

// AppendFrame appends the wire representation of f to dst and returns the
// extended buffer. Simple strings and errors containing CR or LF cannot be
// represented and are rejected with an error wrapping ErrProtocol, as are
// arrays nested deeper than Decode accepts.
func AppendFrame(dst []byte, f Frame) ([]byte, error) {
	return appendFrame(dst, f, 0)
}

func appendFrame(dst []byte, f Frame, depth int) ([]byte, error) {
	switch f.Kind {
	case KindSimple:
		return appendLine(dst, '+', f.Str)
	case KindError:
		return appendLine(dst, '-', f.Str)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, f.Int, 10)
		return append(dst, crlf...), nil
	case KindBulk:
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(f.Bulk)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, f.Bulk...)
		return append(dst, crlf...), nil
	case KindNull:
		return append(dst, "$-1\r\n"...), nil
	case KindArray:
		if depth >= maxNesting {
			return dst, fmt.Errorf("%w: arrays nested deeper than %d", ErrProtocol, maxNesting)
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(f.Array)), 10)
		dst = append(dst, crlf...)
		var err error
		for _, elem := range f.Array {
			if dst, err = appendFrame(dst, elem, depth+1); err != nil {
				return dst, err
			}
		}
		return dst, nil
	default:
		return dst, fmt.Errorf("%w: cannot encode frame of kind %s", ErrProtocol, f.Kind)
	}
}

func appendLine(dst []byte, typ byte, s string) ([]byte, error) {
	if strings.ContainsAny(s, "\r\n") {
		return dst, fmt.Errorf("%w: %q must not contain CR or LF", ErrProtocol, s)
	}
	dst = append(dst, typ)
	dst = append(dst, s...)
	return append(dst, crlf...), nil
}
