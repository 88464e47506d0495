package resp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Frame Kinds
// --------------------------------------------------------------------------

// Kind identifies which variant a Frame holds
type Kind uint8

const (
	KindSimple  Kind = iota // +
	KindError               // -
	KindInteger             // :
	KindBulk                // $
	KindNull                // $-1
	KindArray               // *
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "Simple"
	case KindError:
		return "Error"
	case KindInteger:
		return "Integer"
	case KindBulk:
		return "Bulk"
	case KindNull:
		return "Null"
	case KindArray:
		return "Array"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// --------------------------------------------------------------------------
// Frame
// --------------------------------------------------------------------------

// Frame is a single protocol value. Which field carries the payload depends
// on Kind:
//   - KindSimple, KindError: Str
//   - KindInteger: Int
//   - KindBulk: Bulk (never nil, may be empty)
//   - KindNull: nothing
//   - KindArray: Array (never nil, may be empty)
//
// Frames should be built with the factory functions below.
type Frame struct {
	Kind  Kind
	Str   string
	Int   int64
	Bulk  []byte
	Array []Frame
}

// NewSimple creates a simple string frame. s must not contain CR or LF.
func NewSimple(s string) Frame {
	return Frame{Kind: KindSimple, Str: s}
}

// NewError creates an error frame. msg must not contain CR or LF.
func NewError(msg string) Frame {
	return Frame{Kind: KindError, Str: msg}
}

// NewInteger creates an integer frame
func NewInteger(n int64) Frame {
	return Frame{Kind: KindInteger, Int: n}
}

// NewBulk creates a bulk frame. The payload is not copied.
func NewBulk(b []byte) Frame {
	if b == nil {
		b = []byte{}
	}
	return Frame{Kind: KindBulk, Bulk: b}
}

// NewBulkString creates a bulk frame from a string
func NewBulkString(s string) Frame {
	return NewBulk([]byte(s))
}

// NewNull creates the null frame
func NewNull() Frame {
	return Frame{Kind: KindNull}
}

// NewArray creates an array frame holding the given elements
func NewArray(elems ...Frame) Frame {
	if elems == nil {
		elems = []Frame{}
	}
	return Frame{Kind: KindArray, Array: elems}
}

// IsNull reports whether f is the null frame
func (f Frame) IsNull() bool {
	return f.Kind == KindNull
}

// Text returns the textual payload of a simple string or bulk frame.
// ok is false for every other kind.
func (f Frame) Text() (s string, ok bool) {
	switch f.Kind {
	case KindSimple:
		return f.Str, true
	case KindBulk:
		return string(f.Bulk), true
	default:
		return "", false
	}
}

// Equal reports whether f and other are structurally identical
func (f Frame) Equal(other Frame) bool {
	if f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case KindSimple, KindError:
		return f.Str == other.Str
	case KindInteger:
		return f.Int == other.Int
	case KindBulk:
		return bytes.Equal(f.Bulk, other.Bulk)
	case KindNull:
		return true
	case KindArray:
		if len(f.Array) != len(other.Array) {
			return false
		}
		for i := range f.Array {
			if !f.Array[i].Equal(other.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the frame in a human readable form (used by the CLI and in logs)
func (f Frame) String() string {
	switch f.Kind {
	case KindSimple:
		return f.Str
	case KindError:
		return "(error) " + f.Str
	case KindInteger:
		return "(integer) " + strconv.FormatInt(f.Int, 10)
	case KindBulk:
		return strconv.Quote(string(f.Bulk))
	case KindNull:
		return "(nil)"
	case KindArray:
		if len(f.Array) == 0 {
			return "(empty array)"
		}
		parts := make([]string, len(f.Array))
		for i, e := range f.Array {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return f.Kind.String()
	}
}
