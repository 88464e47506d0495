package resp

import (
	"errors"
	"testing"
)

// testFrames returns frames covering every kind, including the edge cases
// that are easy to get wrong (empty bulk, empty array, nested arrays)
func testFrames() map[string]Frame {
	return map[string]Frame{
		"simple":           NewSimple("OK"),
		"empty simple":     NewSimple(""),
		"error":            NewError("unknown command 'foo'"),
		"integer":          NewInteger(42),
		"negative integer": NewInteger(-1),
		"zero integer":     NewInteger(0),
		"bulk":             NewBulkString("bar"),
		"empty bulk":       NewBulk([]byte{}),
		"binary bulk":      NewBulk([]byte{0, '\r', '\n', 0xff}),
		"null":             NewNull(),
		"empty array":      NewArray(),
		"command": NewArray(
			NewBulkString("SET"),
			NewBulkString("foo"),
			NewBulkString("bar"),
		),
		"nested": NewArray(
			NewInteger(1),
			NewArray(NewSimple("a"), NewNull(), NewArray()),
			NewBulk([]byte{}),
		),
	}
}

// TestRoundTrip tests that decoding an encoded frame yields the frame and consumes everything
func TestRoundTrip(t *testing.T) {
	for name, frame := range testFrames() {
		t.Run(name, func(t *testing.T) {
			encoded, err := Encode(frame)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			decoded, n, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if n != len(encoded) {
				t.Errorf("Decode() consumed %d bytes, want %d", n, len(encoded))
			}
			if !decoded.Equal(frame) {
				t.Errorf("Decode() = %v, want %v", decoded, frame)
			}
			if decoded.Kind != frame.Kind {
				t.Errorf("Decode() kind = %v, want %v", decoded.Kind, frame.Kind)
			}
		})
	}
}

// TestPartialRead tests that every strict prefix of a valid encoding is reported as incomplete
func TestPartialRead(t *testing.T) {
	for name, frame := range testFrames() {
		t.Run(name, func(t *testing.T) {
			encoded, err := Encode(frame)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			for k := 0; k < len(encoded); k++ {
				_, n, err := Decode(encoded[:k])
				if !errors.Is(err, ErrIncomplete) {
					t.Fatalf("Decode(prefix %d of %d) error = %v, want ErrIncomplete", k, len(encoded), err)
				}
				if n != 0 {
					t.Errorf("Decode(prefix %d) consumed %d bytes on incomplete input", k, n)
				}
			}
		})
	}
}

// TestDecodeWireFormat tests decoding of hand written wire bytes
func TestDecodeWireFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Frame
		consumed int
	}{
		{"simple", "+OK\r\n", NewSimple("OK"), 5},
		{"error", "-ERR boom\r\n", NewError("ERR boom"), 11},
		{"integer", ":1000\r\n", NewInteger(1000), 7},
		{"bulk", "$3\r\nbar\r\n", NewBulkString("bar"), 9},
		{"zero length bulk is not null", "$0\r\n\r\n", NewBulk([]byte{}), 6},
		{"null bulk", "$-1\r\n", NewNull(), 5},
		{"null array", "*-1\r\n", NewNull(), 5},
		{"empty array", "*0\r\n", NewArray(), 4},
		{"trailing bytes are not consumed", "+PONG\r\n+OK\r\n", NewSimple("PONG"), 7},
		{
			"get command",
			"*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n",
			NewArray(NewBulkString("GET"), NewBulkString("foo")),
			22,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !frame.Equal(tt.expected) {
				t.Errorf("Decode() = %v, want %v", frame, tt.expected)
			}
			if n != tt.consumed {
				t.Errorf("Decode() consumed = %d, want %d", n, tt.consumed)
			}
		})
	}
}

// TestDecodeProtocolErrors tests that malformed input is rejected as a protocol error
func TestDecodeProtocolErrors(t *testing.T) {
	tests := map[string]string{
		"unknown type byte":        "?foo\r\n",
		"integer not a number":     ":abc\r\n",
		"empty integer":            ":\r\n",
		"negative bulk length":     "$-2\r\n",
		"bulk length not a number": "$x\r\n",
		"bulk missing terminator":  "$3\r\nbarXY",
		"bulk too large":           "$1073741824\r\n",
		"negative array length":    "*-5\r\n",
		"bad element in array":     "*1\r\n!\r\n",
		"bare LF in simple string": "+a\nb\r\n",
		"integer with plus sign":   ":+5\r\n",
		"integer leading zero":     ":007\r\n",
		"negative zero":            ":-0\r\n",
		"array leading zero":       "*01\r\n:1\r\n",
		"bulk length plus sign":    "$+1\r\na\r\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode([]byte(input))
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("Decode(%q) error = %v, want ErrProtocol", input, err)
			}
		})
	}
}

// TestDecodeDoesNotAlias tests that decoded bulk payloads are independent of the input buffer
func TestDecodeDoesNotAlias(t *testing.T) {
	buf := []byte("$3\r\nbar\r\n")
	frame, _, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf[4] = 'X'
	if string(frame.Bulk) != "bar" {
		t.Errorf("Decoded payload changed with the input buffer: %q", frame.Bulk)
	}
}

// TestEncodeRejectsLineBreaks tests that simple strings and errors with CR or LF cannot be encoded
func TestEncodeRejectsLineBreaks(t *testing.T) {
	for _, frame := range []Frame{NewSimple("a\r\nb"), NewError("x\ny"), NewArray(NewSimple("\r"))} {
		if _, err := Encode(frame); !errors.Is(err, ErrProtocol) {
			t.Errorf("Encode(%v) error = %v, want ErrProtocol", frame, err)
		}
	}
}

// TestEncodeWireFormat tests the exact bytes produced by the encoder
func TestEncodeWireFormat(t *testing.T) {
	tests := []struct {
		frame    Frame
		expected string
	}{
		{NewSimple("PONG"), "+PONG\r\n"},
		{NewError("unknown command 'x'"), "-unknown command 'x'\r\n"},
		{NewInteger(-7), ":-7\r\n"},
		{NewBulkString("hi"), "$2\r\nhi\r\n"},
		{NewBulk(nil), "$0\r\n\r\n"},
		{NewNull(), "$-1\r\n"},
		{NewArray(), "*0\r\n"},
		{NewArray(NewBulkString("message"), NewBulkString("news"), NewBulkString("hi")), "*3\r\n$7\r\nmessage\r\n$4\r\nnews\r\n$2\r\nhi\r\n"},
	}

	for _, tt := range tests {
		got, err := Encode(tt.frame)
		if err != nil {
			t.Fatalf("Encode(%v) error = %v", tt.frame, err)
		}
		if string(got) != tt.expected {
			t.Errorf("Encode(%v) = %q, want %q", tt.frame, got, tt.expected)
		}
	}
}

// nestedArray returns levels arrays nested into each other, the innermost one empty
func nestedArray(levels int) Frame {
	f := NewArray()
	for i := 1; i < levels; i++ {
		f = NewArray(f)
	}
	return f
}

// TestNestingLimit tests that Encode and Decode agree on the deepest nesting they accept
func TestNestingLimit(t *testing.T) {
	t.Run("AtLimit", func(t *testing.T) {
		frame := nestedArray(maxNesting)
		encoded, err := Encode(frame)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		decoded, n, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if n != len(encoded) || !decoded.Equal(frame) {
			t.Errorf("Decode() = %v, %d; want the encoded frame and %d bytes", decoded, n, len(encoded))
		}

		// every prefix of a valid encoding is incomplete, never malformed
		for i := 0; i < len(encoded); i++ {
			if _, _, err := Decode(encoded[:i]); !errors.Is(err, ErrIncomplete) {
				t.Fatalf("Decode(prefix %d) error = %v, want ErrIncomplete", i, err)
			}
		}
	})

	t.Run("BeyondLimit", func(t *testing.T) {
		if _, err := Encode(nestedArray(maxNesting + 1)); !errors.Is(err, ErrProtocol) {
			t.Errorf("Encode() error = %v, want ErrProtocol", err)
		}

		var raw []byte
		for i := 0; i < maxNesting; i++ {
			raw = append(raw, "*1\r\n"...)
		}
		raw = append(raw, "*0\r\n"...)
		if _, _, err := Decode(raw); !errors.Is(err, ErrProtocol) {
			t.Errorf("Decode() error = %v, want ErrProtocol", err)
		}
	})
}
