package command

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/rKV/lib/resp"
)

func bulkRequest(parts ...string) resp.Frame {
	elems := make([]resp.Frame, len(parts))
	for i, p := range parts {
		elems[i] = resp.NewBulkString(p)
	}
	return resp.NewArray(elems...)
}

// TestFromFrame tests that valid requests are parsed into the expected commands
func TestFromFrame(t *testing.T) {
	tests := []struct {
		name     string
		frame    resp.Frame
		expected Command
	}{
		{"get", bulkRequest("GET", "foo"), Get{Key: "foo"}},
		{"get lowercase", bulkRequest("get", "foo"), Get{Key: "foo"}},
		{"get mixed case", bulkRequest("gEt", "foo"), Get{Key: "foo"}},
		{"set", bulkRequest("SET", "foo", "bar"), Set{Key: "foo", Value: []byte("bar")}},
		{"set empty value", bulkRequest("SET", "foo", ""), Set{Key: "foo", Value: []byte{}}},
		{"publish", bulkRequest("PUBLISH", "news", "hello"), Publish{Channel: "news", Message: []byte("hello")}},
		{"subscribe one", bulkRequest("SUBSCRIBE", "news"), Subscribe{Channels: []string{"news"}}},
		{"subscribe many", bulkRequest("subscribe", "a", "b", "c"), Subscribe{Channels: []string{"a", "b", "c"}}},
		{"ping", bulkRequest("PING"), Ping{}},
		{"ping with message", bulkRequest("PING", "hi"), Ping{Message: []byte("hi")}},
		{"unknown", bulkRequest("UNKNOWNCMD", "a", "b"), Unknown{CommandName: "unknowncmd"}},
		{
			"simple string name",
			resp.NewArray(resp.NewSimple("GET"), resp.NewBulkString("k")),
			Get{Key: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := FromFrame(tt.frame)
			if err != nil {
				t.Fatalf("FromFrame() error = %v", err)
			}
			if !reflect.DeepEqual(cmd, tt.expected) {
				t.Errorf("FromFrame() = %#v, want %#v", cmd, tt.expected)
			}
		})
	}
}

// TestFromFrameErrors tests that malformed requests are rejected as protocol errors
func TestFromFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame resp.Frame
	}{
		{"not an array", resp.NewBulkString("GET")},
		{"empty array", resp.NewArray()},
		{"integer name", resp.NewArray(resp.NewInteger(1))},
		{"get without key", bulkRequest("GET")},
		{"get with extra argument", bulkRequest("GET", "a", "b")},
		{"set without value", bulkRequest("SET", "a")},
		{"set with extra argument", bulkRequest("SET", "a", "b", "c")},
		{"publish without message", bulkRequest("PUBLISH", "news")},
		{"subscribe without channel", bulkRequest("SUBSCRIBE")},
		{"ping with two messages", bulkRequest("PING", "a", "b")},
		{"integer key", resp.NewArray(resp.NewBulkString("GET"), resp.NewInteger(5))},
		{"null value", resp.NewArray(resp.NewBulkString("SET"), resp.NewBulkString("k"), resp.NewNull())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := FromFrame(tt.frame)
			if !errors.Is(err, resp.ErrProtocol) {
				t.Errorf("FromFrame() = %#v, %v, want ErrProtocol", cmd, err)
			}
		})
	}
}

// TestFrameRoundTrip tests that Frame is the inverse of FromFrame
func TestFrameRoundTrip(t *testing.T) {
	commands := []Command{
		Get{Key: "foo"},
		Set{Key: "foo", Value: []byte("bar")},
		Set{Key: "", Value: []byte{}},
		Publish{Channel: "news", Message: []byte{0, 1, 2}},
		Subscribe{Channels: []string{"a", "b"}},
		Ping{},
		Ping{Message: []byte("echo")},
		Unknown{CommandName: "flushall"},
	}

	for _, cmd := range commands {
		t.Run(cmd.Name(), func(t *testing.T) {
			parsed, err := FromFrame(cmd.Frame())
			if err != nil {
				t.Fatalf("FromFrame(%v) error = %v", cmd.Frame(), err)
			}
			if !reflect.DeepEqual(parsed, cmd) {
				t.Errorf("FromFrame(Frame()) = %#v, want %#v", parsed, cmd)
			}
		})
	}
}

// TestFrameWireFormat tests that commands encode to the expected request bytes
func TestFrameWireFormat(t *testing.T) {
	encoded, err := resp.Encode(Set{Key: "foo", Value: []byte("bar")}.Frame())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	expected := []byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")
	if !bytes.Equal(encoded, expected) {
		t.Errorf("Set.Frame() encoded = %q, want %q", encoded, expected)
	}
}

// TestName tests the lowercase names used in logs and metrics
func TestName(t *testing.T) {
	if got := (Subscribe{}).Name(); got != "subscribe" {
		t.Errorf("Subscribe.Name() = %q", got)
	}
	if got := (Unknown{CommandName: "foo"}).Name(); got != "foo" {
		t.Errorf("Unknown.Name() = %q", got)
	}
	if got := CommandType(99).String(); got != "CommandType(99)" {
		t.Errorf("CommandType(99).String() = %q", got)
	}
}
