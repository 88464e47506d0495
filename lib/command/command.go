package command

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/rKV/lib/resp"
)

// CommandType identifies the variant of a Command
type CommandType uint8

const (
	CommandTGet       CommandType = iota // Read the value of a key.
	CommandTSet                          // Insert or overwrite a key.
	CommandTPublish                      // Broadcast a message on a channel.
	CommandTSubscribe                    // Switch the connection into streaming mode.
	CommandTPing                         // Liveness probe, optionally echoing a message.
	CommandTUnknown                      // Anything else.
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTGet:
		return "get"
	case CommandTSet:
		return "set"
	case CommandTPublish:
		return "publish"
	case CommandTSubscribe:
		return "subscribe"
	case CommandTPing:
		return "ping"
	case CommandTUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("CommandType(%d)", uint8(ct))
	}
}

// Command is one parsed client request. The set of implementations is closed,
// callers switch over the concrete types Get, Set, Publish, Subscribe, Ping
// and Unknown.
type Command interface {
	// Type returns the variant tag of the command
	Type() CommandType
	// Name returns the lowercase command name as sent by the client
	Name() string
	// Frame converts the command back into its request frame
	Frame() resp.Frame

	command()
}

// --------------------------------------------------------------------------
// Variants
// --------------------------------------------------------------------------

// Get reads the value stored under Key
type Get struct {
	Key string
}

// Set stores Value under Key, replacing any previous value
type Set struct {
	Key   string
	Value []byte
}

// Publish sends Message to every current subscriber of Channel
type Publish struct {
	Channel string
	Message []byte
}

// Subscribe registers the connection for all Channels (never empty)
type Subscribe struct {
	Channels []string
}

// Ping answers PONG, or echoes Message when it is not nil
type Ping struct {
	Message []byte
}

// Unknown is any command whose name is not recognized. Name is lowercase.
type Unknown struct {
	CommandName string
}

func (Get) Type() CommandType       { return CommandTGet }
func (Set) Type() CommandType       { return CommandTSet }
func (Publish) Type() CommandType   { return CommandTPublish }
func (Subscribe) Type() CommandType { return CommandTSubscribe }
func (Ping) Type() CommandType      { return CommandTPing }
func (Unknown) Type() CommandType   { return CommandTUnknown }

func (c Get) Name() string       { return c.Type().String() }
func (c Set) Name() string       { return c.Type().String() }
func (c Publish) Name() string   { return c.Type().String() }
func (c Subscribe) Name() string { return c.Type().String() }
func (c Ping) Name() string      { return c.Type().String() }
func (c Unknown) Name() string   { return c.CommandName }

func (Get) command()       {}
func (Set) command()       {}
func (Publish) command()   {}
func (Subscribe) command() {}
func (Ping) command()      {}
func (Unknown) command()   {}

// --------------------------------------------------------------------------
// Frame conversion
// --------------------------------------------------------------------------

func (c Get) Frame() resp.Frame {
	return request("GET", resp.NewBulkString(c.Key))
}

func (c Set) Frame() resp.Frame {
	return request("SET", resp.NewBulkString(c.Key), resp.NewBulk(c.Value))
}

func (c Publish) Frame() resp.Frame {
	return request("PUBLISH", resp.NewBulkString(c.Channel), resp.NewBulk(c.Message))
}

func (c Subscribe) Frame() resp.Frame {
	args := make([]resp.Frame, len(c.Channels))
	for i, ch := range c.Channels {
		args[i] = resp.NewBulkString(ch)
	}
	return request("SUBSCRIBE", args...)
}

func (c Ping) Frame() resp.Frame {
	if c.Message == nil {
		return request("PING")
	}
	return request("PING", resp.NewBulk(c.Message))
}

func (c Unknown) Frame() resp.Frame {
	return request(strings.ToUpper(c.CommandName))
}

// request builds the array frame [name, args...]
func request(name string, args ...resp.Frame) resp.Frame {
	elems := make([]resp.Frame, 0, len(args)+1)
	elems = append(elems, resp.NewBulkString(name))
	elems = append(elems, args...)
	return resp.NewArray(elems...)
}
