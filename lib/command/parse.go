package command

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/rKV/lib/resp"
)

// FromFrame converts a request frame into a Command. The frame must be a non
// empty array whose first element (bulk or simple string) names the command,
// matched case-insensitively. Unrecognized names are not an error, they yield
// an Unknown command. Malformed requests return an error wrapping
// resp.ErrProtocol.
func FromFrame(frame resp.Frame) (Command, error) {
	p, err := newParser(frame)
	if err != nil {
		return nil, err
	}

	name, err := p.nextString()
	if err != nil {
		return nil, err
	}
	name = strings.ToLower(name)

	var cmd Command
	switch name {
	case "get":
		cmd, err = parseGet(p)
	case "set":
		cmd, err = parseSet(p)
	case "publish":
		cmd, err = parsePublish(p)
	case "subscribe":
		cmd, err = parseSubscribe(p)
	case "ping":
		cmd, err = parsePing(p)
	default:
		// the arguments of unknown commands are not inspected
		return Unknown{CommandName: name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if err := p.finish(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cmd, nil
}

func parseGet(p *parser) (Command, error) {
	key, err := p.nextString()
	if err != nil {
		return nil, err
	}
	return Get{Key: key}, nil
}

func parseSet(p *parser) (Command, error) {
	key, err := p.nextString()
	if err != nil {
		return nil, err
	}
	value, err := p.nextBytes()
	if err != nil {
		return nil, err
	}
	return Set{Key: key, Value: value}, nil
}

func parsePublish(p *parser) (Command, error) {
	channel, err := p.nextString()
	if err != nil {
		return nil, err
	}
	message, err := p.nextBytes()
	if err != nil {
		return nil, err
	}
	return Publish{Channel: channel, Message: message}, nil
}

func parseSubscribe(p *parser) (Command, error) {
	if p.remaining() == 0 {
		return nil, fmt.Errorf("%w: at least one channel is required", resp.ErrProtocol)
	}
	channels := make([]string, 0, p.remaining())
	for p.remaining() > 0 {
		ch, err := p.nextString()
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return Subscribe{Channels: channels}, nil
}

func parsePing(p *parser) (Command, error) {
	if p.remaining() == 0 {
		return Ping{}, nil
	}
	msg, err := p.nextBytes()
	if err != nil {
		return nil, err
	}
	return Ping{Message: msg}, nil
}

// --------------------------------------------------------------------------
// Parser
// --------------------------------------------------------------------------

// parser is a cursor over the elements of a request array
type parser struct {
	parts []resp.Frame
	pos   int
}

func newParser(frame resp.Frame) (*parser, error) {
	if frame.Kind != resp.KindArray {
		return nil, fmt.Errorf("%w: expected array frame, got %s", resp.ErrProtocol, frame.Kind)
	}
	if len(frame.Array) == 0 {
		return nil, fmt.Errorf("%w: empty command", resp.ErrProtocol)
	}
	return &parser{parts: frame.Array}, nil
}

func (p *parser) remaining() int {
	return len(p.parts) - p.pos
}

func (p *parser) next() (resp.Frame, error) {
	if p.pos >= len(p.parts) {
		return resp.Frame{}, fmt.Errorf("%w: wrong number of arguments", resp.ErrProtocol)
	}
	f := p.parts[p.pos]
	p.pos++
	return f, nil
}

// nextString returns the next element, which must be a simple or bulk string
func (p *parser) nextString() (string, error) {
	f, err := p.next()
	if err != nil {
		return "", err
	}
	s, ok := f.Text()
	if !ok {
		return "", fmt.Errorf("%w: expected string argument, got %s", resp.ErrProtocol, f.Kind)
	}
	return s, nil
}

// nextBytes returns the next element as raw bytes. The result is never nil.
func (p *parser) nextBytes() ([]byte, error) {
	f, err := p.next()
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case resp.KindBulk:
		if f.Bulk == nil {
			return []byte{}, nil
		}
		return f.Bulk, nil
	case resp.KindSimple:
		return []byte(f.Str), nil
	default:
		return nil, fmt.Errorf("%w: expected bulk argument, got %s", resp.ErrProtocol, f.Kind)
	}
}

// finish fails if the request has elements that were not consumed
func (p *parser) finish() error {
	if p.remaining() > 0 {
		return fmt.Errorf("%w: wrong number of arguments", resp.ErrProtocol)
	}
	return nil
}
