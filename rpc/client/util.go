package client

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/rKV/lib/resp"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// ServerError is an error frame returned by the server
type ServerError struct {
	Msg string
}

func (e *ServerError) Error() string {
	return "server error: " + e.Msg
}

// UnexpectedResponseError is returned when the response frame does not have
// the shape the request calls for
type UnexpectedResponseError struct {
	Command string
	Frame   resp.Frame
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response to %s: %s", e.Command, e.Frame)
}

// IsServerError reports whether err is an error frame sent by the server.
// Every other error means the connection can no longer be trusted.
func IsServerError(err error) bool {
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

// checkResponse turns error frames into a *ServerError and rejects frames
// whose kind is not one of kinds
func checkResponse(cmd string, frame resp.Frame, kinds ...resp.Kind) error {
	if frame.Kind == resp.KindError {
		return &ServerError{Msg: frame.Str}
	}
	for _, k := range kinds {
		if frame.Kind == k {
			return nil
		}
	}
	return &UnexpectedResponseError{Command: cmd, Frame: frame}
}
