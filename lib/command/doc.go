// Package command defines the requests understood by an rKV server and the
// conversion between request frames and typed commands.
//
// A request is an array frame whose first element is the command name. Names
// are matched case-insensitively:
//
//	GET key                 -> Get
//	SET key value           -> Set
//	PUBLISH channel message -> Publish
//	SUBSCRIBE channel...    -> Subscribe (one or more channels)
//	PING [message]          -> Ping
//	anything else           -> Unknown (name lowercased)
//
// Fixed arity commands reject surplus arguments. Every parse failure wraps
// resp.ErrProtocol so that callers can treat it like a malformed frame.
//
// Frame is the inverse of FromFrame and is used by the client to build
// requests and by the append-only log to persist writes.
package command
