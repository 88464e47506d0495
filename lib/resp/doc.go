// Package resp implements the RESP-style wire format spoken between rKV clients
// and servers. It is also the on-disk record format of the append-only log.
//
// A Frame is one protocol value. Every frame starts with a type byte, and every
// line is terminated by CRLF:
//
//	+OK\r\n                      simple string
//	-ERR message\r\n             error
//	:42\r\n                      signed 64 bit integer
//	$3\r\nfoo\r\n                bulk string (binary safe, length prefixed)
//	$-1\r\n                      null
//	*2\r\n$3\r\nGET\r\n$1\r\nk\r\n   array of frames
//
// A zero length bulk string ("$0\r\n\r\n") is a value and is not the same as
// null. A zero length array ("*0\r\n") is an empty array.
//
// Decoding is incremental: Decode either returns a complete frame together
// with the number of bytes it consumed, reports ErrIncomplete when the buffer
// only holds a prefix of a frame, or returns an error wrapping ErrProtocol
// when the bytes can never become a valid frame. Callers that read from a
// stream keep the buffer, read more bytes and retry on ErrIncomplete.
//
// AppendFrame and Encode are the exact inverse of Decode. For every frame that
// can be constructed with the factory functions of this package,
// Decode(Encode(f)) yields f and consumes the whole encoding.
package resp
