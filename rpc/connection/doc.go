// Package connection turns a byte stream into a stream of resp frames.
//
// A Connection owns a growable read buffer. ReadFrame tries to decode a frame
// from the buffered bytes and only reads from the stream when the buffer holds
// an incomplete frame, so any segmentation of the input (one byte at a time,
// several frames per read) yields the same frames.
//
// End of stream is classified as:
//   - io.EOF: the peer closed the stream between two frames
//   - ErrConnectionReset: the peer closed the stream inside a frame
//
// WriteFrame encodes a whole frame and hands it to the stream in one Write
// call under a mutex.
//
// The same type serves network connections (net.Conn, TLS connections) and
// files; the append-only log is replayed through a read-only Connection.
package connection
