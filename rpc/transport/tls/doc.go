// Package tls implements TLS-encrypted TCP connectors for the rKV transport
// layer. The server side loads a certificate and key from common.TLSConf, the
// client side optionally pins a CA file. Encryption is entirely handled by
// crypto/tls; the protocol layer only sees a net.Conn.
package tls
