package tls

import (
	"context"
	gotls "crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/ValentinKolb/rKV/rpc/transport/tcp"
)

// --------------------------------------------------------------------------
// Server Connector
// --------------------------------------------------------------------------

// serverConnector implements the IServerConnector interface for TLS over TCP
type serverConnector struct{}

func (c *serverConnector) GetName() string {
	return "tls"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	if config.TLS.CertFile == "" || config.TLS.KeyFile == "" {
		return nil, errors.New("tls transport requires a certificate and a key file")
	}

	cert, err := gotls.LoadX509KeyPair(config.TLS.CertFile, config.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %v", err)
	}

	listener, err := net.Listen("tcp", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}

	return gotls.NewListener(listener, &gotls.Config{
		Certificates: []gotls.Certificate{cert},
		MinVersion:   gotls.VersionTLS12,
	}), nil
}

func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	if tlsConn, ok := conn.(*gotls.Conn); ok {
		conn = tlsConn.NetConn()
	}
	return tcp.UpgradeConnection(conn, config.Socket, config.TCP)
}

// NewServerConnector creates a new TLS server connector
func NewServerConnector() transport.IServerConnector {
	return &serverConnector{}
}

// --------------------------------------------------------------------------
// Client Connector
// --------------------------------------------------------------------------

// clientConnector implements the IClientConnector interface for TLS over TCP
type clientConnector struct {
	dialer *gotls.Dialer
}

func (c *clientConnector) GetName() string {
	return "tls"
}

func (c *clientConnector) Connect(ctx context.Context, endpoint string) (net.Conn, error) {
	return c.dialer.DialContext(ctx, "tcp", endpoint)
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	if tlsConn, ok := conn.(*gotls.Conn); ok {
		conn = tlsConn.NetConn()
	}
	return tcp.UpgradeConnection(conn, config.Socket, config.TCP)
}

// NewClientConnector creates a TLS client connector. If conf.CAFile is set,
// server certificates are verified against it instead of the system pool.
func NewClientConnector(conf common.TLSConf) (transport.IClientConnector, error) {
	tlsConfig := &gotls.Config{
		ServerName:         conf.ServerName,
		InsecureSkipVerify: conf.InsecureSkipVerify,
		MinVersion:         gotls.VersionTLS12,
	}

	if conf.CAFile != "" {
		pem, err := os.ReadFile(conf.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %v", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", conf.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if conf.InsecureSkipVerify {
		transport.Logger.Warningf("TLS certificate verification is disabled")
	}

	return &clientConnector{dialer: &gotls.Dialer{Config: tlsConfig}}, nil
}
