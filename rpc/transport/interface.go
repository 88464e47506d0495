package transport

import (
	"context"
	"net"

	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport")

// --------------------------------------------------------------------------
// Server Side
// --------------------------------------------------------------------------

// IServerConnector creates the listener a server accepts connections on
type IServerConnector interface {
	// Listen creates a listener for config.Endpoint and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies transport specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// --------------------------------------------------------------------------
// Client Side
// --------------------------------------------------------------------------

// IClientConnector dials a single byte-stream connection to a node
type IClientConnector interface {
	// Connect establishes a single connection to endpoint
	Connect(ctx context.Context, endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies transport specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}
