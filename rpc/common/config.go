package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Shared connection settings
// --------------------------------------------------------------------------

// SocketConf holds the kernel buffer sizes applied to accepted and dialed sockets
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// TLSConf holds the certificate settings of the tls transport
type TLSConf struct {
	CertFile           string
	KeyFile            string
	CAFile             string
	ServerName         string
	InsecureSkipVerify bool
}

// AOFConf configures the append-only log of a server
type AOFConf struct {
	// Path of the log file, empty disables the log
	Path string
	// Fsync forces every append to stable storage
	Fsync bool
	// Replay re-applies the log at startup
	Replay bool
}

// Enabled reports whether an append-only log is configured
func (c AOFConf) Enabled() bool {
	return c.Path != ""
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of a single rKV node
type ServerConfig struct {
	// Endpoint is the listen address (host:port or a unix socket path)
	Endpoint string

	// TimeoutSecond is the idle read timeout per connection, 0 disables it
	TimeoutSecond int64

	// Durability
	AOF AOFConf

	// Pub/sub
	SubscriberBacklog int

	// MetricsEndpoint is the HTTP address of the Prometheus endpoint, empty disables it
	MetricsEndpoint string

	// Logging configuration
	LogLevel string

	// Transport settings
	Socket SocketConf
	TCP    TCPConf
	TLS    TLSConf
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Server settings
	addSection("Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Subscriber Backlog", strconv.Itoa(c.SubscriberBacklog))
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	}

	// Append-only log
	addSection("Append-Only Log")
	if c.AOF.Enabled() {
		addField("Path", c.AOF.Path)
		addField("Fsync", strconv.FormatBool(c.AOF.Fsync))
		addField("Replay", strconv.FormatBool(c.AOF.Replay))
	} else {
		addField("Path", "(disabled)")
	}

	// Transport
	addSection("Transport")
	addField("TCP No Delay", strconv.FormatBool(c.TCP.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.TCP.TCPKeepAliveSec))
	if c.TLS.CertFile != "" {
		addField("TLS Certificate", c.TLS.CertFile)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds the settings used when dialing rKV nodes
type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int

	Socket SocketConf
	TCP    TCPConf
	TLS    TLSConf
}

// Timeout returns the per request timeout, 0 means none
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Sentinel configuration struct
// --------------------------------------------------------------------------

// SentinelConfig configures the failover monitor
type SentinelConfig struct {
	// Primary is the address of the initial primary
	Primary string
	// Replicas are the promotion candidates in order of preference
	Replicas []string
	// IntervalMillis is the time between two health checks
	IntervalMillis int
	// ProbeTimeoutMillis bounds a single liveness probe
	ProbeTimeoutMillis int
}

// Interval returns the health check interval
func (c *SentinelConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMillis) * time.Millisecond
}

// ProbeTimeout returns the timeout of a single probe
func (c *SentinelConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMillis) * time.Millisecond
}

// String returns a formatted string representation of the sentinel configuration
func (c *SentinelConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Sentinel")
	addField("Primary", c.Primary)
	addField("Interval", c.Interval().String())
	addField("Probe Timeout", c.ProbeTimeout().String())

	addSection("Replicas")
	for i, replica := range c.Replicas {
		addField(strconv.Itoa(i), replica)
	}

	return sb.String()
}
