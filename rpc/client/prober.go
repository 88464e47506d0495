package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/rKV/lib/failover"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
)

// PingProber checks node liveness by dialing a fresh connection and sending
// PING. It satisfies failover.IProber.
type PingProber struct {
	config    common.ClientConfig
	connector transport.IClientConnector
}

var _ failover.IProber = (*PingProber)(nil)

// NewPingProber creates a prober. Probes never retry, a node that does not
// answer the first attempt is considered down.
func NewPingProber(config common.ClientConfig, connector transport.IClientConnector) *PingProber {
	config.RetryCount = 1
	return &PingProber{config: config, connector: connector}
}

// Probe returns nil if the node at addr answers PING with PONG
func (p *PingProber) Probe(ctx context.Context, addr string) error {
	c, err := Connect(ctx, addr, p.config, p.connector)
	if err != nil {
		return err
	}
	defer c.Close()

	reply, err := c.Ping(ctx, nil)
	if err != nil {
		return err
	}
	if string(reply) != "PONG" {
		return fmt.Errorf("unexpected ping reply from %s: %q", addr, reply)
	}
	return nil
}
