// Package failover implements a monitor that watches a primary node and
// promotes a replica when the primary stops answering.
//
// Every interval the monitor probes the current primary. If the probe fails
// the monitor enters StateFailingOver and probes the candidates (the initial
// primary, then the replicas in configured order, skipping the current
// primary). The first candidate that answers becomes the primary. If none
// answers the monitor reports StateDegraded and tries again on the next tick.
//
// PrimaryAddr can be read from any goroutine. The primary cell is replaced
// with a compare-and-swap, a promotion never overwrites a newer one.
//
// The monitor does not reconfigure nodes. It only tracks which address
// clients should use; there is no quorum and no fencing of the old primary.
//
// Usage Example:
//
//	m := failover.NewMonitor(config, client.NewPingProber(clientConfig, tcp.NewClientConnector()))
//	m.OnPromote(func(from, to string) {
//		fmt.Printf("promoted %s (was %s)\n", to, from)
//	})
//	go m.Run(ctx)
//
//	addr := m.PrimaryAddr()
package failover
