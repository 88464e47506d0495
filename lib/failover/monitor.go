package failover

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

//go:generate mockgen -source=$GOFILE -destination=mock_prober_test.go -package=$GOPACKAGE

var Logger = logger.GetLogger("failover")

// ErrNoCandidate is returned by Check if the primary is down and no
// candidate answered
var ErrNoCandidate = errors.New("failover: no reachable candidate")

// DefaultInterval is used when the configured interval is not positive
const DefaultInterval = time.Second

// IProber checks whether the node at addr is alive
type IProber interface {
	// Probe returns nil if the node answered in time
	Probe(ctx context.Context, addr string) error
}

// State is the health state of the monitored primary
type State int32

const (
	// StateHealthy means the last probe of the primary succeeded
	StateHealthy State = iota
	// StateFailingOver means the primary failed and candidates are probed
	StateFailingOver
	// StateDegraded means the primary is down and no candidate answered
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateFailingOver:
		return "failing-over"
	case StateDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Monitor watches the primary and promotes the first responsive candidate
// when it stops answering. The candidates are the initial primary followed
// by the replicas, in configured order. There is no quorum: a monitor that
// is partitioned from a healthy primary promotes a replica anyway.
type Monitor struct {
	config common.SentinelConfig
	prober IProber

	primary atomic.Pointer[string]
	state   atomic.Int32

	round sync.Mutex // serializes probe rounds

	hookMu    sync.RWMutex
	onPromote func(from, to string)
}

// NewMonitor creates a monitor with config.Primary as the current primary
func NewMonitor(config common.SentinelConfig, prober IProber) *Monitor {
	m := &Monitor{
		config: config,
		prober: prober,
	}
	primary := config.Primary
	m.primary.Store(&primary)
	m.state.Store(int32(StateHealthy))
	return m
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// PrimaryAddr returns the address of the current primary
func (m *Monitor) PrimaryAddr() string {
	return *m.primary.Load()
}

// State returns the state after the last completed check
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// OnPromote registers fn to be called after a candidate was promoted
func (m *Monitor) OnPromote(fn func(from, to string)) {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()
	m.onPromote = fn
}

// Run checks the primary every interval until ctx is done
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.config.Interval()
	if interval <= 0 {
		interval = DefaultInterval
	}

	Logger.Infof("Monitoring primary %s every %s", m.PrimaryAddr(), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.Check(ctx); err != nil && ctx.Err() == nil {
				Logger.Errorf("Health check failed: %v", err)
			}
		}
	}
}

// Check runs one probe round. If the primary does not answer, the
// candidates are probed in order and the first one that answers becomes the
// new primary. Check returns ErrNoCandidate if nobody answered.
func (m *Monitor) Check(ctx context.Context) error {
	m.round.Lock()
	defer m.round.Unlock()

	current := m.primary.Load()

	err := m.probe(ctx, *current)
	if err == nil {
		m.setState(StateHealthy)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	Logger.Warningf("Primary %s is unreachable: %v", *current, err)
	m.setState(StateFailingOver)

	for _, candidate := range m.candidates(*current) {
		Logger.Infof("Attempting failover to %s", candidate)

		if err := m.probe(ctx, candidate); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			Logger.Debugf("Candidate %s is unreachable: %v", candidate, err)
			continue
		}

		promoted := candidate
		if !m.primary.CompareAndSwap(current, &promoted) {
			// the primary was replaced while probing, keep the newer choice
			Logger.Infof("Primary changed to %s during failover", m.PrimaryAddr())
			m.setState(StateHealthy)
			return nil
		}

		Logger.Warningf("Promoted %s to primary (was %s)", promoted, *current)
		m.setState(StateHealthy)
		m.promoted(*current, promoted)
		return nil
	}

	Logger.Errorf("All candidates are unreachable, primary stays %s", *current)
	m.setState(StateDegraded)
	return ErrNoCandidate
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// candidates returns the initial primary and the replicas without current
// and without duplicates
func (m *Monitor) candidates(current string) []string {
	seen := map[string]struct{}{current: {}}
	var out []string
	for _, addr := range append([]string{m.config.Primary}, m.config.Replicas...) {
		if _, ok := seen[addr]; ok || addr == "" {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// probe applies the probe timeout to a single probe
func (m *Monitor) probe(ctx context.Context, addr string) error {
	if timeout := m.config.ProbeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return m.prober.Probe(ctx, addr)
}

func (m *Monitor) setState(s State) {
	if old := State(m.state.Swap(int32(s))); old != s {
		Logger.Debugf("State changed from %s to %s", old, s)
	}
}

func (m *Monitor) promoted(from, to string) {
	m.hookMu.RLock()
	fn := m.onPromote
	m.hookMu.RUnlock()
	if fn != nil {
		fn(from, to)
	}
}
