package failover

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/golang/mock/gomock"
)

var errDown = errors.New("connection refused")

func testConfig() common.SentinelConfig {
	return common.SentinelConfig{
		Primary:            "p:1",
		Replicas:           []string{"r1:1", "r2:1"},
		IntervalMillis:     10,
		ProbeTimeoutMillis: 100,
	}
}

func TestCheckHealthyPrimary(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), "p:1").Return(nil)

	m := NewMonitor(testConfig(), prober)
	if err := m.Check(context.Background()); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if m.PrimaryAddr() != "p:1" || m.State() != StateHealthy {
		t.Errorf("PrimaryAddr() = %s, State() = %s", m.PrimaryAddr(), m.State())
	}
}

func TestCheckPromotesFirstResponder(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)
	gomock.InOrder(
		prober.EXPECT().Probe(gomock.Any(), "p:1").Return(errDown),
		prober.EXPECT().Probe(gomock.Any(), "r1:1").Return(errDown),
		prober.EXPECT().Probe(gomock.Any(), "r2:1").Return(nil),
	)

	m := NewMonitor(testConfig(), prober)
	var from, to string
	m.OnPromote(func(f, t string) { from, to = f, t })

	if err := m.Check(context.Background()); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if m.PrimaryAddr() != "r2:1" {
		t.Errorf("PrimaryAddr() = %s, want r2:1", m.PrimaryAddr())
	}
	if m.State() != StateHealthy {
		t.Errorf("State() = %s, want healthy", m.State())
	}
	if from != "p:1" || to != "r2:1" {
		t.Errorf("OnPromote(%s, %s), want (p:1, r2:1)", from, to)
	}
}

func TestCheckSkipsCurrentPrimary(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)

	m := NewMonitor(testConfig(), prober)

	// first round: p:1 fails, r1:1 takes over
	gomock.InOrder(
		prober.EXPECT().Probe(gomock.Any(), "p:1").Return(errDown),
		prober.EXPECT().Probe(gomock.Any(), "r1:1").Return(nil),
	)
	if err := m.Check(context.Background()); err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	// second round: r1:1 fails, the old primary is back and wins
	gomock.InOrder(
		prober.EXPECT().Probe(gomock.Any(), "r1:1").Return(errDown),
		prober.EXPECT().Probe(gomock.Any(), "p:1").Return(nil),
	)
	if err := m.Check(context.Background()); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if m.PrimaryAddr() != "p:1" {
		t.Errorf("PrimaryAddr() = %s, want p:1", m.PrimaryAddr())
	}
}

func TestCheckNoCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), gomock.Any()).Return(errDown).Times(3)

	m := NewMonitor(testConfig(), prober)
	if err := m.Check(context.Background()); !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("Check() error = %v, want ErrNoCandidate", err)
	}
	if m.PrimaryAddr() != "p:1" {
		t.Errorf("PrimaryAddr() = %s, want p:1", m.PrimaryAddr())
	}
	if m.State() != StateDegraded {
		t.Errorf("State() = %s, want degraded", m.State())
	}

	// recovery on the next round
	prober.EXPECT().Probe(gomock.Any(), "p:1").Return(nil)
	if err := m.Check(context.Background()); err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if m.State() != StateHealthy {
		t.Errorf("State() = %s, want healthy", m.State())
	}
}

func TestCandidates(t *testing.T) {
	config := testConfig()
	config.Replicas = []string{"r1:1", "p:1", "", "r1:1", "r2:1"}
	m := NewMonitor(config, nil)

	got := m.candidates("r1:1")
	expected := []string{"p:1", "r2:1"}
	if len(got) != len(expected) {
		t.Fatalf("candidates() = %v, want %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("candidates()[%d] = %s, want %s", i, got[i], expected[i])
		}
	}
}

func TestProbeTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), "p:1").DoAndReturn(func(ctx context.Context, addr string) error {
		deadline, ok := ctx.Deadline()
		if !ok || time.Until(deadline) > 100*time.Millisecond {
			t.Errorf("probe context has no deadline within the probe timeout")
		}
		return nil
	})

	m := NewMonitor(testConfig(), prober)
	_ = m.Check(context.Background())
}

func TestCheckCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	prober.EXPECT().Probe(gomock.Any(), "p:1").DoAndReturn(func(ctx context.Context, addr string) error {
		cancel()
		return ctx.Err()
	})

	m := NewMonitor(testConfig(), prober)
	if err := m.Check(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Check() error = %v, want context.Canceled", err)
	}
	if m.PrimaryAddr() != "p:1" {
		t.Errorf("PrimaryAddr() changed on a cancelled check")
	}
}

func TestRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)

	promoted := make(chan string, 1)
	prober.EXPECT().Probe(gomock.Any(), "p:1").Return(errDown)
	prober.EXPECT().Probe(gomock.Any(), "r1:1").Return(nil).MinTimes(1)

	m := NewMonitor(testConfig(), prober)
	m.OnPromote(func(from, to string) { promoted <- to })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case to := <-promoted:
		if to != "r1:1" {
			t.Errorf("promoted %s, want r1:1", to)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no promotion within 5s")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestConcurrentReaders(t *testing.T) {
	ctrl := gomock.NewController(t)
	prober := NewMockIProber(ctrl)
	prober.EXPECT().Probe(gomock.Any(), "p:1").Return(errDown)
	prober.EXPECT().Probe(gomock.Any(), "r1:1").Return(nil)

	m := NewMonitor(testConfig(), prober)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					if addr := m.PrimaryAddr(); addr != "p:1" && addr != "r1:1" {
						t.Errorf("PrimaryAddr() = %q", addr)
						return
					}
				}
			}
		}()
	}

	_ = m.Check(context.Background())
	close(stop)
	wg.Wait()

	if m.PrimaryAddr() != "r1:1" {
		t.Errorf("PrimaryAddr() = %s, want r1:1", m.PrimaryAddr())
	}
}

func TestStateString(t *testing.T) {
	for state, expected := range map[State]string{
		StateHealthy:     "healthy",
		StateFailingOver: "failing-over",
		StateDegraded:    "degraded",
		State(42):        "state(42)",
	} {
		if got := state.String(); got != expected {
			t.Errorf("State(%d).String() = %s, want %s", int32(state), got, expected)
		}
	}
}
