package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// serverMetrics holds the counters of one server. Every server owns its own
// set so that several servers can live in one process.
type serverMetrics struct {
	set *metrics.Set

	connectionsTotal  *metrics.Counter
	protocolErrors    *metrics.Counter
	aofErrors         *metrics.Counter
	laggedSubscribers *metrics.Counter
	published         *metrics.Counter
	delivered         *metrics.Counter
}

func newServerMetrics(s *Server) *serverMetrics {
	set := metrics.NewSet()
	m := &serverMetrics{
		set:               set,
		connectionsTotal:  set.NewCounter("rkv_connections_total"),
		protocolErrors:    set.NewCounter("rkv_protocol_errors_total"),
		aofErrors:         set.NewCounter("rkv_aof_errors_total"),
		laggedSubscribers: set.NewCounter("rkv_lagged_subscribers_total"),
		published:         set.NewCounter("rkv_messages_published_total"),
		delivered:         set.NewCounter("rkv_messages_delivered_total"),
	}
	set.NewGauge("rkv_connections_active", func() float64 {
		return float64(s.conns.Size())
	})
	set.NewGauge("rkv_keys", func() float64 {
		return float64(s.store.Len())
	})
	set.NewGauge("rkv_store_index", func() float64 {
		return float64(s.store.Index())
	})
	return m
}

// command returns the counter of executed commands with the given name
func (m *serverMetrics) command(name string) *metrics.Counter {
	return m.set.GetOrCreateCounter(fmt.Sprintf(`rkv_commands_total{command=%q}`, name))
}

// WriteMetrics writes the server metrics in Prometheus text format
func (s *Server) WriteMetrics(w io.Writer) {
	s.metrics.set.WritePrometheus(w)
}

// serveMetrics exposes the metrics over http until ctx is cancelled
func (s *Server) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.WriteMetrics(w)
		metrics.WriteProcessMetrics(w)
	})

	srv := &http.Server{
		Addr:              s.config.MetricsEndpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	Logger.Infof("Serving metrics on http://%s/metrics", s.config.MetricsEndpoint)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Logger.Errorf("Metrics endpoint failed: %v", err)
	}
}
