package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/rKV/lib/aof"
	"github.com/ValentinKolb/rKV/lib/store"
	"github.com/ValentinKolb/rKV/lib/store/lstore"
	"github.com/ValentinKolb/rKV/rpc/common"
	"github.com/ValentinKolb/rKV/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("server")

// Server accepts connections and serves the rKV protocol on them. All
// connection handlers share one store and one append-only log.
type Server struct {
	config    common.ServerConfig
	connector transport.IServerConnector
	store     store.IStore
	aof       *aof.Log
	metrics   *serverMetrics

	// conns tracks accepted connections so that shutdown can drop them
	conns      *xsync.MapOf[uint64, net.Conn]
	nextConnID atomic.Uint64
	handlers   sync.WaitGroup

	ready chan struct{}
	addr  net.Addr
}

// NewServer creates a new server
// It takes a config and the connector of the transport to listen on
//
// Usage:
//
//	s := server.NewServer(*config, tcp.NewServerConnector())
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewServer(config common.ServerConfig, connector transport.IServerConnector) *Server {
	s := &Server{
		config:    config,
		connector: connector,
		store:     lstore.NewLocalStore(config.SubscriberBacklog),
		conns:     xsync.NewMapOf[uint64, net.Conn](),
		ready:     make(chan struct{}),
	}
	s.metrics = newServerMetrics(s)
	return s
}

// Store returns the shared store of this server
func (s *Server) Store() store.IStore {
	return s.store
}

// Ready is closed once the server listens
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the listen address. It is only valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// init sets up logging and restores the store from the append-only log
func (s *Server) init() error {
	// Init logger
	if err := common.InitLoggers(s.config.LogLevel); err != nil {
		return err
	}

	Logger.Infof("Created rKV Server")
	Logger.Infof(s.config.String())

	if !s.config.AOF.Enabled() {
		Logger.Warningf("append-only log is disabled, writes are not durable")
		return nil
	}

	if s.config.AOF.Replay {
		n, err := aof.Replay(s.config.AOF.Path, s.store)
		if err != nil {
			return fmt.Errorf("failed to replay append-only log: %w", err)
		}
		Logger.Infof("restored %d keys from %d log records", s.store.Len(), n)
	}

	log, err := aof.Open(s.config.AOF.Path, s.config.AOF.Fsync)
	if err != nil {
		return err
	}
	s.aof = log
	return nil
}

// Serve initializes the server and accepts connections until ctx is
// cancelled. Cancelling ctx closes the listener and drops every accepted
// connection without waiting for in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.init(); err != nil {
		return err
	}
	defer s.closeLog()

	listener, err := s.connector.Listen(s.config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}
	s.addr = listener.Addr()

	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics(ctx)
	}

	// stop accepting and drop connections on shutdown
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		_ = listener.Close()
		s.dropConnections()
	}()

	Logger.Infof("Starting %s server on %s", s.connector.GetName(), s.addr)
	close(s.ready)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			Logger.Errorf("Accept error: %v", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	Logger.Infof("Server on %s stopped accepting connections", s.addr)
	s.dropConnections()
	s.handlers.Wait()
	return nil
}

// dropConnections closes every tracked connection
func (s *Server) dropConnections() {
	s.conns.Range(func(id uint64, conn net.Conn) bool {
		_ = conn.Close()
		return true
	})
}

func (s *Server) closeLog() {
	if s.aof == nil {
		return
	}
	if err := s.aof.Close(); err != nil {
		Logger.Errorf("failed to close append-only log: %v", err)
	}
}
