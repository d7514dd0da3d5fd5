// Package server runs the TCP front end: one accept loop, one goroutine per
// client connection, each connection owning a session state machine that is
// unauthenticated until a successful AUTH and bound to a single role and
// username afterwards.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashokCh-dev/Academia-Portal/internal/logger"
	"github.com/ashokCh-dev/Academia-Portal/internal/portal"
	"github.com/ashokCh-dev/Academia-Portal/internal/protocol"
	"github.com/ashokCh-dev/Academia-Portal/internal/ratelimiter"
)

type Server struct {
	port            string
	maxConns        int32
	shutdownTimeout time.Duration
	listener        net.Listener
	portal          *portal.Portal
	dispatcher      *protocol.Dispatcher
	limiter         *ratelimiter.RateLimiter

	active int32
	wg     sync.WaitGroup
}

// Option tweaks server construction.
type Option func(*Server)

// WithMaxConnections caps concurrent client connections; 0 means unlimited.
func WithMaxConnections(n int) Option {
	return func(s *Server) { s.maxConns = int32(n) }
}

// WithAcceptLimiter rate-limits new connections at the accept loop.
func WithAcceptLimiter(l *ratelimiter.RateLimiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithShutdownTimeout bounds the wait for in-flight connections once the
// listener closes.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

func New(port string, p *portal.Portal, opts ...Option) *Server {
	s := &Server{
		port:            port,
		shutdownTimeout: 10 * time.Second,
		portal:          p,
		dispatcher:      protocol.NewDispatcher(p),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve blocks accepting connections until ctx is cancelled. A bind failure
// is returned immediately; per-connection errors only terminate their
// connection.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", s.port))
	if err != nil {
		return fmt.Errorf("failed to start listener: %w", err)
	}

	s.listener = listener
	logger.Info("server listening on port %s", s.port)

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		tcpConn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.drain()
				return nil
			default:
				logger.Debug("accept error: %v", err)
				continue
			}
		}

		if s.limiter != nil && !s.limiter.Allow() {
			logger.Warn("connection from %s rejected by rate limit", tcpConn.RemoteAddr())
			tcpConn.Close()
			continue
		}
		if s.maxConns > 0 && atomic.LoadInt32(&s.active) >= s.maxConns {
			logger.Warn("connection from %s rejected, %d connections active", tcpConn.RemoteAddr(), s.maxConns)
			tcpConn.Close()
			continue
		}

		atomic.AddInt32(&s.active, 1)
		s.wg.Add(1)
		conn := s.newConn(tcpConn)
		go func() {
			defer s.wg.Done()
			defer atomic.AddInt32(&s.active, -1)
			conn.serve(ctx)
		}()
	}
}

// drain waits for in-flight connections, giving up after the shutdown
// timeout so a stuck client cannot hold the process open.
func (s *Server) drain() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.shutdownTimeout):
		logger.Warn("shutdown timeout reached with %d connections active", atomic.LoadInt32(&s.active))
	}
}
