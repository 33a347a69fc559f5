// Package tcp implements the messaging endpoint: a listening socket, one
// goroutine per accepted connection, and a per-connection dispatcher that
// reads one JSON line, routes it to a handler, and writes one response line.
package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"

	"distsocial/internal/logging"
	"distsocial/internal/server/session"
	"distsocial/internal/server/storage"
)

type Server struct {
	address  string
	logger   logging.Logger
	store    *storage.Store
	sessions *session.Registry

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func NewServer(address string, l logging.Logger, store *storage.Store, sessions *session.Registry) *Server {
	return &Server{
		address:  address,
		logger:   l.With("module", "tcp_server"),
		store:    store,
		sessions: sessions,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Run binds the configured address and serves until ctx is cancelled.
// A bind failure is fatal for startup.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.address, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections from listener, spawning one goroutine per
// connection with no cap. On ctx cancellation the listener and every live
// connection are closed.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping messaging server...")
		listener.Close()
		s.closeAll()
	}()

	s.logger.Info(ctx, "Starting messaging server", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.track(conn)
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) track(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = struct{}{}
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}
