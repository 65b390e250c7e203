// Package server exposes a running session to clients over websocket and
// QUIC. Both gateways speak the same JSON envelope.
package server

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/warehouse/internal/config"
	"github.com/zeusync/warehouse/internal/core/events/bus"
	"github.com/zeusync/warehouse/internal/core/observability/log"
)

type Config struct {
	WebSocketAddr string
	// QUICAddr is optional; empty disables the QUIC gateway.
	QUICAddr string
	TLS      *tls.Config

	IdleTimeout     time.Duration
	LeaveTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		WebSocketAddr:   ":8080",
		QUICAddr:        ":8443",
		IdleTimeout:     30 * time.Second,
		LeaveTimeout:    5 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// ConfigFrom maps the server section of a warehouse document.
func ConfigFrom(c config.Server) Config {
	out := DefaultConfig()
	out.WebSocketAddr = c.WebSocketAddr
	out.QUICAddr = c.QUICAddr
	return out
}

// Loop is the frame loop the server keeps alive alongside its listeners.
type Loop interface {
	Run(ctx context.Context) error
	Close(ctx context.Context) error
}

type Server struct {
	cfg    Config
	sim    Sim
	loop   Loop
	hub    *Hub
	events bus.EventBus
	logger log.Log

	running atomic.Bool
	closed  atomic.Bool
	runCtx  atomic.Pointer[context.Context]
	wsAddr  atomic.Pointer[net.Addr]
	udpAddr atomic.Pointer[net.Addr]
}

// NewServer wires the hub to the bus. sim and loop are usually the same
// *session.Session.
func NewServer(cfg Config, sim Sim, loop Loop, events bus.EventBus, logger log.Log) (*Server, error) {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Server{
		cfg:    cfg,
		sim:    sim,
		loop:   loop,
		hub:    NewHub(logger),
		events: events,
		logger: logger.With(log.String("component", "server")),
	}
	if err := s.hub.Listen(events); err != nil {
		return nil, err
	}
	return s, nil
}

// Addr is the bound websocket address once Run is listening.
func (s *Server) Addr() net.Addr {
	if a := s.wsAddr.Load(); a != nil {
		return *a
	}
	return nil
}

// QUICAddr is the bound QUIC address once the gateway is listening.
func (s *Server) QUICAddr() net.Addr {
	if a := s.udpAddr.Load(); a != nil {
		return *a
	}
	return nil
}

// Run serves until ctx ends or a listener fails, then stops the loop and
// closes the session.
func (s *Server) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.running.Store(false)

	tlsConf := s.cfg.TLS
	if s.cfg.QUICAddr != "" && tlsConf == nil {
		var err error
		if tlsConf, err = SelfSignedTLS(); err != nil {
			return errors.Wrap(err, "quic tls")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	s.runCtx.Store(&gctx)

	ln, err := net.Listen("tcp", s.cfg.WebSocketAddr)
	if err != nil {
		return errors.Wrapf(ErrListenerFailed, "websocket %s: %v", s.cfg.WebSocketAddr, err)
	}
	addr := ln.Addr()
	s.wsAddr.Store(&addr)
	httpSrv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	g.Go(func() error { return s.loop.Run(gctx) })
	g.Go(func() error {
		s.logger.Info("websocket gateway listening", log.String("addr", addr.String()))
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "websocket serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if s.cfg.QUICAddr != "" {
		g.Go(func() error { return s.serveQUIC(gctx, s.cfg.QUICAddr, tlsConf) })
	}

	err = g.Wait()
	s.hub.Close()
	closeCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if cerr := s.loop.Close(closeCtx); cerr != nil {
		s.logger.Error("session close failed", log.Error(cerr))
		if err == nil {
			err = cerr
		}
	}
	s.closed.Store(true)
	s.logger.Info("server stopped")
	return err
}
