package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/webix/udirdlaga/pkg/logger"
)

type shutdownHook struct {
	name string
	fn   func(context.Context) error
}

type config struct {
	addr              string
	readTimeout       time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	logger            *slog.Logger
	startHooks        []func(string)
	shutdownHooks     []shutdownHook
}

// Server wraps http.Server with signal handling, graceful shutdown and
// ordered release of resources.
type Server struct {
	cfg *config

	mu  sync.Mutex
	srv *http.Server

	once        sync.Once
	shutdownErr error
}

// New returns a configured Server.
func New(opts ...Option) *Server {
	cfg := &config{
		addr:              ":8080",
		readHeaderTimeout: 10 * time.Second,
		shutdownTimeout:   15 * time.Second,
		logger:            slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Server{cfg: cfg}
}

// Run serves handler until ctx is done, SIGINT/SIGTERM arrives or
// Shutdown is called, then shuts down gracefully. It returns ErrStart when
// the listener cannot be bound and ErrShutdown when draining or a
// shutdown hook fails.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	if handler == nil {
		handler = http.NotFoundHandler()
	}

	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: server already running", ErrStart)
	}
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       s.cfg.readTimeout,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.cfg.logger.Handler(), slog.LevelWarn),
	}
	s.srv = srv
	s.mu.Unlock()

	addr := ln.Addr().String()
	s.cfg.logger.Info("http server listening", slog.String("addr", addr), logger.Component("httpserver"))
	for _, h := range s.cfg.startHooks {
		h(addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-ctx.Done():
		s.cfg.logger.Info("shutting down", slog.String("reason", "context done"), logger.Component("httpserver"))
	case sig := <-stop:
		s.cfg.logger.Info("shutting down", slog.String("signal", sig.String()), logger.Component("httpserver"))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.WithoutCancel(ctx))
			return errors.Join(ErrStart, err)
		}
		return s.Shutdown(context.WithoutCancel(ctx))
	}

	shutdownErr := s.Shutdown(context.WithoutCancel(ctx))
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrStart, err)
	}
	return shutdownErr
}

// Shutdown drains in-flight requests, then runs the shutdown hooks. Only
// the first call does work; later calls return its result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		var errs []error
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv != nil {
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs = append(errs, err)
			}
		}

		for _, h := range s.cfg.shutdownHooks {
			if err := h.fn(ctx); err != nil {
				s.cfg.logger.ErrorContext(ctx, "shutdown hook failed",
					slog.String("hook", h.name),
					logger.Error(err),
					logger.Component("httpserver"),
				)
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			}
		}

		if len(errs) > 0 {
			s.shutdownErr = errors.Join(append([]error{ErrShutdown}, errs...)...)
		}
	})
	return s.shutdownErr
}
