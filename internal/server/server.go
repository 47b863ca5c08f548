// Package server exposes studio sessions over a JSON HTTP API.
//
// Each session owns one [studio.Controller]. Remote flows started through
// the API run in the background by default; pass ?wait=true to block until
// the flow finishes. Session state can also be followed as a stream of
// server-sent events.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Deva-here/ScribbleForge/pkg/session"
	"github.com/Deva-here/ScribbleForge/pkg/studio"
)

// Defaults for Server options.
const (
	DefaultRequestTimeout = 2 * time.Minute
	DefaultFlowTimeout    = 2 * time.Minute
	shutdownTimeout       = 10 * time.Second
)

// ControllerFactory builds the controller for a new session.
type ControllerFactory func(opts ...studio.Option) *studio.Controller

// Server serves the session API.
type Server struct {
	store          session.Store
	newController  ControllerFactory
	logger         *log.Logger
	sessionTTL     time.Duration
	requestTimeout time.Duration
	flowTimeout    time.Duration

	flows sync.WaitGroup

	// closing is closed when a graceful shutdown begins; event streams
	// end on it.
	closing   chan struct{}
	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and flow logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionTTL sets how long an idle session lives.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithRequestTimeout bounds the handling of a single request.
// Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.requestTimeout = d }
}

// WithFlowTimeout bounds a background flow.
func WithFlowTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.flowTimeout = d
		}
	}
}

// New creates a server storing sessions in store and building their
// controllers with newController.
func New(store session.Store, newController ControllerFactory, opts ...Option) *Server {
	s := &Server{
		store:          store,
		newController:  newController,
		logger:         log.Default(),
		sessionTTL:     session.DefaultTTL,
		requestTimeout: DefaultRequestTimeout,
		flowTimeout:    DefaultFlowTimeout,
		closing:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		timeout := s.timeout()
		r.With(timeout).Get("/presets", s.handlePresets)
		r.With(timeout).Post("/sessions", s.handleCreateSession)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(s.loadSession)
			r.Get("/events", s.handleEvents)

			r.Group(func(r chi.Router) {
				r.Use(timeout)
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/text", s.handleSetText)
				r.Patch("/settings", s.handleChangeSetting)
				r.Post("/reset", s.handleReset)
				r.Post("/generate", s.handleGenerate)
				r.Post("/analyze", s.handleAnalyze)
			})
		})
	})

	return r
}

// timeout returns the request timeout middleware. The event stream is
// exempt.
func (s *Server) timeout() func(http.Handler) http.Handler {
	if s.requestTimeout <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.Timeout(s.requestTimeout)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully and waits for background flows to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener. A Server is served at
// most once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return log.WithContext(context.Background(), s.logger) },
	}

	srv.RegisterOnShutdown(s.closeStreams)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// closeStreams ends open event streams. Shutdown does not cancel request
// contexts, so long-lived streams would otherwise hold it until its timeout.
func (s *Server) closeStreams() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// Wait blocks until every background flow has finished.
func (s *Server) Wait() { s.flows.Wait() }
