// Package httpapi exposes the session controller over a polling HTTP
// surface: submit a topic, submit feedback, poll for state.
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harun/mathwise/internal/metrics"
	"github.com/harun/mathwise/pkg/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	options      ServerOptions
	server       *http.Server
	controller   *pipeline.Controller
	rateLimiter  *RateLimiter
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	startTime    time.Time
	inFlightReqs sync.WaitGroup
}

// NewServer creates an API server over the given controller. The metrics
// handler is mounted when metrics are provided.
func NewServer(options ServerOptions, controller *pipeline.Controller, m *metrics.Metrics, logger zerolog.Logger) (*Server, error) {
	if controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	if options.Port == 0 {
		options.Port = 8080
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.RateLimitPerMinute == 0 {
		options.RateLimitPerMinute = 100
	}
	if options.ShutdownTimeout == 0 {
		options.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		options:     options,
		controller:  controller,
		rateLimiter: NewRateLimiter(options.RateLimitPerMinute),
		metrics:     m,
		logger:      logger.With().Str("component", "httpapi").Logger(),
		startTime:   time.Now(),
	}, nil
}

// routes builds the request mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /chat", s.withMiddleware("chat", s.handleChat))
	mux.HandleFunc("GET /chat/{id}", s.withMiddleware("poll", s.handlePoll))
	mux.HandleFunc("DELETE /chat/{id}", s.withMiddleware("delete", s.handleDelete))
	mux.HandleFunc("POST /human-input", s.withMiddleware("feedback", s.handleFeedback))

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return mux
}

// Start runs the server until Stop is called. It blocks.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: s.routes(),
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting API server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server, waiting for in-flight requests up to
// the shutdown timeout.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Shutting down API server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.options.ShutdownTimeout):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	s.rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}

	s.logger.Info().Msg("API server stopped")
	return nil
}

// withMiddleware wraps a handler with rate limiting, in-flight tracking,
// and request metrics.
func (s *Server) withMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.inFlightReqs.Add(1)
		defer s.inFlightReqs.Done()

		if !s.rateLimiter.Allow(clientIP(r)) {
			s.observe(endpoint, http.StatusTooManyRequests)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next(w, r)
	}
}

func (s *Server) observe(endpoint string, status int) {
	if s.metrics != nil {
		s.metrics.HTTPRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", status)).Inc()
	}
}

// clientIP extracts the caller's IP, preferring X-Forwarded-For when a
// proxy sits in front.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
