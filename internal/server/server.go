// Package server provides the HTTP API for the resume tailor.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/compilation"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Service runs tailoring requests. *pipeline.Pipeline implements it.
type Service interface {
	Tailor(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Ingest(ctx context.Context, req pipeline.Request) (*types.JobPosting, error)
}

// Options configures a Server. Runs, JWT and Limiter are optional: a nil
// Runs hides the history routes, a nil JWT disables auth and a nil Limiter
// disables rate limiting.
type Options struct {
	Service   Service
	Artifacts *compilation.ArtifactStore
	Runs      db.RunStore
	JWT       *JWTService
	Limiter   *ratelimit.Limiter
	Logger    *zap.Logger

	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// TailorTimeout replaces WriteTimeout as the write deadline of a
	// POST /tailor response. Zero keeps WriteTimeout.
	TailorTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	opts       Options
	logger     *zap.Logger
	validate   *validator.Validate
	httpServer *http.Server
	now        func() time.Time
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("server requires a tailoring service")
	}
	if opts.Artifacts == nil {
		return nil, errors.New("server requires an artifact store")
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		opts:     opts,
		logger:   logging.OrNop(opts.Logger),
		validate: newValidator(),
		now:      time.Now,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.Handler(),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		// Long timeout for pipeline runs
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /tailor", s.protected(http.HandlerFunc(s.handleTailor)))
	mux.Handle("POST /scrape", s.protected(http.HandlerFunc(s.handleScrape)))

	mux.HandleFunc("GET /resume", s.handleLatestResume)
	mux.HandleFunc("GET /resume/{runId}", s.handleRunResume)
	mux.HandleFunc("GET /resume/{runId}/source", s.handleRunSource)

	if s.opts.Runs != nil {
		mux.HandleFunc("GET /runs", s.handleListRuns)
		mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	return middleware.RequestID(
		middleware.Logging(s.logger)(
			middleware.CORS(
				s.withRateLimit(mux),
			),
		),
	)
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.httpServer.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "server error")
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown failed")
	}
	if s.opts.Limiter != nil {
		s.opts.Limiter.Stop()
	}
	s.logger.Info("server stopped")
	return nil
}

// protected wraps h with bearer auth when a JWT service is configured.
func (s *Server) protected(h http.Handler) http.Handler {
	if s.opts.JWT == nil {
		return h
	}
	return middleware.AuthMiddleware(s.opts.JWT.AsTokenValidator())(h)
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.opts.Limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := ratelimit.MatchEndpoint(r.Method, r.URL.Path)
		res := s.opts.Limiter.Allow(extractClientID(r), class)
		setRateLimitHeaders(w, res)

		if !res.Allowed {
			s.logger.Warn("rate limit exceeded",
				zap.String("class", string(class)),
				zap.String("path", r.URL.Path),
				zap.Duration("retry_after", res.RetryAfter),
			)
			s.rateLimitResponse(w, res)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID uses the peer IP. Forwarded headers are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	if res.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, res ratelimit.Result) {
	retryAfter := int(res.RetryAfter.Round(time.Second).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"success":    false,
		"error":      "rate_limit_exceeded",
		"details":    "Rate limit exceeded. Please try again later.",
		"limit":      res.Limit,
		"retryAfter": retryAfter,
		"resetAt":    res.ResetAt.UTC().Format(time.RFC3339),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes err with the status HTTPStatus assigns to it.
func (s *Server) errorResponse(w http.ResponseWriter, summary string, err error) {
	s.jsonResponse(w, HTTPStatus(err), errorBody(summary, err))
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}
