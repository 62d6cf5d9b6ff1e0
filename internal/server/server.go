// Package server exposes the validation pipeline over HTTP. Runs are
// synchronous: POST /validate blocks until the result is ready, and
// POST /validate/stream reports stage progress over SSE while it runs.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/marcus/story-validator/internal/db"
	"github.com/marcus/story-validator/internal/pipeline"
	"github.com/marcus/story-validator/internal/server/ratelimit"
	"github.com/marcus/story-validator/internal/types"
)

// Runner executes one validation run.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (*types.ValidationResult, error)
}

// ValidationStore reads and annotates persisted validations.
type ValidationStore interface {
	GetValidation(ctx context.Context, validationID uuid.UUID) (*types.ValidationResult, error)
	ListValidations(ctx context.Context, storyID string, limit int) ([]db.ValidationSummary, error)
	AddComment(ctx context.Context, validationID uuid.UUID, author, body string) (uuid.UUID, error)
	ListComments(ctx context.Context, validationID uuid.UUID) ([]db.Comment, error)
}

// Config holds HTTP server settings.
type Config struct {
	Port      int
	ReportDir string
}

// Server routes validation requests to the pipeline and store.
type Server struct {
	config    Config
	runner    Runner
	store     ValidationStore
	validate  *validator.Validate
	limiter   *ratelimit.Limiter
	startTime time.Time
}

// New builds a server with rate limiting loaded from the environment.
func New(config Config, runner Runner, store ValidationStore) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}
	return &Server{
		config:    config,
		runner:    runner,
		store:     store,
		validate:  validator.New(),
		limiter:   ratelimit.NewLimiter(ratelimit.LoadConfig()),
		startTime: time.Now(),
	}
}

// Handler assembles the route table and middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.HandleFunc("POST /validate/stream", s.handleValidateStream)
	mux.HandleFunc("GET /validation/{id}", s.handleGetValidation)
	mux.HandleFunc("GET /validation/{id}/report", s.handleGetReport)
	mux.HandleFunc("POST /validation/{id}/comments", s.handleAddComment)
	mux.HandleFunc("GET /validation/{id}/comments", s.handleListComments)
	mux.HandleFunc("GET /stories/{id}/validations", s.handleListValidations)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start runs the server until SIGINT or SIGTERM, then shuts down
// gracefully. Write timeout is long because a validation run holds the
// connection open across several LLM calls.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Validation API listening on :%d\n", s.config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		fmt.Printf("Received %s, shutting down\n", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.limiter.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		fmt.Printf("%s %s %s (%v)\n", r.RemoteAddr, r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)
		allowed, info := s.limiter.Allow(clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractClientID keys rate limit buckets by client IP.
func extractClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit == 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

func rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	retryAfter := int(info.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": retryAfter,
	})
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("failed to encode response: %v\n", err)
	}
}

func errorResponse(w http.ResponseWriter, err error) {
	jsonResponse(w, HTTPStatus(err), map[string]string{"error": err.Error()})
}
