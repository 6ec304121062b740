package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/server/ratelimit"
)

// Store is the storage the handlers use; *db.DB implements it.
type Store interface {
	FindContactByLinkedIn(ctx context.Context, userID uuid.UUID, keys []string) (*db.Contact, error)
	CreateContact(ctx context.Context, input *db.ContactCreateInput) (*db.Contact, error)
	UpdateMutualConnections(ctx context.Context, id uuid.UUID, fn db.ConnectionsUpdate) (*db.Contact, error)
	CreateJob(ctx context.Context, input *db.JobCreateInput) (*db.Job, error)
	ListJobsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]db.Job, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	closeStore  func()
	extension   *config.ExtensionConfig
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	handler     http.Handler
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	Migrate     bool // apply the schema before serving
}

// New connects to the database, loads extension and JWT configuration from
// the environment and builds the server.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Migrate {
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
	}

	extCfg, err := config.NewExtensionConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load extension config: %w", err)
	}
	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := NewWithStore(database, extCfg, NewJWTService(jwtCfg), ratelimit.NewLimiter(ratelimit.LoadConfig()))
	s.closeStore = database.Close
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// NewWithStore builds the routes over an existing store.
func NewWithStore(store Store, ext *config.ExtensionConfig, jwtService *JWTService, limiter *ratelimit.Limiter) *Server {
	s := &Server{
		store:       store,
		extension:   ext,
		jwtService:  jwtService,
		rateLimiter: limiter,
	}

	apiKey := func(reject middleware.Rejecter, h http.HandlerFunc) http.Handler {
		return middleware.APIKeyMiddleware(ext, reject)(h)
	}
	bearer := middleware.AuthMiddleware(jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Extension endpoints
	mux.Handle("POST /api/extension/lookup-contact", apiKey(s.rejectWith(envelopeFound), s.handleLookupContact))
	mux.Handle("POST /api/extension/sync-connections", apiKey(s.rejectWith(envelopeSuccess), s.handleSyncConnections))
	mux.Handle("POST /api/extension/extract", apiKey(s.rejectWith(envelopeFound), s.handleExtract))
	mux.Handle("POST /api/extension/jobs", bearer(http.HandlerFunc(s.handleCreateJob)))
	mux.Handle("GET /api/extension/jobs", bearer(http.HandlerFunc(s.handleListJobs)))

	// Automation endpoints
	mux.Handle("POST /api/contacts", apiKey(s.rejectWith(envelopeSuccess), s.handleCreateContact))

	handler := s.withLogging(s.withCORS(mux))
	if limiter != nil {
		handler = s.withRateLimit(handler)
	}
	s.handler = handler
	return s
}

// Handler returns the server's root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.release()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Println("[server] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.release()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("[server] stopped")
	return nil
}

func (s *Server) release() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.closeStore != nil {
		s.closeStore()
	}
}

// withCORS adds CORS headers and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.APIKeyHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their per-route budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging logs each request with its status and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d %s in %v", r.Method, r.URL.Path, rec.status, r.RemoteAddr, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// envelope names the boolean flag a route's failure bodies carry.
type envelope string

const (
	envelopeNone    envelope = ""
	envelopeFound   envelope = "found"
	envelopeSuccess envelope = "success"
)

// errorResponse writes {"<flag>": false, "error": message}.
func (s *Server) errorResponse(w http.ResponseWriter, env envelope, status int, message string) {
	body := map[string]any{"error": message}
	if env != envelopeNone {
		body[string(env)] = false
	}
	s.jsonResponse(w, status, body)
}

// fail maps err to a status and writes it in the route's envelope. Server
// errors are logged with their cause and reported generically.
func (s *Server) fail(w http.ResponseWriter, env envelope, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[server] %v", err)
	}
	s.errorResponse(w, env, status, publicMessage(err))
}

func (s *Server) rejectWith(env envelope) middleware.Rejecter {
	return func(w http.ResponseWriter, _ *http.Request, message string) {
		s.errorResponse(w, env, http.StatusUnauthorized, message)
	}
}

// clientID identifies the caller for rate limiting by remote IP.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 with retry information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] limit exceeded: limit=%d remaining=%d", info.Limit, info.Remaining)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
