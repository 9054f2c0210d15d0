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
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/form-autofill/internal/autofill"
	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/enrich"
	"github.com/jonathan/form-autofill/internal/matching"
	"github.com/jonathan/form-autofill/internal/server/middleware"
	"github.com/jonathan/form-autofill/internal/server/ratelimit"
	"github.com/jonathan/form-autofill/internal/store"
	"github.com/jonathan/form-autofill/internal/transport"
)

// maxBodyBytes bounds request bodies; resumes arrive base64 encoded.
const maxBodyBytes = 15 << 20

// Deps are the collaborators a Server is built from.
type Deps struct {
	Profiles  store.Store
	Users     store.UserStore
	AI        enrich.Provider
	JWT       *JWTService
	Passwords *config.PasswordConfig
	// Limiter is optional; nil disables rate limiting.
	Limiter *ratelimit.Limiter
	// Matcher defaults to matching.New().
	Matcher       *matching.Matcher
	EnrichTimeout time.Duration
	ClientOptions []transport.ClientOption
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	origins     []string
	profiles    store.Store
	ai          enrich.Provider
	enricher    *enrich.Enricher
	aiTimeout   time.Duration
	fills       *autofill.Service
	matcher     *matching.Matcher
	clientOpts  []transport.ClientOption
	rateLimiter *ratelimit.Limiter
	authHandler *AuthHandler
}

// New creates a new server instance
func New(cfg *config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Profiles == nil || deps.Users == nil || deps.AI == nil {
		return nil, fmt.Errorf("profile store, user store and AI provider are required")
	}
	if deps.JWT == nil || deps.Passwords == nil {
		return nil, fmt.Errorf("JWT service and password config are required")
	}
	if deps.Matcher == nil {
		deps.Matcher = matching.New()
	}
	if deps.EnrichTimeout == 0 {
		deps.EnrichTimeout = enrich.DefaultTimeout
	}

	enricher := enrich.NewEnricher(deps.AI, deps.EnrichTimeout)
	s := &Server{
		origins:     cfg.AllowedOrigins,
		profiles:    deps.Profiles,
		ai:          deps.AI,
		enricher:    enricher,
		aiTimeout:   deps.EnrichTimeout,
		fills:       autofill.NewService(deps.Profiles, enricher, deps.ClientOptions...),
		matcher:     deps.Matcher,
		clientOpts:  deps.ClientOptions,
		rateLimiter: deps.Limiter,
		authHandler: NewAuthHandler(deps.Users, deps.Passwords, deps.JWT),
	}

	auth := middleware.AuthMiddleware(deps.JWT.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	mux.Handle("GET /profile", protected(s.handleGetProfile))
	mux.Handle("PATCH /profile", protected(s.handlePatchProfile))
	mux.Handle("PUT /profile", protected(s.handlePutProfile))
	mux.Handle("GET /profile/versions", protected(s.handleListVersions))

	mux.Handle("POST /ai/extract-resume", protected(s.handleExtractResume))
	mux.Handle("POST /ai/auto-fill", protected(s.handleAutoFill))

	mux.Handle("POST /fields/extract", protected(s.handleExtractFields))
	mux.Handle("POST /fields/fill", protected(s.handleFillFields))

	var handler http.Handler = s.withLogging(s.withCORS(mux))
	if s.rateLimiter != nil {
		handler = s.withRateLimit(handler)
	}
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // AI calls
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or ""
// when the origin is not allowed.
func (s *Server) allowOrigin(origin string) string {
	if slices.Contains(s.origins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(s.origins, origin) {
		return origin
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

var requestValidator = validator.New()

// decodeJSON reads a size-limited JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return &ErrValidation{Message: "invalid request body"}
	}
	if err := requestValidator.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status code. Server errors are logged and their
// detail withheld from the client.
func writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Printf("[SERVER] %v", err)
		if status == http.StatusInternalServerError {
			errorResponse(w, status, "internal server error")
			return
		}
	}
	errorResponse(w, status, err.Error())
}

// validationError converts validator errors into an ErrValidation for the first failing field.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Message: "invalid request"}
}

// extractClientID returns the caller's IP from RemoteAddr.
// X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
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
		seconds := max(1, int(info.RetryAfter.Seconds()))
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d", info.Limit, info.Remaining)
	jsonResponse(w, http.StatusTooManyRequests, response)
}
