package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/cv-importer/internal/cache"
	"github.com/jonathan/cv-importer/internal/cache/redis"
	"github.com/jonathan/cv-importer/internal/config"
	"github.com/jonathan/cv-importer/internal/db"
	"github.com/jonathan/cv-importer/internal/importer"
	"github.com/jonathan/cv-importer/internal/linkedin"
	"github.com/jonathan/cv-importer/internal/server/middleware"
	"github.com/jonathan/cv-importer/internal/server/ratelimit"
	"go.uber.org/zap"
)

// jsonOverhead is the body allowance on top of the text limit for JSON framing and escapes
const jsonOverhead = 64 * 1024

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	importer    *importer.Service
	userService *UserService
	authHandler *AuthHandler
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
	ping        func(context.Context) error
	closers     []func()
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	MaxBodyBytes   int64
	RateLimit      int // parse requests per minute per client
	RateBurst      int
}

// ConfigFrom derives the server configuration from the application config.
func ConfigFrom(c *config.Config) Config {
	return Config{
		Port:           c.Port,
		AllowedOrigins: c.AllowedOrigins,
		MaxBodyBytes:   int64(c.MaxInputBytes) + jsonOverhead,
		RateLimit:      c.RateLimit,
		RateBurst:      c.RateBurst,
	}
}

// Deps are the services a Server routes to. Ping, when set, backs /health.
type Deps struct {
	Importer *importer.Service
	Users    *UserService
	JWT      *JWTService
	Logger   *zap.Logger
	Ping     func(context.Context) error
}

// NewWithDeps creates a server around already constructed services.
func NewWithDeps(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.DefaultMaxInputBytes + jsonOverhead
	}

	s := &Server{
		importer:    deps.Importer,
		userService: deps.Users,
		jwtService:  deps.JWT,
		logger:      logger,
		ping:        deps.Ping,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig(cfg.RateLimit, cfg.RateBurst)),
	}
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, logger)

	s.httpServer = &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: middleware.Chain(s.routes(),
			middleware.Logging(logger),
			middleware.CORS(cfg.AllowedOrigins),
			s.withRateLimit,
			middleware.MaxBody(cfg.MaxBodyBytes),
		),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// New connects PostgreSQL and the parse cache, then builds every service from cfg.
// JWT and password settings come from the environment.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or database_url)")
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	parser, err := linkedin.New(cfg.Locales...)
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	var parseCache cache.Cache
	if cfg.RedisURL != "" {
		rc, err := redis.New(ctx, cfg.RedisURL, "cv-importer:")
		if err != nil {
			database.Close()
			return nil, err
		}
		parseCache = rc
	} else {
		logger.Info("REDIS_URL not set, using in-process parse cache",
			zap.Int("max_entries", cfg.CacheMaxEntries))
		mc, err := cache.NewMemory(cfg.CacheMaxEntries)
		if err != nil {
			database.Close()
			return nil, err
		}
		parseCache = mc
	}

	svc := importer.NewService(importer.Options{
		Store:         database,
		Cache:         parseCache,
		Parser:        parser,
		Logger:        logger,
		MaxInputBytes: cfg.MaxInputBytes,
		CacheTTL:      cfg.CacheTTLDuration(),
	})

	s := NewWithDeps(ConfigFrom(cfg), Deps{
		Importer: svc,
		Users:    NewUserService(database, passwordConfig),
		JWT:      NewJWTService(jwtConfig),
		Logger:   logger,
		Ping:     database.Ping,
	})
	s.closers = append(s.closers,
		func() {
			if err := parseCache.Close(); err != nil {
				logger.Warn("failed to close parse cache", zap.Error(err))
			}
		},
		database.Close,
	)
	return s, nil
}

func (s *Server) routes() http.Handler {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /auth/password", protected(s.authHandler.UpdatePassword))

	// Public preview
	mux.HandleFunc("POST /linkedin/parse", s.handleParse)

	// Stored imports
	mux.Handle("POST /imports", protected(s.handleCreateImport))
	mux.Handle("GET /imports", protected(s.handleListImports))
	mux.Handle("GET /imports/{id}", protected(s.handleGetImport))
	mux.Handle("DELETE /imports/{id}", protected(s.handleDeleteImport))
	mux.Handle("POST /imports/{id}/apply", protected(s.handleApplyImport))

	// CV
	mux.Handle("GET /cv", protected(s.handleGetCV))

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases the rate limiter, cache and database. It is called by Serve on exit.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
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
		secs := int(info.RetryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Info("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	writeJSON(w, http.StatusTooManyRequests, response)
}

// writeJSON writes a JSON response
//
//nolint:errcheck // headers are already sent; nothing to recover
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error JSON response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps err to a status with HTTPStatus. Internal errors are
// logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// decodeJSON decodes a JSON request body into dst, writing 400 or 413 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is empty")
		default:
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		}
		return false
	}
	return true
}
