// Package http hosts the API handler on a net/http server.
// It adds the request middleware and graceful shutdown.
package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config holds HTTP adapter configuration
type Config struct {
	// Address to listen on
	Address string `json:"address"`

	// ReadTimeout for requests
	ReadTimeout time.Duration `json:"read_timeout"`

	// WriteTimeout for responses
	WriteTimeout time.Duration `json:"write_timeout"`

	// MaxBodySize limits request body size
	MaxBodySize int64 `json:"max_body_size"`

	// AllowedOrigins for CORS; empty disables CORS headers
	AllowedOrigins []string `json:"allowed_origins"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Address:        ":8080",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxBodySize:    1 << 20, // 1MB, filter bodies are tiny
		AllowedOrigins: []string{"*"},
	}
}

// Adapter is the HTTP adapter
type Adapter struct {
	handler http.Handler
	config  *Config
	logger  *zap.Logger
	server  *http.Server
}

// New wraps handler; nil config and logger take defaults
func New(handler http.Handler, config *Config, logger *zap.Logger) *Adapter {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		handler: handler,
		config:  config,
		logger:  logger,
	}
}

// Router returns the handler with middleware applied
func (a *Adapter) Router() http.Handler {
	handler := a.limitMiddleware(a.handler)
	handler = a.corsMiddleware(handler)
	handler = a.loggingMiddleware(handler)
	handler = a.recoveryMiddleware(handler)
	return handler
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (a *Adapter) Start() error {
	a.server = &http.Server{
		Addr:         a.config.Address,
		Handler:      a.Router(),
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}
	a.logger.Info("HTTP server listening", zap.String("addr", a.config.Address))
	return a.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (a *Adapter) Shutdown(ctx context.Context) error {
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

// Middleware

func (a *Adapter) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin, ok := a.allowedOrigin(r.Header.Get("Origin")); ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowedOrigin returns the Access-Control-Allow-Origin value for a request
// origin: "*" when configured, the origin itself on an exact match, and
// nothing otherwise.
func (a *Adapter) allowedOrigin(req string) (string, bool) {
	for _, o := range a.config.AllowedOrigins {
		if o == "*" {
			return "*", true
		}
		if req != "" && o == req {
			return req, true
		}
	}
	return "", false
}

func (a *Adapter) limitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.config.MaxBodySize > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *Adapter) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		a.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
		)
	})
}

func (a *Adapter) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				a.logger.Error("handler panic",
					zap.Any("panic", err),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}` + "\n"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
