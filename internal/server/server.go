package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/cors"
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	httpServer *http.Server
}

// Config tunes the HTTP server. Zero values keep the defaults below.
type Config struct {
	AllowedOrigins []string      // cross-origin callers allowed to use the API; empty disables CORS
	WriteTimeout   time.Duration // must cover the largest upload
}

// Extracted constants to avoid magic numbers and centralize tuning knobs.
const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 60 * time.Second
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete}
	corsHeaders = []string{"Content-Type"}
)

// newHTTPServer builds a configured *http.Server for the given address and handler.
func newHTTPServer(addr string, handler http.Handler, cfg Config) *http.Server {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = writeTimeout
	}
	return &http.Server{
		Addr:              addr,
		Handler:           withCORS(handler, cfg.AllowedOrigins),
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      wt,
		IdleTimeout:       idleTimeout,
	}
}

// withCORS wraps handler with a CORS policy for origins. Same-origin use needs none.
func withCORS(handler http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return handler
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: corsMethods,
		AllowedHeaders: corsHeaders,
	})
	return c.Handler(handler)
}

// normalizeAddr ensures the provided port is a valid address (accepts "8501" or ":8501").
func normalizeAddr(port string) string {
	if port == "" {
		return ""
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Run starts the HTTP server on the given port using the provided handler.
func (s *Server) Run(port string, handler http.Handler, cfg Config) error {
	s.httpServer = newHTTPServer(normalizeAddr(port), handler, cfg)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
