// Package api exposes the capture service over HTTP for the browser extension.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/Belphemur/HLSCapture/internal/api/handlers"
	"github.com/Belphemur/HLSCapture/internal/api/middleware"
	"github.com/Belphemur/HLSCapture/internal/services"
)

// Server is the HTTP front of the capture service.
type Server struct {
	server  *http.Server
	addr    string
	logger  zerolog.Logger
	service services.CaptureService
}

// NewServer creates a server listening on address:port.
func NewServer(address string, port int, service services.CaptureService, logger zerolog.Logger) *Server {
	return &Server{
		server: &http.Server{
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       180 * time.Second,
		},
		addr:    fmt.Sprintf("%s:%d", address, port),
		logger:  logger.With().Str("module", "api").Logger(),
		service: service,
	}
}

// ListenAndServe serves until Shutdown is called, returning http.ErrServerClosed then.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.server.Handler = s.Handler()

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Starting API server")
	err = s.server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return fmt.Errorf("serve API: %w", err)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger, "/status", "/downloads"))

	// The extension calls from arbitrary page origins.
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
	r.Use(corsMiddleware.Handler)
	r.Use(middleware.Preflight)

	h := handlers.NewCaptureHandler(s.service)

	r.Post("/capture", h.Capture)
	r.Post("/subtitle", h.Subtitle)
	r.Post("/preview", h.Preview)
	r.Get("/status", h.Status)
	r.Get("/downloads", h.Downloads)
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	return r
}
