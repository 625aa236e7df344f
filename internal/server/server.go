package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"leadbringer/internal/config"
	"leadbringer/internal/handlers"
	"leadbringer/internal/storage"
)

// Server represents the offers API server
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    zerolog.Logger
	artifacts *storage.ArtifactStore
}

// New creates a new server instance
func New(cfg *config.Config, artifacts *storage.ArtifactStore, logger zerolog.Logger) *Server {
	return &Server{
		config:    cfg,
		logger:    logger,
		artifacts: artifacts,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	s.echo.HideBanner = true

	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	s.echo.GET("/health", handlers.HealthHandler(s.config.Version))

	api := s.echo.Group("/api")
	api.GET("/", handlers.RootHandler(s.config.Version))
	api.GET("/offers", handlers.OffersHandler(s.artifacts))
	api.GET("/offers/:id", handlers.OfferHandler(s.artifacts))
}

// Handler exposes the configured Echo instance as an http.Handler. Used by
// tests that serve the API over httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}
