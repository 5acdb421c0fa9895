// Package api provides the HTTP server and handlers for the PageTurn application.
package api

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pageturnapp/pageturn-server/internal/http/response"
	"github.com/pageturnapp/pageturn-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	users    *service.UserService
	sessions *service.SessionService
	catalog  *service.CatalogService
	reviews  *service.ReviewService
	router   *chi.Mux
	logger   *slog.Logger

	authLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(users *service.UserService, sessions *service.SessionService, catalog *service.CatalogService, reviews *service.ReviewService, logger *slog.Logger) *Server {
	s := &Server{
		users:    users,
		sessions: sessions,
		catalog:  catalog,
		reviews:  reviews,
		router:   chi.NewRouter(),
		logger:   logger,

		// 20 register/login attempts per minute per IP, burst of 5.
		authLimiter: NewRateLimiter(20, time.Minute, 5),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	// Public auth endpoints, rate limited by IP.
	s.router.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.authLimiter, s.logger))
		r.Get("/register", s.handleRegisterForm)
		r.Post("/register", s.handleRegister)
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
	})

	s.router.Get("/logout", s.handleLogout)

	// Public lookup endpoint.
	s.router.Get("/api/{isbn}", s.handleLookup)

	// Protected pages.
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleHome)
		r.Get("/search", s.handleSearch)
		r.Post("/search", s.handleSearch)
		r.Get("/book/{isbn}", s.handleGetBook)
		r.Post("/book/{isbn}", s.handleSubmitReview)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
