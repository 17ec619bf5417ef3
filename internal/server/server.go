// Package server is the composition root: it opens the database, builds the
// services and handlers, mounts the routes and runs the HTTP server.
//
// Route map:
//
//	GET    /healthz                   database ping
//	GET    /metrics                   Prometheus exposition
//	POST   /auth/register             create account, returns token
//	POST   /auth/login                password login, returns token
//	POST   /auth/logout               clear the token cookie
//	GET    /auth/github/login         (GitHub configured only)
//	GET    /auth/github/callback      (GitHub configured only)
//	GET    /api/me                    requester's profile
//	GET    /api/profiles/{username}   anyone
//	PATCH  /api/profiles/{username}   owner only
//	DELETE /api/profiles/{username}   owner only
//	GET    /api/cards                 all cards
//	POST   /api/cards                 send a card as the requester
//	GET    /api/cards/sent            requester's sent cards
//	GET    /api/cards/received        requester's received cards
//	GET    /api/cards/feed            cards from users the requester follows
//	GET    /api/cards/{id}
//	PATCH  /api/cards/{id}            sender only
//	DELETE /api/cards/{id}            sender only
//	POST   /api/follows               follow as the requester
//	DELETE /api/follows               unfollow by body (id or username)
//	DELETE /api/follows/{id}          follower only
//	GET    /api/follows/following     users the requester follows
//	GET    /api/follows/followers     users following the requester
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/cards/internal/auth"
	"github.com/sakif/cards/internal/config"
	"github.com/sakif/cards/internal/handler"
	"github.com/sakif/cards/internal/middleware"
	sqliteRepo "github.com/sakif/cards/internal/repository/sqlite"
	"github.com/sakif/cards/internal/service"
)

// Server owns the router and the database connection. The database is
// closed when Start returns or when Close is called.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	registry *prometheus.Registry
}

// New opens the database and wires every layer:
//
//	sqlite.DB → stores → services → handlers → routes
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: registry,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.NewHTTPMetrics(s.registry).Middleware)

	// === Auth primitives ===
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.Auth.PasswordCost)

	if s.config.UsesDevSecret() {
		s.logger.Warn("using the built-in development JWT secret; set JWT_SECRET in production")
	}

	// === Services ===
	users, cards, follows := s.db.Users(), s.db.Cards(), s.db.Follows()

	authSvc := service.NewAuthService(users, tokens, passwords, s.logger)
	profileSvc := service.NewProfileService(users, follows, passwords, s.logger)
	cardSvc := service.NewCardService(cards, users, s.logger)
	followSvc := service.NewFollowService(follows, users, s.logger)

	// === Handlers ===
	links := handler.NewLinks(s.config.Server.PublicURL)

	var github handler.OAuthProvider
	if s.config.GitHub.Enabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHub.ClientID,
			s.config.GitHub.ClientSecret,
			s.config.GitHub.CallbackURL,
		)
	}

	authH := handler.NewAuthHandler(
		authSvc,
		profileSvc,
		github,
		links,
		handler.CookieOptions{TTL: s.config.Auth.TokenTTL, Secure: s.config.Auth.SecureCookie},
		s.config.GitHub.SuccessRedirect,
		s.logger,
	)
	profileH := handler.NewProfileHandler(profileSvc, links, s.logger)
	cardH := handler.NewCardHandler(cardSvc, s.logger)
	followH := handler.NewFollowHandler(followSvc, links, s.logger)
	healthH := handler.NewHealthHandler(s.db, s.logger)

	if github == nil {
		s.logger.Info("GitHub sign-in disabled: GITHUB_CLIENT_ID / GITHUB_CLIENT_SECRET not set")
	}

	// === Routes ===
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	handler.Mount(s.router, handler.Handlers{
		Auth:    authH,
		Profile: profileH,
		Card:    cardH,
		Follow:  followH,
		Health:  healthH,
	}, tokens)

	return nil
}

// Start serves HTTP until SIGINT or SIGTERM, then drains in-flight requests
// for up to the configured shutdown timeout and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Server.Address(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.config.Database.Path),
			slog.Bool("github", s.config.GitHub.Enabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
