// Package server is the composition root: it wires the repositories,
// services, and handlers together, defines the routes, and owns the HTTP
// server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/item-shop/internal/auth"
	"github.com/sakif/item-shop/internal/cache"
	"github.com/sakif/item-shop/internal/config"
	"github.com/sakif/item-shop/internal/fortnite"
	"github.com/sakif/item-shop/internal/handler"
	"github.com/sakif/item-shop/internal/middleware"
	sqliteRepo "github.com/sakif/item-shop/internal/repository/sqlite"
	"github.com/sakif/item-shop/internal/service"
)

// closableCache is what both cache backends provide beyond the Cache
// interface: a way to release their resources on shutdown.
type closableCache interface {
	cache.Cache
	Close() error
}

// Server holds the router and the resources it must release on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	memo   closableCache
}

// New assembles the full dependency graph. Each layer receives only what it
// needs: services get repository interfaces, handlers get services.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Server.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var memo closableCache
	switch cfg.Cache.Type {
	case "redis":
		memo, err = cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting cache: %w", err)
		}
	default:
		memo = cache.NewMemoryCache()
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		memo:   memo,
	}

	if err := s.setupRoutes(); err != nil {
		memo.Close()
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	cfg := s.config

	tokens, err := auth.NewTokenService(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	fetcher := fortnite.NewClient(cfg.Shop.URL, cfg.Shop.APIKey, cfg.Shop.FetchTimeout, s.logger)

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	wishlistService := service.NewWishlistService(s.db, s.logger)
	shopService := service.NewShopService(s.db, fetcher, s.memo, cfg.Cache.TTL, s.logger)

	renderer, err := handler.NewRenderer(cfg.Server.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	var github *auth.GitHubProvider
	if cfg.GitHub.ClientID != "" {
		github = auth.NewGitHubProvider(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret, cfg.GitHub.CallbackURL)
	}

	pages := handler.NewPageHandler(renderer, shopService, wishlistService, authService, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, int(cfg.Auth.SessionTTL.Seconds()), s.logger)
	wishlistHandler := handler.NewWishlistHandler(wishlistService, s.logger)
	debugHandler := handler.NewDebugHandler(shopService, s.db, s.logger)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger))

	fileServer := http.FileServer(http.Dir(cfg.Server.StaticDir))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// Public pages. OptionalAuth lets the shop page mark wishlisted offers
	// and the auth forms bounce already-signed-in users.
	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))

		r.Get("/", pages.HandleShop)
		r.Get("/register", pages.HandleRegisterForm)
		r.Post("/register", authHandler.HandleRegister)
		r.Get("/login", pages.HandleLoginForm)
		r.Post("/login", authHandler.HandleLogin)
	})

	// Session-required pages: redirect to /login when anonymous.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePage(tokens))

		r.Get("/logout", authHandler.HandleLogout)
		r.Get("/wishlist", pages.HandleWishlist)
	})

	// Session-required API: 401 JSON when anonymous.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAPI(tokens))

		r.Post("/api/wishlist/toggle", wishlistHandler.HandleToggle)
	})

	r.Get("/initdb", debugHandler.HandleInitDB)
	r.Get("/debug/shopjson", debugHandler.HandleShopJSON)

	if github != nil {
		r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close the
// cache and the database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.memo.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.config.Server.DBPath),
			slog.String("cache", s.config.Cache.Type),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
