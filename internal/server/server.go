// Package server wires the application together: it owns the router, the
// database connection and the dependency graph from repositories up to
// handlers, and runs the HTTP server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/foodgramapp/foodgram/internal/auth"
	"github.com/foodgramapp/foodgram/internal/config"
	"github.com/foodgramapp/foodgram/internal/handler"
	"github.com/foodgramapp/foodgram/internal/imagestore"
	"github.com/foodgramapp/foodgram/internal/middleware"
	"github.com/foodgramapp/foodgram/internal/model"
	sqliteRepo "github.com/foodgramapp/foodgram/internal/repository/sqlite"
	"github.com/foodgramapp/foodgram/internal/service"
	"github.com/foodgramapp/foodgram/internal/validation"
)

// Server holds the router and the resources it owns. The database
// connection is opened in New and closed when Start returns.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, builds the dependency graph and registers all
// routes. Services receive repository interfaces, handlers receive
// services; nothing below the handler layer sees HTTP.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	images, err := imagestore.New(s.cfg.Media.Dir, s.cfg.Media.BaseURL)
	if err != nil {
		return fmt.Errorf("creating image store: %w", err)
	}

	tokens, err := auth.NewTokenService(s.cfg.Auth.Secret, s.cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	validate := validation.New()

	userService := service.NewUserService(s.db, passwords, tokens, s.logger)
	recipeService := service.NewRecipeService(s.db, s.db, s.db, s.db, images, s.logger)
	markService := service.NewMarkService(s.db, s.db, s.logger)
	subService := service.NewSubscriptionService(s.db, s.db, s.db, s.logger)
	shoppingService := service.NewShoppingListService(s.db, s.logger)

	pres := handler.NewPresenter(markService, subService)

	userHandler := handler.NewUserHandler(userService, subService, validate, pres)
	authHandler := handler.NewAuthHandler(userService, validate, s.cfg.Auth.TokenTTL)
	tagHandler := handler.NewTagHandler(s.db)
	ingredientHandler := handler.NewIngredientHandler(s.db)
	recipeHandler := handler.NewRecipeHandler(recipeService, markService, shoppingService, userService, pres)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	// Uploaded recipe images. The base URL is stripped so the file server
	// sees bare file names.
	prefix := strings.TrimSuffix(s.cfg.Media.BaseURL, "/") + "/"
	s.router.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(images.Dir()))))

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth/token", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.With(requireAuth).Post("/logout", authHandler.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.With(optionalAuth).Get("/", userHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", userHandler.Me)
				r.Post("/set_password", userHandler.SetPassword)
				r.Get("/subscriptions", userHandler.Subscriptions)
				r.Post("/{id}/subscribe", userHandler.Subscribe)
				r.Delete("/{id}/subscribe", userHandler.Unsubscribe)
			})

			r.With(optionalAuth).Get("/{id}", userHandler.Get)
		})

		r.Get("/tags", tagHandler.List)
		r.Get("/tags/{id}", tagHandler.Get)

		r.Get("/ingredients", ingredientHandler.List)
		r.Get("/ingredients/{id}", ingredientHandler.Get)

		r.Route("/recipes", func(r chi.Router) {
			r.With(optionalAuth).Get("/", recipeHandler.List)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", recipeHandler.Create)
				r.Get("/download_shopping_cart", recipeHandler.DownloadShoppingCart)
				r.Patch("/{id}", recipeHandler.Update)
				r.Delete("/{id}", recipeHandler.Delete)
				r.Post("/{id}/favorite", recipeHandler.Mark(model.MarkFavorite))
				r.Delete("/{id}/favorite", recipeHandler.Unmark(model.MarkFavorite))
				r.Post("/{id}/shopping_cart", recipeHandler.Mark(model.MarkShoppingCart))
				r.Delete("/{id}/shopping_cart", recipeHandler.Unmark(model.MarkShoppingCart))
			})

			r.With(optionalAuth).Get("/{id}", recipeHandler.Get)
		})
	})

	return nil
}

// ServeHTTP makes the server usable as a plain http.Handler, which is how
// the tests drive it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the server's resources without running the signal loop.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the server until SIGINT or SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.cfg.Database.Path),
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
