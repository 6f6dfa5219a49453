package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/teacellar/apiserver/config"
	"github.com/teacellar/apiserver/internal/db"
	"github.com/teacellar/apiserver/internal/events"
	"github.com/teacellar/apiserver/internal/handlers"
	"github.com/teacellar/apiserver/internal/services"
	"github.com/teacellar/apiserver/internal/storage"
	"github.com/teacellar/apiserver/internal/store"
	"github.com/teacellar/apiserver/internal/token"
)

// defaultTokenSecret is used when JWT_SECRET is unset. Acceptable for a
// personal deployment; production installs should set their own.
const defaultTokenSecret = "teacellar-dev-secret"

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	secret := strings.TrimSpace(cfg.Auth.Secret)
	if secret == "" {
		secret = defaultTokenSecret
		log.Println("warning: JWT_SECRET is unset, using the compiled-in default secret")
	}
	tokens := token.NewService(secret)

	publisher, err := events.FromConfig(ctx, cfg.Events)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	images, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if images != nil {
		if err := images.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	accountRepo := store.NewAccountRepository(dbConn)
	itemRepo := store.NewItemRepository(dbConn)
	stockRepo := store.NewStockLogRepository(dbConn)

	accountService := services.NewAccountService(accountRepo, tokens)
	itemService := services.NewItemService(itemRepo)
	stockService := services.NewStockService(stockRepo, publisher)

	authMiddleware := handlers.RequireAuth(tokens)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, accountService, authMiddleware)
	})
	router.Route("/accounts", func(r chi.Router) {
		handlers.AccountRouter(r, accountService, authMiddleware)
	})
	router.Route("/items", func(r chi.Router) {
		handlers.ItemRouter(r, itemService, stockService, authMiddleware)
	})
	router.Route("/images", func(r chi.Router) {
		handlers.ImageRouter(r, images, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
