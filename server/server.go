package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"discofm/config"
	"discofm/core/auth"
	"discofm/db"
	"discofm/logger"
	"discofm/repository"

	"github.com/gorilla/mux"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.Disconnect(ctx, database)
	logger.Info("database connection established", logger.String("db", cfg.MongoDBName))

	if err := repository.EnsureUserIndexes(ctx, database); err != nil {
		logger.Fatal("failed to ensure user indexes", logger.ErrorField(err))
	}
	if err := repository.EnsureTrackIndexes(ctx, database); err != nil {
		logger.Fatal("failed to ensure track indexes", logger.ErrorField(err))
	}

	trackRepo := repository.NewMongoTrackRepository(database)
	albumRepo := repository.NewMongoAlbumRepository(database)
	userRepo := repository.NewMongoUserRepository(database)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	apiHandler := NewAPIHandler(trackRepo, albumRepo, userRepo, tokens, cfg)
	router := NewRouter(apiHandler)

	// Optional front-end serving.
	if cfg.WebAppDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.WebAppDir)))
	}

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// NewRouter registers the API routes on a fresh router.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Track endpoints. Literal paths are registered before the {id} mutations.
	router.HandleFunc("/api/tracks", h.GetTopTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/search/title", h.SearchByTitleHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/search/filters", h.SearchWithFiltersHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/analytics", h.AnalyticsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/admin", h.AdminMiddleware(h.AdminListTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", h.AdminMiddleware(h.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", h.AdminMiddleware(h.UpdateTrackHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/tracks/{id}/visibility", h.AdminMiddleware(h.UpdateTrackVisibilityHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/tracks/{id}", h.AdminMiddleware(h.DeleteTrackHandler)).Methods(http.MethodDelete)

	// Album endpoints.
	router.HandleFunc("/api/albums", h.ListAlbumsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/albums/admin", h.AdminMiddleware(h.AdminListAlbumsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/albums", h.AdminMiddleware(h.CreateAlbumHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/albums/{id}", h.AdminMiddleware(h.UpdateAlbumHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/albums/{id}/visibility", h.AdminMiddleware(h.UpdateAlbumVisibilityHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/albums/{id}", h.AdminMiddleware(h.DeleteAlbumHandler)).Methods(http.MethodDelete)

	// Auth endpoints.
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", h.AuthMiddleware(h.MeHandler)).Methods(http.MethodGet)

	return router
}

// corsMiddleware adds the CORS headers and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
