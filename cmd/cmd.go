package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"layer-backend/internal/config"
	"layer-backend/internal/handlers"
	"layer-backend/internal/middleware"
	"layer-backend/internal/repository"
	"layer-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(db)
	layerRepo := repository.NewLayerRepository(db)
	swipeRepo := repository.NewSwipeRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize push delivery; absent APNs config disables it
	var pushService *services.PushService
	if cfg.APNS.KeyPath != "" {
		pushService, err = services.NewPushService(cfg.APNS, profileRepo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push service")
		}
	}

	// Initialize services
	hub := services.NewHub(pushService)
	profileService := services.NewProfileService(profileRepo, layerRepo)
	candidateService := services.NewCandidateService(profileRepo, layerRepo, swipeRepo)
	swipeService := services.NewSwipeService(profileRepo, layerRepo, swipeRepo, matchRepo, hub)
	revealService := services.NewRevealService(profileRepo, layerRepo, matchRepo, &cfg.Reveal, hub)
	chatService := services.NewChatService(profileRepo, matchRepo, messageRepo, revealService, hub)
	mediaService, err := services.NewMediaService(profileRepo, layerRepo, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media service")
	}

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler()
	profileHandler := handlers.NewProfileHandler(profileService, mediaService)
	discoverHandler := handlers.NewDiscoverHandler(candidateService, swipeService, mediaService)
	chatHandler := handlers.NewChatHandler(chatService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	wsHandler := handlers.NewWebSocketHandler(hub, profileService, chatService, cfg.JWT.Secret)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
			r.Get("/catalog", catalogHandler.GetCatalog)
			r.Post("/profiles", profileHandler.CompleteOnboarding)
			r.Get("/profiles/me", profileHandler.GetMyProfile)
			r.Patch("/profiles/me", profileHandler.UpdateProfile)
			r.Put("/profiles/me/layers/{layer_id}/primary", profileHandler.SetPrimaryLayer)
			r.Post("/profiles/me/push-token", profileHandler.RegisterPushToken)
			r.Get("/candidates", discoverHandler.ListCandidates)
			r.Post("/swipes", discoverHandler.SubmitSwipe)
			r.Get("/matches", chatHandler.ListMatches)
			r.Get("/matches/{match_id}", chatHandler.GetMatchState)
			r.Get("/matches/{match_id}/messages", chatHandler.ListMessages)
			r.Post("/matches/{match_id}/messages", chatHandler.PostMessage)
			r.Post("/photos/upload", mediaHandler.UploadPhoto)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown HTTP server; websocket connections close with it
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
