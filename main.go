package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishanu7/scribble-backend/config"
	"github.com/krishanu7/scribble-backend/internal/admin"
	"github.com/krishanu7/scribble-backend/internal/auth"
	"github.com/krishanu7/scribble-backend/internal/game"
	"github.com/krishanu7/scribble-backend/internal/leaderboard"
	"github.com/krishanu7/scribble-backend/internal/logger"
	"github.com/krishanu7/scribble-backend/internal/ws"
	rdbPkg "github.com/krishanu7/scribble-backend/pkg/redis"
	wsPkg "github.com/krishanu7/scribble-backend/pkg/websocket"
	"github.com/rs/zerolog"
)

func main() {
	started := time.Now()
	cfg := config.LoadConfig()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := leaderboard.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.LeaderboardBackend).Msg("failed to open leaderboard store")
	}
	defer closeStore()

	lbService := leaderboard.NewService(store, log)
	lbService.Load(ctx)

	registry := game.NewRegistry(game.NewMemoryStore(), game.RegistryOptions{
		Room: game.RoomOptions{
			Config: game.RoomConfig{
				ReconnectGrace:     cfg.ReconnectGrace,
				RoundEndDelay:      cfg.RoundEndDelay,
				MinMessageInterval: cfg.MinMessageInterval,
				RecordTimeout:      5 * time.Second,
			},
			Logger:   log,
			Recorder: lbService,
		},
		Logger: log,
	})

	hub := wsPkg.NewHub(log)
	router := ws.NewRouter(registry, log)
	wsHandler := ws.NewHandler(hub, router, wsPkg.NewUpgrader(cfg.AllowedOrigins), log)

	if cfg.AnnounceChannel != "" {
		startAnnouncements(ctx, cfg, hub, log)
	}

	authService := auth.NewService(cfg)
	authHandler := auth.NewAuthHandler(authService, log)
	adminHandler := admin.NewHandler(registry, hub, started)
	lbHandler := leaderboard.NewHandler(lbService, cfg.LeaderboardTopN)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", wsHandler.ServeWS)
	mux.HandleFunc("GET /leaderboard", lbHandler.GetLeaderboard)
	mux.HandleFunc("POST /admin/login", authHandler.Login)
	mux.HandleFunc("GET /admin/stats", authHandler.RequireAdmin(adminHandler.GetStats))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("leaderboard", cfg.LeaderboardBackend).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	registry.Close()
	hub.CloseAll()
	log.Info().Msg("server stopped")
}

// startAnnouncements relays the Redis announcement channel to every socket.
// A missing Redis only disables the feature.
func startAnnouncements(ctx context.Context, cfg config.Config, hub *wsPkg.Hub, log zerolog.Logger) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rdb, err := rdbPkg.NewRedisClient(pingCtx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn().Err(err).Msg("announcements disabled")
		return
	}

	worker := ws.NewAnnouncementWorker(rdb, hub, cfg.AnnounceChannel, log)
	go func() {
		defer rdb.Close()
		if err := worker.Run(ctx, nil); err != nil {
			log.Error().Err(err).Msg("announcement worker stopped")
		}
	}()
}
