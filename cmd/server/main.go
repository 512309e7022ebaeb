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

	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/config"
	"github.com/smb564/21-points/internal/database"
	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/handler"
	"github.com/smb564/21-points/internal/logger"
	"github.com/smb564/21-points/internal/middleware"
	"github.com/smb564/21-points/internal/model"
	"github.com/smb564/21-points/internal/repository"
	"github.com/smb564/21-points/internal/router"
	"github.com/smb564/21-points/internal/service"
	"github.com/smb564/21-points/internal/validator"
	"github.com/smb564/21-points/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("namespace", cfg.AppNamespace).
		Msg("Starting 21 Points user settings service")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Event Bus ─────────────────────────────────────────────────────
	// Saves are published locally and mirrored over Redis so websocket
	// clients of every instance see them.
	topic := config.Key.UserSettingsUpdateTopic(cfg.AppNamespace)
	bus := eventbus.New(log)
	bridge := eventbus.NewRedisBridge(rdb, bus, log)
	export := bridge.Export(topic)
	defer export.Unsubscribe()

	go func() {
		if err := bridge.Import(ctx, topic, decodeUserSettings); err != nil {
			log.Error().Err(err).Msg("Event import stopped")
		}
	}()

	// ─── Initialize Repositories ───────────────────────────────────────
	settingsRepo := repository.NewUserSettingsRepository(pool)
	searchRepo := repository.NewUserSettingsSearchRepository(rdb)
	indexQueue := repository.NewIndexQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	settingsService := service.NewUserSettingsService(settingsRepo, searchRepo, indexQueue, bus, topic, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		UserSettings: handler.NewUserSettingsHandler(settingsService, cfg.AppNamespace, log),
		WS:           handler.NewWSHandler(bus, topic, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	indexWorker := worker.NewIndexWorker(indexQueue, settingsRepo, searchRepo, log)
	go func() {
		defer close(workerDone)
		indexWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()
	r := router.SetupRouter(handlers, limiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the index worker and wait for the queue to drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Index worker did not drain in time")
	}

	log.Info().Msg("Shutdown complete")
}

func decodeUserSettings(raw []byte) (any, error) {
	var s model.UserSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
