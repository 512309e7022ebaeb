// Command reindex rebuilds the user settings search index from PostgreSQL.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/smb564/21-points/internal/config"
	"github.com/smb564/21-points/internal/database"
	"github.com/smb564/21-points/internal/logger"
	"github.com/smb564/21-points/internal/repository"
	"github.com/smb564/21-points/internal/service"
)

func main() {
	var batchSize int
	flag.IntVar(&batchSize, "batch", 500, "Rows read per database page")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// No queue or bus: a rebuild writes the index directly and notifies nobody.
	svc := service.NewUserSettingsService(
		repository.NewUserSettingsRepository(pool),
		repository.NewUserSettingsSearchRepository(rdb),
		nil, nil, "", log,
	)

	n, err := svc.Reindex(ctx, batchSize)
	if err != nil {
		log.Error().Err(err).Int("indexed", n).Msg("Reindex failed")
		os.Exit(1)
	}
	log.Info().Int("indexed", n).Msg("Reindex complete")
}
