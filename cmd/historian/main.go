// cmd/historian/main.go is an asynchronous historian service that pops match
// actions from a Redis queue and persists them to a PostgreSQL database.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/spellclash/internal/cache"
	"github.com/jason-s-yu/spellclash/internal/config"
	"github.com/jason-s-yu/spellclash/internal/database"
	"github.com/jason-s-yu/spellclash/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.LoadHistorian()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, cfg.Postgres, logger); err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer database.DB.Close()
	if err := database.Migrate(ctx, database.DB); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	rdb, err := cache.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to redis")
	}
	defer rdb.Close()

	svc := historian.NewService(cfg, historian.RedisSource{Client: rdb, Queue: cfg.Redis.Queue}, historian.PostgresStore{}, logger)
	if err := svc.Run(ctx); err != nil {
		logger.WithError(err).Error("historian stopped with error")
	}
	logger.Info("Historian shutdown complete.")
}
