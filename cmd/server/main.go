// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/spellclash/internal/auth"
	"github.com/jason-s-yu/spellclash/internal/cache"
	"github.com/jason-s-yu/spellclash/internal/config"
	"github.com/jason-s-yu/spellclash/internal/database"
	"github.com/jason-s-yu/spellclash/internal/handlers"
	"github.com/jason-s-yu/spellclash/internal/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logrus.New()

	cfg, err := config.LoadServer()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signer, err := auth.NewSeatSigner(cfg.SeatTTL)
	if err != nil {
		logger.WithError(err).Fatal("failed to create seat signer")
	}
	srv := handlers.NewMatchServer(ctx, logger, signer)
	srv.SeedSecret = []byte(cfg.SeedSecret)
	if cfg.SeedSecret == "" {
		logger.Warn("MATCH_SEED_SECRET is empty; deck order is derivable from the match ID")
	}

	// postgres and redis are optional; matches run in memory without them
	if err := database.ConnectDB(ctx, cfg.Postgres, logger); err != nil {
		logger.WithError(err).Warn("database unavailable; matches will not be persisted")
	} else {
		defer database.DB.Close()
		if err := database.Migrate(ctx, database.DB); err != nil {
			logger.WithError(err).Fatal("failed to migrate database")
		}
		srv.Persist = true
	}

	g, gctx := errgroup.WithContext(ctx)

	rdb, err := cache.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable; match actions will not reach the historian")
	} else {
		defer rdb.Close()
		srv.Publisher = cache.NewPublisher(rdb, cfg.Redis.Queue, 1024, logger)
		g.Go(func() error { return srv.Publisher.Run(gctx) })
	}

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)

	mux.Handle("/match/create", logged(handlers.CreateMatchHandler(srv)))
	mux.Handle("/match/state/", logged(handlers.MatchStateHandler(srv)))
	mux.Handle("/match/ws/", logged(handlers.MatchWSHandler(srv)))
	mux.Handle("/catalog", logged(handlers.CatalogHandler()))
	mux.Handle("/deck/create", logged(handlers.CreateDeckHandler(srv)))

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Infof("Running on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		srv.Store.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
	logger.Info("server stopped")
}
