package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelfuse/internal/adapters/observability"
	"hotelfuse/internal/shared"
	mysqlrepo "hotelfuse/internal/storage/mysql"
)

// The sweeper deletes expired room offers in batches on a fixed interval.
// Offers are append-only, so this is the only thing that ever removes them.
func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	observability.Serve(cfg.MetricsAddr)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	repo := mysqlrepo.New(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Dur("interval", cfg.SweepInterval).
		Int("batch", cfg.SweepBatchSize).
		Msg("sweeper starting")

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		sweep(ctx, repo, cfg.SweepBatchSize)
		select {
		case <-ctx.Done():
			log.Info().Msg("sweeper stopping")
			return
		case <-ticker.C:
		}
	}
}

// sweep keeps deleting batches until one comes back short, so a backlog is
// cleared in one pass rather than one batch per tick.
func sweep(ctx context.Context, repo *mysqlrepo.Repo, batch int) {
	for {
		n, err := repo.DeleteExpiredOffers(ctx, time.Now(), batch)
		if err != nil {
			log.Error().Err(err).Msg("delete expired offers failed")
			return
		}
		if n > 0 {
			observability.OffersSwept.Add(float64(n))
			log.Info().Int64("deleted", n).Msg("expired offers swept")
		}
		if n < int64(batch) {
			return
		}
	}
}
