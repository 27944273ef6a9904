package main

import (
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "hotelfuse/internal/adapters/http_server"
	"hotelfuse/internal/adapters/observability"
	redisad "hotelfuse/internal/adapters/redis"
	"hotelfuse/internal/adapters/suppliers"
	"hotelfuse/internal/app"
	"hotelfuse/internal/domain"
	"hotelfuse/internal/shared"
	mysqlrepo "hotelfuse/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// one adapter per configured supplier
	var adapters []domain.SupplierAdapter
	for _, sc := range cfg.Suppliers {
		switch sc.Code {
		case domain.SupplierRateHawk:
			adapters = append(adapters, suppliers.NewRateHawk(sc.BaseURL, sc.APIKey, sc.RPS))
		case domain.SupplierHotelbeds:
			adapters = append(adapters, suppliers.NewHotelbeds(sc.BaseURL, sc.APIKey, sc.RPS))
		case domain.SupplierTBO:
			adapters = append(adapters, suppliers.NewTBO(sc.BaseURL, sc.APIKey, sc.RPS))
		default:
			log.Warn().Str("supplier", sc.Code).Msg("no adapter for configured supplier")
		}
	}
	registry := suppliers.NewRegistry(adapters...)
	log.Info().Strs("suppliers", registry.Codes()).Msg("supplier adapters ready")

	breakers := app.NewBreakerSet(cfg.BreakerThreshold, cfg.BreakerWindow, cfg.BreakerCooldown)
	resolver := app.NewResolver(repo, cfg.DedupRadiusM, cfg.DedupMinConfidence)
	orchestrator := app.NewOrchestrator(registry, repo, repo, resolver, breakers, cfg.GlobalTimeout, cfg.CollectWorkers)
	ranker := app.NewRanker(repo)
	search := app.NewSearchService(orchestrator, ranker, cache, cfg.CacheTTL, cfg.OfferTTL)

	// http; request timeout must outlast the search fan-out
	srv := server.New(cfg.GlobalTimeout + 3*time.Second)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Search: search, Breakers: breakers, Directory: repo})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
