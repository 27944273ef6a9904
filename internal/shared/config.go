package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SupplierConfig is the static (env-sourced) part of one supplier's setup:
// endpoint and credentials. Enabled/weight/timeout live in the suppliers
// table and are re-read on every search.
type SupplierConfig struct {
	Code    string
	BaseURL string
	APIKey  string
	RPS     int
}

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	GlobalTimeout  time.Duration
	CollectWorkers int

	DedupRadiusM       float64
	DedupMinConfidence float64

	BreakerThreshold int
	BreakerWindow    time.Duration
	BreakerCooldown  time.Duration

	OfferTTL       time.Duration
	CacheTTL       time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int

	Suppliers []SupplierConfig
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	ms := func(k string, def int) time.Duration {
		return time.Duration(atoi(k, def)) * time.Millisecond
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotelfuse?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		GlobalTimeout:  ms("SEARCH_GLOBAL_TIMEOUT_MS", 12000),
		CollectWorkers: atoi("COLLECT_WORKERS", 8),

		// Fuzzy-match thresholds are starting defaults, not validated
		// constants; tune per deployment.
		DedupRadiusM:       atof("DEDUP_RADIUS_METERS", 200),
		DedupMinConfidence: atof("DEDUP_MIN_CONFIDENCE", 0.82),

		BreakerThreshold: atoi("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerWindow:    ms("BREAKER_WINDOW_MS", 60000),
		BreakerCooldown:  ms("BREAKER_COOLDOWN_MS", 30000),

		OfferTTL:       ms("OFFER_TTL_MS", 20*60*1000),
		CacheTTL:       ms("SEARCH_CACHE_TTL_MS", 5*60*1000),
		SweepInterval:  ms("SWEEP_INTERVAL_MS", 5*60*1000),
		SweepBatchSize: atoi("SWEEP_BATCH_SIZE", 5000),
	}

	for _, code := range strings.Split(env("SUPPLIERS", "RATEHAWK,HOTELBEDS,TBO"), ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		sc := SupplierConfig{
			Code:    code,
			BaseURL: env(code+"_BASE_URL", ""),
			APIKey:  env(code+"_API_KEY", ""),
			RPS:     atoi(code+"_RPS", 5),
		}
		if sc.BaseURL == "" {
			log.Warn().Str("supplier", code).Msg("supplier base URL not configured")
		}
		c.Suppliers = append(c.Suppliers, sc)
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
