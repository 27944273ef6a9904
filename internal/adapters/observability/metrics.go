package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelfuse", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	SupplierRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "supplier_requests_total", Help: "Outbound supplier search calls."},
		[]string{"supplier", "outcome"}, // outcome: ok|timeout|http|malformed|circuit-open
	)
	SupplierLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelfuse", Name: "supplier_request_duration_seconds",
			Help:    "Outbound supplier call duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"supplier"},
	)
	NormalizationSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "normalization_skipped_total", Help: "Candidates dropped for missing required fields."},
		[]string{"supplier"},
	)
	DedupDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "dedup_decisions_total", Help: "Identity resolutions by method."},
		[]string{"method"},
	)
	DedupAmbiguous = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "dedup_ambiguous_total", Help: "Fuzzy candidate ties resolved deterministically."},
	)
	PersistenceConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "persistence_conflicts_total", Help: "Property creation races resolved by linking to the winner."},
	)
	BreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "breaker_transitions_total", Help: "Circuit breaker state changes."},
		[]string{"supplier", "state"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"},
	)
	OffersSwept = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "hotelfuse", Name: "offers_swept_total", Help: "Expired room offers deleted by the sweeper."},
	)
)

// Serve exposes /metrics on its own listener for binaries without an HTTP
// surface of their own. An empty addr disables it.
func Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(InitRegistry()))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency,
		SupplierRequests, SupplierLatency,
		NormalizationSkipped, DedupDecisions, DedupAmbiguous,
		PersistenceConflicts, BreakerTransitions,
		CacheEvents, OffersSwept,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSupplier(supplier, outcome string, dur time.Duration) {
	SupplierRequests.WithLabelValues(supplier, outcome).Inc()
	SupplierLatency.WithLabelValues(supplier).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}
