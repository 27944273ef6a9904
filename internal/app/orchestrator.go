package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotelfuse/internal/adapters/observability"
	"hotelfuse/internal/domain"
)

// SearchState tracks one search through its lifecycle. The only terminal
// failure is ErrNoResults; everything else degrades to a partial result.
type SearchState string

const (
	StatePending    SearchState = "pending"
	StateFannedOut  SearchState = "fanned-out"
	StateCollecting SearchState = "collecting"
	StateComplete   SearchState = "complete"
)

// AdapterRegistry resolves supplier codes to live adapters.
type AdapterRegistry interface {
	Get(code string) (domain.SupplierAdapter, bool)
}

// Aggregate is the outcome of one fan-out: how many candidates were
// persisted and what each supplier did.
type Aggregate struct {
	State           SearchState
	PropertiesSeen  int
	OffersPersisted int
	Dropped         int
	Suppliers       map[string]domain.SupplierMetric
}

// Orchestrator fans a search out to every enabled supplier, normalizes and
// resolves whatever comes back, and persists offers. Supplier failures are
// collected, never propagated: a search only fails when no supplier
// produced anything at all.
type Orchestrator struct {
	registry      AdapterRegistry
	directory     domain.SupplierDirectory
	store         domain.Store
	resolver      *Resolver
	breakers      *BreakerSet
	globalTimeout time.Duration
	workers       int64
	now           func() time.Time
}

func NewOrchestrator(
	registry AdapterRegistry,
	directory domain.SupplierDirectory,
	store domain.Store,
	resolver *Resolver,
	breakers *BreakerSet,
	globalTimeout time.Duration,
	workers int,
) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		registry:      registry,
		directory:     directory,
		store:         store,
		resolver:      resolver,
		breakers:      breakers,
		globalTimeout: globalTimeout,
		workers:       int64(workers),
		now:           time.Now,
	}
}

type supplierOutcome struct {
	code    string
	raw     domain.RawResult
	latency time.Duration
	err     error
}

// Search runs the full fan-out/collect cycle for one set of criteria.
func (o *Orchestrator) Search(ctx context.Context, c domain.Criteria, offerTTL time.Duration) (Aggregate, error) {
	agg := Aggregate{State: StatePending, Suppliers: make(map[string]domain.SupplierMetric)}

	suppliers, err := o.directory.ListSuppliers(ctx)
	if err != nil {
		return agg, err
	}
	enabled := suppliers[:0]
	for _, s := range suppliers {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	if len(enabled) == 0 {
		return agg, domain.ErrNoResults
	}

	// The global deadline bounds adapter calls only. Candidates that made it
	// back in time are normalized and persisted under the caller's context,
	// so a slow store cannot void a successful fan-out.
	fanCtx, cancel := context.WithTimeout(ctx, o.globalTimeout)
	defer cancel()

	agg.State = StateFannedOut
	results := make(chan supplierOutcome, len(enabled))
	var wg sync.WaitGroup
	for _, s := range enabled {
		wg.Add(1)
		go func(s domain.Supplier) {
			defer wg.Done()
			results <- o.callSupplier(fanCtx, s, c)
		}(s)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	agg.State = StateCollecting
	sc := domain.SearchContext{Criteria: c, Now: o.now(), OfferTTL: offerTTL}
	sem := semaphore.NewWeighted(o.workers)
	var (
		collectWG sync.WaitGroup
		mu        sync.Mutex
	)
	for out := range results {
		metric := domain.SupplierMetric{LatencyMs: out.latency.Milliseconds()}
		if out.err != nil {
			metric.Error = out.err.Error()
			mu.Lock()
			agg.Suppliers[out.code] = metric
			mu.Unlock()
			continue
		}

		sets, dropped := Normalize(out.raw, sc)
		if dropped > 0 {
			observability.NormalizationSkipped.WithLabelValues(out.code).Add(float64(dropped))
		}
		metric.Success = true
		metric.ResultCount = len(sets)
		mu.Lock()
		agg.Suppliers[out.code] = metric
		agg.Dropped += dropped
		mu.Unlock()

		for _, set := range sets {
			set := set
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
			collectWG.Add(1)
			go func() {
				defer collectWG.Done()
				defer sem.Release(1)
				seen, persisted := o.collect(ctx, set)
				mu.Lock()
				agg.PropertiesSeen += seen
				agg.OffersPersisted += persisted
				mu.Unlock()
			}()
		}
	}
	collectWG.Wait()

	agg.State = StateComplete
	if agg.OffersPersisted == 0 {
		return agg, domain.ErrNoResults
	}
	return agg, nil
}

// callSupplier checks the breaker, runs one adapter under its own deadline
// and records the outcome. The per-supplier budget never extends past the
// global one.
func (o *Orchestrator) callSupplier(ctx context.Context, s domain.Supplier, c domain.Criteria) supplierOutcome {
	// A missing adapter is a configuration gap, not a supplier failure: bail
	// before the breaker so it never consumes a half-open probe slot.
	adapter, ok := o.registry.Get(s.Code)
	if !ok {
		err := domain.NewSupplierError(s.Code, domain.FailHTTP, errors.New("no adapter registered"))
		return supplierOutcome{code: s.Code, err: err}
	}

	br := o.breakers.For(s.Code)
	if !br.Allow(o.now()) {
		err := domain.NewSupplierError(s.Code, domain.FailCircuitOpen, nil)
		observability.ObserveSupplier(s.Code, string(domain.FailCircuitOpen), 0)
		return supplierOutcome{code: s.Code, err: err}
	}

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := o.now()
	raw, err := adapter.Search(callCtx, c)
	latency := o.now().Sub(start)
	if err != nil {
		br.Failure(o.now())
		kind := domain.FailHTTP
		var se *domain.SupplierError
		if errors.As(err, &se) {
			kind = se.Kind
		}
		observability.ObserveSupplier(s.Code, string(kind), latency)
		log.Warn().Err(err).Str("supplier", s.Code).Dur("latency", latency).Msg("supplier search failed")
		return supplierOutcome{code: s.Code, latency: latency, err: err}
	}

	br.Success(o.now())
	observability.ObserveSupplier(s.Code, "ok", latency)
	return supplierOutcome{code: s.Code, raw: raw, latency: latency}
}

// collect resolves one candidate property and persists its offers. A failure
// here loses one candidate, not the search.
func (o *Orchestrator) collect(ctx context.Context, set CandidateSet) (seen, persisted int) {
	res, err := o.resolver.Resolve(ctx, set.Property, o.now())
	if err != nil {
		log.Error().Err(err).
			Str("supplier", set.Property.SupplierCode).
			Str("hotel_id", set.Property.SupplierHotelID).
			Msg("identity resolution failed")
		return 0, 0
	}
	n, err := o.store.InsertOffers(ctx, res.PropertyID, set.Property.SupplierCode, set.Offers)
	if err != nil {
		log.Error().Err(err).Str("property_id", res.PropertyID).Msg("offer insert failed")
		return 1, 0
	}
	return 1, n
}
