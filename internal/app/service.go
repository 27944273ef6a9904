package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hotelfuse/internal/domain"
)

// SearchRequest is the full, validated input for one search call.
type SearchRequest struct {
	Criteria domain.Criteria
	Filters  domain.Filters
	Page     domain.Page
}

// SearchStats summarizes what the fan-out did, for the response envelope.
type SearchStats struct {
	State           SearchState `json:"state"`
	PropertiesSeen  int         `json:"propertiesSeen"`
	OffersPersisted int         `json:"offersPersisted"`
	Dropped         int         `json:"droppedResults"`
	CacheHit        bool        `json:"cacheHit"`
}

// SearchResponse is the caller-facing aggregate: one ranked page plus
// per-supplier metrics and run stats.
type SearchResponse struct {
	Properties      []domain.RankedPropertyCard      `json:"properties"`
	TotalCount      int                              `json:"totalCount"`
	SupplierMetrics map[string]domain.SupplierMetric `json:"supplierMetrics"`
	Stats           SearchStats                      `json:"stats"`
}

// SearchService glues the orchestrator and ranker together behind a short
// read-through cache: identical searches inside the TTL reuse the ranked
// page instead of hitting the suppliers again.
type SearchService struct {
	orchestrator *Orchestrator
	ranker       *Ranker
	cache        domain.Cache
	cacheTTL     time.Duration
	offerTTL     time.Duration
	now          func() time.Time
}

func NewSearchService(orc *Orchestrator, ranker *Ranker, cache domain.Cache, cacheTTL, offerTTL time.Duration) *SearchService {
	return &SearchService{
		orchestrator: orc,
		ranker:       ranker,
		cache:        cache,
		cacheTTL:     cacheTTL,
		offerTTL:     offerTTL,
		now:          time.Now,
	}
}

// Search serves one search request end to end.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	key := searchCacheKey(req)
	if s.cache != nil {
		var cached SearchResponse
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("search cache read failed")
		} else if hit {
			cached.Stats.CacheHit = true
			return cached, nil
		}
	}

	agg, err := s.orchestrator.Search(ctx, req.Criteria, s.offerTTL)
	if err != nil && !errors.Is(err, domain.ErrNoResults) {
		return SearchResponse{}, err
	}
	fatal := err != nil

	at := s.now()
	page, rankErr := s.ranker.Rank(ctx, offerQuery(req, at), req.Page, at)
	if rankErr != nil {
		return SearchResponse{}, rankErr
	}
	// A failed fan-out can still rank offers persisted by earlier searches.
	if fatal && page.TotalCount == 0 {
		return SearchResponse{}, domain.ErrNoResults
	}

	resp := SearchResponse{
		Properties:      page.Properties,
		TotalCount:      page.TotalCount,
		SupplierMetrics: agg.Suppliers,
		Stats: SearchStats{
			State:           agg.State,
			PropertiesSeen:  agg.PropertiesSeen,
			OffersPersisted: agg.OffersPersisted,
			Dropped:         agg.Dropped,
		},
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("search cache write failed")
		}
	}
	return resp, nil
}

// PropertyOffers returns the per-supplier price spread for one property's
// live offers.
func (s *SearchService) PropertyOffers(ctx context.Context, propertyID string) ([]domain.SupplierSpread, error) {
	spread, err := s.orchestrator.store.SupplierSpread(ctx, propertyID, s.now())
	if err != nil {
		return nil, err
	}
	if len(spread) == 0 {
		return nil, domain.ErrNotFound
	}
	return spread, nil
}

func offerQuery(req SearchRequest, at time.Time) domain.OfferQuery {
	c := req.Criteria
	return domain.OfferQuery{
		Destination: c.Destination,
		Country:     c.Country,
		CheckIn:     c.CheckIn,
		CheckOut:    c.CheckOut,
		Adults:      c.Adults,
		Children:    c.Children,
		Currency:    c.Currency,
		Filters:     req.Filters,
		At:          at,
	}
}

// searchCacheKey hashes the canonicalized request so equivalent searches,
// however spelled, share one cache entry.
func searchCacheKey(req SearchRequest) string {
	c := req.Criteria
	f := req.Filters
	canonical := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%s|%.2f|%.2f|%t|%.1f|%d|%d",
		strings.ToLower(strings.TrimSpace(c.Destination)),
		strings.ToLower(strings.TrimSpace(c.Country)),
		c.CheckIn.Format("2006-01-02"),
		c.CheckOut.Format("2006-01-02"),
		c.Adults, c.Children,
		strings.ToUpper(c.Currency),
		f.PriceMin, f.PriceMax, f.FreeCancellationOnly, f.MinStars,
		req.Page.Limit, req.Page.Offset,
	)
	sum := sha1.Sum([]byte(canonical))
	return "search:" + hex.EncodeToString(sum[:])
}
