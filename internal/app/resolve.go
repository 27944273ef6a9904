package app

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotelfuse/internal/adapters/observability"
	"hotelfuse/internal/domain"
)

const resolveShards = 64

// Resolver decides which canonical Property a supplier sighting belongs to.
// The match ladder, in order: trusted cross-reference id, an existing link
// for the same (supplier, hotel id) pair, a geo+name fuzzy match against
// nearby properties, and finally a brand-new property.
//
// Creates are serialized per market (folded city|country) through a sharded
// mutex, so two suppliers racing on the same unseen hotel resolve to one
// property: the loser re-runs the ladder under the lock and links to the
// winner's row.
type Resolver struct {
	store         domain.Store
	radiusM       float64
	minConfidence float64
	locks         [resolveShards]sync.Mutex
}

func NewResolver(store domain.Store, radiusM, minConfidence float64) *Resolver {
	return &Resolver{store: store, radiusM: radiusM, minConfidence: minConfidence}
}

// Resolution is the outcome of one identity decision.
type Resolution struct {
	PropertyID string
	Method     domain.MatchMethod
	Confidence float64
}

// Resolve runs the match ladder for one candidate, upserts the property and
// its supplier link, and appends an audit row for every decision that was
// not a plain existing-link hit.
func (r *Resolver) Resolve(ctx context.Context, cand domain.PropertyCandidate, now time.Time) (Resolution, error) {
	if res, ok, err := r.match(ctx, cand); err != nil {
		return Resolution{}, err
	} else if ok {
		return r.commit(ctx, cand, res, now)
	}

	// Nothing matched: take the per-market lock and re-run the ladder before
	// creating, so a concurrent create of the same hotel is seen.
	mu := &r.locks[marketShard(cand)]
	mu.Lock()
	defer mu.Unlock()

	if res, ok, err := r.match(ctx, cand); err != nil {
		return Resolution{}, err
	} else if ok {
		// A racing create won while we waited for the lock; link to it.
		observability.PersistenceConflicts.Inc()
		return r.commit(ctx, cand, res, now)
	}

	res := Resolution{
		PropertyID: uuid.NewString(),
		Method:     domain.MatchNewProperty,
		Confidence: 1.0,
	}
	return r.commit(ctx, cand, res, now)
}

// match runs the read-only part of the ladder. ok=false means no decision
// was reached and a new property is needed.
func (r *Resolver) match(ctx context.Context, cand domain.PropertyCandidate) (Resolution, bool, error) {
	if cand.CrossRefID != nil && *cand.CrossRefID != "" {
		p, err := r.store.FindPropertyByCrossRef(ctx, *cand.CrossRefID)
		if err != nil {
			return Resolution{}, false, fmt.Errorf("find by cross-ref: %w", err)
		}
		if p != nil {
			return Resolution{PropertyID: p.ID, Method: domain.MatchCrossRef, Confidence: 1.0}, true, nil
		}
	}

	link, err := r.store.FindLink(ctx, cand.SupplierCode, cand.SupplierHotelID)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("find link: %w", err)
	}
	if link != nil {
		return Resolution{PropertyID: link.PropertyID, Method: domain.MatchExistingLink, Confidence: link.Confidence}, true, nil
	}

	if cand.Lat == nil || cand.Lon == nil {
		return Resolution{}, false, nil
	}
	city, country := "", ""
	if cand.City != nil {
		city = *cand.City
	}
	if cand.Country != nil {
		country = *cand.Country
	}
	neighbors, err := r.store.ListPropertiesNear(ctx, city, country, *cand.Lat, *cand.Lon, r.radiusM)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("list nearby: %w", err)
	}

	var (
		best      *domain.PropertyNeighbor
		bestScore float64
		tied      bool
	)
	for i := range neighbors {
		n := &neighbors[i]
		if n.Lat == nil || n.Lon == nil {
			continue
		}
		if haversineMeters(*cand.Lat, *cand.Lon, *n.Lat, *n.Lon) > r.radiusM {
			continue
		}
		score := nameSimilarity(cand.Name, n.Name)
		if score < r.minConfidence {
			continue
		}
		switch {
		case best == nil || score > bestScore:
			best, bestScore, tied = n, score, false
		case score == bestScore:
			// Equal scores: the property with more corroborating supplier
			// links wins; a genuine tie is ambiguous.
			if n.LinkCount > best.LinkCount {
				best = n
			} else if n.LinkCount == best.LinkCount {
				tied = true
			}
		}
	}
	if best != nil {
		if tied {
			observability.DedupAmbiguous.Inc()
			log.Warn().
				Str("supplier", cand.SupplierCode).
				Str("candidate", cand.Name).
				Float64("score", bestScore).
				Msg("ambiguous fuzzy match, picking first by link count")
		}
		return Resolution{PropertyID: best.ID, Method: domain.MatchGeoFuzzy, Confidence: bestScore}, true, nil
	}
	return Resolution{}, false, nil
}

// commit writes the property fill-in, the (superseding) link, and the audit
// row. Existing-link hits skip the audit: the decision was already recorded
// when the link was first made.
func (r *Resolver) commit(ctx context.Context, cand domain.PropertyCandidate, res Resolution, now time.Time) (Resolution, error) {
	p := propertyFromCandidate(cand)
	p.ID = res.PropertyID
	if err := r.store.UpsertProperty(ctx, p); err != nil {
		return Resolution{}, fmt.Errorf("upsert property: %w", err)
	}

	link := domain.SupplierLink{
		PropertyID:      res.PropertyID,
		SupplierCode:    cand.SupplierCode,
		SupplierHotelID: cand.SupplierHotelID,
		Confidence:      res.Confidence,
		Method:          res.Method,
	}
	if res.Method == domain.MatchExistingLink && cand.CrossRefID != nil && *cand.CrossRefID != "" {
		// A trusted id arrived for an already-linked pair: upgrade the link's
		// recorded confidence without re-running the ladder.
		link.Confidence = 1.0
		link.Method = domain.MatchCrossRef
	}
	if err := r.store.UpsertLink(ctx, link); err != nil {
		return Resolution{}, fmt.Errorf("upsert link: %w", err)
	}

	observability.DedupDecisions.WithLabelValues(string(res.Method)).Inc()
	if res.Method != domain.MatchExistingLink {
		audit := domain.DedupAudit{
			PropertyID:      res.PropertyID,
			SupplierCode:    cand.SupplierCode,
			SupplierHotelID: cand.SupplierHotelID,
			Method:          res.Method,
			Confidence:      res.Confidence,
			CandidateName:   cand.Name,
			CreatedAt:       now,
		}
		if err := r.store.AppendAudit(ctx, audit); err != nil {
			return Resolution{}, fmt.Errorf("append audit: %w", err)
		}
	}
	return res, nil
}

func propertyFromCandidate(c domain.PropertyCandidate) domain.Property {
	return domain.Property{
		Name:         c.Name,
		Address:      c.Address,
		City:         c.City,
		Country:      c.Country,
		Lat:          c.Lat,
		Lon:          c.Lon,
		Stars:        c.Stars,
		ReviewScore:  c.ReviewScore,
		ReviewCount:  c.ReviewCount,
		ChainCode:    c.ChainCode,
		CrossRefID:   c.CrossRefID,
		ThumbnailURL: c.ThumbnailURL,
	}
}

func marketShard(c domain.PropertyCandidate) int {
	city, country := "", ""
	if c.City != nil {
		city = *c.City
	}
	if c.Country != nil {
		country = *c.Country
	}
	h := fnv.New32a()
	h.Write([]byte(foldName(city)))
	h.Write([]byte{'|'})
	h.Write([]byte(foldName(country)))
	return int(h.Sum32() % resolveShards)
}
