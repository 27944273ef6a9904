package app

import (
	"context"
	"sort"
	"time"

	"hotelfuse/internal/domain"
)

// Ranker turns the persisted offer pool into one page of property cards:
// each property is represented by its cheapest eligible offer, and the page
// is ordered by price ascending, stars descending, property id ascending so
// identical pools always rank identically.
type Ranker struct {
	store domain.Store
}

func NewRanker(store domain.Store) *Ranker {
	return &Ranker{store: store}
}

// Rank lists live offers for the query, picks each property's cheapest, and
// paginates. Filters apply before pagination; TotalCount is the filtered
// property count, not the page size.
func (r *Ranker) Rank(ctx context.Context, q domain.OfferQuery, page domain.Page, at time.Time) (domain.RankedPage, error) {
	rows, err := r.store.ListOffers(ctx, q)
	if err != nil {
		return domain.RankedPage{}, err
	}

	type group struct {
		cheapest domain.OfferRow
		count    int
	}
	groups := make(map[string]*group)
	for _, row := range rows {
		if row.Offer.Expired(at) {
			continue
		}
		if !eligible(row, q.Filters) {
			continue
		}
		g, ok := groups[row.Offer.PropertyID]
		if !ok {
			groups[row.Offer.PropertyID] = &group{cheapest: row, count: 1}
			continue
		}
		g.count++
		if offerLess(row, g.cheapest) {
			g.cheapest = row
		}
	}

	cards := make([]domain.RankedPropertyCard, 0, len(groups))
	for _, g := range groups {
		cards = append(cards, card(g.cheapest, g.count))
	}
	sort.Slice(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if a.CheapestTotal != b.CheapestTotal {
			return a.CheapestTotal < b.CheapestTotal
		}
		as, bs := starsOf(a.Stars), starsOf(b.Stars)
		if as != bs {
			return as > bs
		}
		return a.PropertyID < b.PropertyID
	})

	out := domain.RankedPage{TotalCount: len(cards), Properties: []domain.RankedPropertyCard{}}
	if page.Limit <= 0 {
		page.Limit = 20
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset < len(cards) {
		end := page.Offset + page.Limit
		if end > len(cards) {
			end = len(cards)
		}
		out.Properties = cards[page.Offset:end]
	}
	return out, nil
}

func eligible(row domain.OfferRow, f domain.Filters) bool {
	o := row.Offer
	if f.PriceMin > 0 && o.PriceTotal < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && o.PriceTotal > f.PriceMax {
		return false
	}
	if f.FreeCancellationOnly && !o.FreeCancellation {
		return false
	}
	if f.MinStars > 0 && starsOf(row.Property.Stars) < f.MinStars {
		return false
	}
	return true
}

// offerLess breaks price ties by supplier then offer id, so the chosen
// representative is stable across runs.
func offerLess(a, b domain.OfferRow) bool {
	if a.Offer.PriceTotal != b.Offer.PriceTotal {
		return a.Offer.PriceTotal < b.Offer.PriceTotal
	}
	if a.Offer.SupplierCode != b.Offer.SupplierCode {
		return a.Offer.SupplierCode < b.Offer.SupplierCode
	}
	return a.Offer.ID < b.Offer.ID
}

func card(row domain.OfferRow, count int) domain.RankedPropertyCard {
	o, p := row.Offer, row.Property
	return domain.RankedPropertyCard{
		PropertyID:       p.ID,
		Name:             p.Name,
		City:             p.City,
		Country:          p.Country,
		Stars:            p.Stars,
		ReviewScore:      p.ReviewScore,
		ThumbnailURL:     p.ThumbnailURL,
		RoomName:         o.RoomName,
		Board:            o.Board,
		FreeCancellation: o.FreeCancellation,
		Currency:         o.Currency,
		CheapestTotal:    o.PriceTotal,
		CheapestPerNight: o.PricePerNight,
		CheapestSupplier: o.SupplierCode,
		CheapestOfferID:  o.ID,
		RateToken:        o.RateToken,
		OffersCount:      count,
	}
}

func starsOf(s *float64) float64 {
	if s == nil {
		return 0
	}
	return *s
}
