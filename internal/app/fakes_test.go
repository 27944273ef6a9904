package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hotelfuse/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func linkKey(supplierCode, supplierHotelID string) string {
	return supplierCode + "|" + supplierHotelID
}

// fakeStore is an in-memory domain.Store with the same write semantics as
// the real repo: fill-in property upserts, superseding link upserts,
// append-only offers.
type fakeStore struct {
	mu        sync.Mutex
	props     map[string]domain.Property
	links     map[string]domain.SupplierLink
	audits    []domain.DedupAudit
	offers    []domain.RoomOffer
	suppliers []domain.Supplier

	nextOfferID int
	failInsert  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		props: make(map[string]domain.Property),
		links: make(map[string]domain.SupplierLink),
	}
}

func (s *fakeStore) FindPropertyByCrossRef(ctx context.Context, crossRef string) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.props {
		if p.CrossRefID != nil && *p.CrossRefID == crossRef {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindLink(ctx context.Context, supplierCode, supplierHotelID string) (*domain.SupplierLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.links[linkKey(supplierCode, supplierHotelID)]; ok {
		cp := l
		return &cp, nil
	}
	return nil, nil
}

func (s *fakeStore) ListPropertiesNear(ctx context.Context, city, country string, lat, lon, radiusM float64) ([]domain.PropertyNeighbor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.PropertyNeighbor
	for id, p := range s.props {
		n := domain.PropertyNeighbor{Property: p}
		for _, l := range s.links {
			if l.PropertyID == id {
				n.LinkCount++
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *fakeStore) CountLinks(ctx context.Context, propertyID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.links {
		if l.PropertyID == propertyID {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) UpsertProperty(ctx context.Context, p domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.props[p.ID]
	if !ok {
		s.props[p.ID] = p
		return nil
	}
	// fill-in: existing non-nil fields win
	fillStr(&old.Address, p.Address)
	fillStr(&old.City, p.City)
	fillStr(&old.Country, p.Country)
	fillF(&old.Lat, p.Lat)
	fillF(&old.Lon, p.Lon)
	fillF(&old.Stars, p.Stars)
	fillF(&old.ReviewScore, p.ReviewScore)
	if old.ReviewCount == nil {
		old.ReviewCount = p.ReviewCount
	}
	fillStr(&old.ChainCode, p.ChainCode)
	fillStr(&old.CrossRefID, p.CrossRefID)
	fillStr(&old.ThumbnailURL, p.ThumbnailURL)
	s.props[p.ID] = old
	return nil
}

func fillStr(dst **string, v *string) {
	if *dst == nil {
		*dst = v
	}
}

func fillF(dst **float64, v *float64) {
	if *dst == nil {
		*dst = v
	}
}

func (s *fakeStore) UpsertLink(ctx context.Context, l domain.SupplierLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[linkKey(l.SupplierCode, l.SupplierHotelID)] = l
	return nil
}

func (s *fakeStore) AppendAudit(ctx context.Context, a domain.DedupAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = int64(len(s.audits) + 1)
	s.audits = append(s.audits, a)
	return nil
}

func (s *fakeStore) InsertOffers(ctx context.Context, propertyID, supplierCode string, offers []domain.RoomOfferCandidate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInsert != nil {
		return 0, s.failInsert
	}
	for _, c := range offers {
		s.nextOfferID++
		s.offers = append(s.offers, domain.RoomOffer{
			ID:               fmt.Sprintf("offer-%04d", s.nextOfferID),
			PropertyID:       propertyID,
			SupplierCode:     supplierCode,
			RoomName:         c.RoomName,
			Board:            c.Board,
			Refundable:       c.Refundable,
			FreeCancellation: c.FreeCancellation,
			CancellableUntil: c.CancellableUntil,
			Adults:           c.Adults,
			Children:         c.Children,
			Currency:         c.Currency,
			PriceBase:        c.PriceBase,
			PriceTaxes:       c.PriceTaxes,
			PriceTotal:       c.PriceTotal,
			PricePerNight:    c.PricePerNight,
			RateToken:        c.RateToken,
			Availability:     c.Availability,
			CheckIn:          c.CheckIn,
			CheckOut:         c.CheckOut,
			CreatedAt:        c.CreatedAt,
			ExpiresAt:        c.ExpiresAt,
		})
	}
	return len(offers), nil
}

func (s *fakeStore) ListOffers(ctx context.Context, q domain.OfferQuery) ([]domain.OfferRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OfferRow
	for _, o := range s.offers {
		p, ok := s.props[o.PropertyID]
		if !ok {
			continue
		}
		out = append(out, domain.OfferRow{Offer: o, Property: p})
	}
	return out, nil
}

func (s *fakeStore) SupplierSpread(ctx context.Context, propertyID string, at time.Time) ([]domain.SupplierSpread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bySupplier := make(map[string]*domain.SupplierSpread)
	var order []string
	for _, o := range s.offers {
		if o.PropertyID != propertyID || o.Expired(at) {
			continue
		}
		sp, ok := bySupplier[o.SupplierCode]
		if !ok {
			sp = &domain.SupplierSpread{SupplierCode: o.SupplierCode, MinTotal: o.PriceTotal, MaxTotal: o.PriceTotal, Currency: o.Currency}
			bySupplier[o.SupplierCode] = sp
			order = append(order, o.SupplierCode)
		}
		sp.Rooms++
		sp.AvgTotal += o.PriceTotal
		if o.PriceTotal < sp.MinTotal {
			sp.MinTotal = o.PriceTotal
		}
		if o.PriceTotal > sp.MaxTotal {
			sp.MaxTotal = o.PriceTotal
		}
		if o.FreeCancellation {
			sp.FreeCancellation++
		}
	}
	var out []domain.SupplierSpread
	for _, code := range order {
		sp := bySupplier[code]
		sp.AvgTotal /= float64(sp.Rooms)
		out = append(out, *sp)
	}
	return out, nil
}

func (s *fakeStore) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Supplier(nil), s.suppliers...), nil
}

func (s *fakeStore) DeleteExpiredOffers(ctx context.Context, before time.Time, limit int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []domain.RoomOffer
	var n int64
	for _, o := range s.offers {
		if o.ExpiresAt != nil && !o.ExpiresAt.After(before) && n < int64(limit) {
			n++
			continue
		}
		kept = append(kept, o)
	}
	s.offers = kept
	return n, nil
}

// fakeAdapter is a canned supplier: one payload or one error per call.
type fakeAdapter struct {
	code  string
	raw   domain.RawResult
	err   error
	delay time.Duration
	calls int
	mu    sync.Mutex
}

func (a *fakeAdapter) Code() string { return a.code }

func (a *fakeAdapter) Search(ctx context.Context, c domain.Criteria) (domain.RawResult, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.delay > 0 {
		select {
		case <-ctx.Done():
			return domain.RawResult{}, domain.NewSupplierError(a.code, domain.FailTimeout, ctx.Err())
		case <-time.After(a.delay):
		}
	}
	if a.err != nil {
		return domain.RawResult{}, a.err
	}
	return a.raw, nil
}

func (a *fakeAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type fakeRegistry struct {
	adapters map[string]domain.SupplierAdapter
}

func newFakeRegistry(adapters ...*fakeAdapter) *fakeRegistry {
	m := make(map[string]domain.SupplierAdapter, len(adapters))
	for _, a := range adapters {
		m[a.code] = a
	}
	return &fakeRegistry{adapters: m}
}

func (r *fakeRegistry) Get(code string) (domain.SupplierAdapter, bool) {
	a, ok := r.adapters[code]
	return a, ok
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
	hits  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
