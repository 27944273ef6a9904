package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hotelfuse/internal/app"
	"hotelfuse/internal/domain"
)

func testCriteria() domain.Criteria {
	return domain.Criteria{
		Destination: "Barcelona",
		Country:     "ES",
		CheckIn:     time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC),
		Adults:      2,
		Currency:    "EUR",
	}
}

func rateHawkRaw(hotelID, name, total string) domain.RawResult {
	return domain.RawResult{
		Supplier: domain.SupplierRateHawk,
		RateHawk: &domain.RateHawkPayload{
			Hotels: []domain.RateHawkHotel{
				{
					ID:   hotelID,
					Name: name,
					Rates: []domain.RateHawkRate{
						{
							RoomName: "Double",
							Meal:     "breakfast",
							Price:    domain.RateHawkPrice{Currency: "EUR", Total: total},
						},
					},
				},
			},
		},
	}
}

func tboRaw(hotelID, name string, total float64) domain.RawResult {
	return domain.RawResult{
		Supplier: domain.SupplierTBO,
		TBO: &domain.TBOPayload{
			HotelResults: []domain.TBOHotel{
				{
					HotelCode: hotelID,
					HotelName: name,
					Rooms: []domain.TBORoom{
						{RoomName: "Twin", MealType: "RoomOnly", Currency: "EUR", TotalPrice: total},
					},
				},
			},
		},
	}
}

func newOrchestrator(store *fakeStore, adapters ...*fakeAdapter) (*app.Orchestrator, *app.BreakerSet) {
	breakers := app.NewBreakerSet(5, time.Minute, 30*time.Second)
	resolver := app.NewResolver(store, 200, 0.82)
	orc := app.NewOrchestrator(newFakeRegistry(adapters...), store, store, resolver, breakers, 2*time.Second, 4)
	return orc, breakers
}

func TestSearchPartialFailureStillSucceeds(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{
		{Code: "RATEHAWK", Enabled: true},
		{Code: "TBO", Enabled: true},
	}
	good := &fakeAdapter{code: "RATEHAWK", raw: rateHawkRaw("rh-1", "Grand Palace Hotel", "340.00")}
	bad := &fakeAdapter{code: "TBO", err: domain.NewSupplierError("TBO", domain.FailHTTP, errors.New("boom"))}
	orc, _ := newOrchestrator(store, good, bad)

	agg, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if err != nil {
		t.Fatalf("one healthy supplier is enough: %v", err)
	}
	if agg.State != app.StateComplete {
		t.Fatalf("state = %s, want complete", agg.State)
	}
	if agg.OffersPersisted != 1 || agg.PropertiesSeen != 1 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if !agg.Suppliers["RATEHAWK"].Success {
		t.Fatalf("healthy supplier not recorded: %+v", agg.Suppliers)
	}
	m := agg.Suppliers["TBO"]
	if m.Success || m.Error == "" {
		t.Fatalf("failed supplier must carry its error: %+v", m)
	}
}

func TestSearchAllSuppliersFailing(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{
		{Code: "RATEHAWK", Enabled: true},
		{Code: "TBO", Enabled: true},
	}
	a := &fakeAdapter{code: "RATEHAWK", err: domain.NewSupplierError("RATEHAWK", domain.FailHTTP, errors.New("502"))}
	b := &fakeAdapter{code: "TBO", err: domain.NewSupplierError("TBO", domain.FailTimeout, context.DeadlineExceeded)}
	orc, _ := newOrchestrator(store, a, b)

	_, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("want ErrNoResults, got %v", err)
	}
}

func TestSearchNoEnabledSuppliers(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{{Code: "RATEHAWK", Enabled: false}}
	orc, _ := newOrchestrator(store, &fakeAdapter{code: "RATEHAWK"})

	_, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if !errors.Is(err, domain.ErrNoResults) {
		t.Fatalf("want ErrNoResults, got %v", err)
	}
}

func TestSearchDisabledSupplierNotCalled(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{
		{Code: "RATEHAWK", Enabled: true},
		{Code: "TBO", Enabled: false},
	}
	good := &fakeAdapter{code: "RATEHAWK", raw: rateHawkRaw("rh-1", "Grand Palace Hotel", "340.00")}
	disabled := &fakeAdapter{code: "TBO", raw: tboRaw("tbo-9", "Seaside Inn", 99)}
	orc, _ := newOrchestrator(store, good, disabled)

	if _, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute); err != nil {
		t.Fatalf("search: %v", err)
	}
	if disabled.callCount() != 0 {
		t.Fatal("disabled supplier must never be called")
	}
	if _, ok := store.links[linkKey("TBO", "tbo-9")]; ok {
		t.Fatal("disabled supplier must not contribute results")
	}
}

func TestSearchSupplierTimeoutIsNonFatal(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{
		{Code: "RATEHAWK", Enabled: true},
		{Code: "TBO", Enabled: true, Timeout: 50 * time.Millisecond},
	}
	good := &fakeAdapter{code: "RATEHAWK", raw: rateHawkRaw("rh-1", "Grand Palace Hotel", "340.00")}
	slow := &fakeAdapter{code: "TBO", raw: tboRaw("tbo-9", "Seaside Inn", 99), delay: 500 * time.Millisecond}
	orc, _ := newOrchestrator(store, good, slow)

	agg, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if err != nil {
		t.Fatalf("slow supplier must not sink the search: %v", err)
	}
	m := agg.Suppliers["TBO"]
	if m.Success {
		t.Fatalf("timed-out supplier recorded as success: %+v", m)
	}
	if agg.OffersPersisted != 1 {
		t.Fatalf("want 1 offer from the fast supplier, got %d", agg.OffersPersisted)
	}
}

func TestSearchBreakerShortCircuits(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{
		{Code: "RATEHAWK", Enabled: true},
		{Code: "TBO", Enabled: true},
	}
	good := &fakeAdapter{code: "RATEHAWK", raw: rateHawkRaw("rh-1", "Grand Palace Hotel", "340.00")}
	bad := &fakeAdapter{code: "TBO", err: domain.NewSupplierError("TBO", domain.FailHTTP, errors.New("boom"))}
	orc, breakers := newOrchestrator(store, good, bad)

	// Five failures open the TBO breaker.
	for i := 0; i < 5; i++ {
		if _, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
	}
	if breakers.For("TBO").State() != "open" {
		t.Fatalf("breaker state = %s, want open", breakers.For("TBO").State())
	}

	before := bad.callCount()
	agg, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if err != nil {
		t.Fatalf("search with open breaker: %v", err)
	}
	if bad.callCount() != before {
		t.Fatal("open breaker must fail fast without calling the adapter")
	}
	if m := agg.Suppliers["TBO"]; !strings.Contains(m.Error, string(domain.FailCircuitOpen)) {
		t.Fatalf("short-circuit must be reported as circuit-open: %+v", m)
	}
}

func TestSearchMergesSuppliersIntoOneProperty(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{
		{Code: "RATEHAWK", Enabled: true},
		{Code: "TBO", Enabled: true},
	}
	rh := rateHawkRaw("rh-1", "Grand Palace Hotel", "340.00")
	rh.RateHawk.Hotels[0].City = "Barcelona"
	rh.RateHawk.Hotels[0].CountryCode = "ES"
	rh.RateHawk.Hotels[0].Location.Coordinates.Lat = 41.3902
	rh.RateHawk.Hotels[0].Location.Coordinates.Lon = 2.1540

	tb := tboRaw("tbo-9", "Hôtel Grand Palace", 367)
	tb.TBO.HotelResults[0].CityName = "Barcelona"
	tb.TBO.HotelResults[0].CountryCode = "ES"
	tb.TBO.HotelResults[0].Latitude = 41.3910
	tb.TBO.HotelResults[0].Longitude = 2.1555

	orc, _ := newOrchestrator(store, &fakeAdapter{code: "RATEHAWK", raw: rh}, &fakeAdapter{code: "TBO", raw: tb})

	agg, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if agg.OffersPersisted != 2 {
		t.Fatalf("want 2 offers, got %d", agg.OffersPersisted)
	}
	if len(store.props) != 1 {
		t.Fatalf("same physical hotel must merge, got %d properties", len(store.props))
	}
	if len(store.links) != 2 {
		t.Fatalf("want one link per supplier, got %d", len(store.links))
	}
}

// laggedStore delays resolver and persistence calls and honors ctx, so an
// expired context surfaces as an error instead of a silent pass.
type laggedStore struct {
	*fakeStore
	lag time.Duration
}

func (s *laggedStore) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.lag):
		return nil
	}
}

func (s *laggedStore) FindLink(ctx context.Context, supplierCode, supplierHotelID string) (*domain.SupplierLink, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.fakeStore.FindLink(ctx, supplierCode, supplierHotelID)
}

func (s *laggedStore) InsertOffers(ctx context.Context, propertyID, supplierCode string, offers []domain.RoomOfferCandidate) (int, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	return s.fakeStore.InsertOffers(ctx, propertyID, supplierCode, offers)
}

func TestSearchPersistsCandidateArrivingNearDeadline(t *testing.T) {
	inner := newFakeStore()
	inner.suppliers = []domain.Supplier{{Code: "RATEHAWK", Enabled: true}}
	store := &laggedStore{fakeStore: inner, lag: 100 * time.Millisecond}

	// The adapter answers just inside the 200ms fan-out budget; persisting
	// its candidate takes longer than what is left of it.
	adapter := &fakeAdapter{
		code:  "RATEHAWK",
		delay: 150 * time.Millisecond,
		raw:   rateHawkRaw("rh-late", "Grand Palace Hotel", "340.00"),
	}
	breakers := app.NewBreakerSet(5, time.Minute, 30*time.Second)
	resolver := app.NewResolver(store, 200, 0.82)
	orc := app.NewOrchestrator(newFakeRegistry(adapter), store, store, resolver, breakers, 200*time.Millisecond, 4)

	agg, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if err != nil {
		t.Fatalf("candidate returned in time must be persisted: %v", err)
	}
	if agg.OffersPersisted != 1 || agg.PropertiesSeen != 1 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if !agg.Suppliers["RATEHAWK"].Success {
		t.Fatalf("supplier must be recorded as successful: %+v", agg.Suppliers)
	}
	if len(inner.offers) != 1 {
		t.Fatalf("offer lost after the fan-out deadline: %d stored", len(inner.offers))
	}
}

func TestSearchAdapterlessSupplierSkipsBreaker(t *testing.T) {
	store := newFakeStore()
	store.suppliers = []domain.Supplier{
		{Code: "RATEHAWK", Enabled: true},
		{Code: "HOTELBEDS", Enabled: true}, // enabled but no adapter wired
	}
	good := &fakeAdapter{code: "RATEHAWK", raw: rateHawkRaw("rh-1", "Grand Palace Hotel", "340.00")}
	orc, breakers := newOrchestrator(store, good)

	agg, err := orc.Search(context.Background(), testCriteria(), 20*time.Minute)
	if err != nil {
		t.Fatalf("healthy supplier is enough: %v", err)
	}
	m := agg.Suppliers["HOTELBEDS"]
	if m.Success || !strings.Contains(m.Error, "no adapter registered") {
		t.Fatalf("configuration gap not reported: %+v", m)
	}
	if _, ok := breakers.Snapshot()["HOTELBEDS"]; ok {
		t.Fatalf("configuration gap must not touch the breaker: %+v", breakers.Snapshot())
	}
}
