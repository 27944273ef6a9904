package domain

import (
	"context"
	"time"
)

// SupplierAdapter translates canonical criteria into one provider's request
// shape and the provider's response into its raw intermediate form. Adapters
// never touch shared state; failures surface as *SupplierError.
type SupplierAdapter interface {
	Code() string
	Search(ctx context.Context, c Criteria) (RawResult, error)
}

// SupplierDirectory is the live supplier configuration, re-read on every
// search so enable/timeout changes apply without a restart.
type SupplierDirectory interface {
	ListSuppliers(ctx context.Context) ([]Supplier, error)
}

// Store is the canonical persistence contract: fill-in property upserts,
// superseding link upserts, append-only offer writes.
type Store interface {
	// Identity resolution reads
	FindPropertyByCrossRef(ctx context.Context, crossRef string) (*Property, error)
	FindLink(ctx context.Context, supplierCode, supplierHotelID string) (*SupplierLink, error)
	ListPropertiesNear(ctx context.Context, city, country string, lat, lon, radiusM float64) ([]PropertyNeighbor, error)
	CountLinks(ctx context.Context, propertyID string) (int, error)

	// Write paths
	UpsertProperty(ctx context.Context, p Property) error
	UpsertLink(ctx context.Context, l SupplierLink) error
	AppendAudit(ctx context.Context, a DedupAudit) error
	InsertOffers(ctx context.Context, propertyID, supplierCode string, offers []RoomOfferCandidate) (int, error)

	// Read paths
	ListOffers(ctx context.Context, q OfferQuery) ([]OfferRow, error)
	SupplierSpread(ctx context.Context, propertyID string, at time.Time) ([]SupplierSpread, error)

	// Supplier configuration + maintenance
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	DeleteExpiredOffers(ctx context.Context, before time.Time, limit int) (int64, error)
}

// Cache is a read-through cache for ranked search responses.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
