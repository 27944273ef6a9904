package domain

import "time"

// Property is the canonical record for one physical hotel, merged across
// suppliers. Optional fields are pointers so the store can distinguish
// "unknown" from zero values; upserts never null out a known field.
type Property struct {
	ID           string
	Name         string
	Address      *string
	City         *string
	Country      *string
	Lat, Lon     *float64
	Stars        *float64
	ReviewScore  *float64
	ReviewCount  *int
	ChainCode    *string
	CrossRefID   *string // trusted external id (GIATA-style)
	ThumbnailURL *string
}

// PropertyCandidate is a normalized, not-yet-resolved sighting of a hotel
// from one supplier. The identity resolver decides which Property it is.
type PropertyCandidate struct {
	SupplierCode    string
	SupplierHotelID string
	Name            string
	Address         *string
	City            *string
	Country         *string
	Lat, Lon        *float64
	Stars           *float64
	ReviewScore     *float64
	ReviewCount     *int
	ChainCode       *string
	CrossRefID      *string
	ThumbnailURL    *string
}

type MatchMethod string

const (
	MatchCrossRef     MatchMethod = "exact-cross-reference"
	MatchExistingLink MatchMethod = "existing-link"
	MatchGeoFuzzy     MatchMethod = "geo+name-fuzzy"
	MatchNewProperty  MatchMethod = "new-property"
)

// SupplierLink maps a (supplier, supplier-local hotel id) pair to exactly one
// Property. Links are superseded in place, never duplicated or deleted.
type SupplierLink struct {
	PropertyID      string
	SupplierCode    string
	SupplierHotelID string
	Confidence      float64
	Method          MatchMethod
}

// DedupAudit records one identity decision so false merges can be
// investigated (and reversed by an operator) later.
type DedupAudit struct {
	ID              int64
	PropertyID      string
	SupplierCode    string
	SupplierHotelID string
	Method          MatchMethod
	Confidence      float64
	CandidateName   string
	CreatedAt       time.Time
}

// PropertyNeighbor is a fuzzy-match candidate near a coordinate, with the
// number of supplier links it already has (more links = more corroborated).
type PropertyNeighbor struct {
	Property
	LinkCount int
}
