package domain

import "time"

type BoardBasis string

const (
	BoardRoomOnly     BoardBasis = "room-only"
	BoardBreakfast    BoardBasis = "breakfast"
	BoardHalfBoard    BoardBasis = "half-board"
	BoardFullBoard    BoardBasis = "full-board"
	BoardAllInclusive BoardBasis = "all-inclusive"
	BoardUnknown      BoardBasis = "unknown"
)

// RoomOffer is one priced, bookable room option from one supplier for one
// search context. Offers are immutable once written; re-searches append new
// ones and expired offers are garbage collected.
type RoomOffer struct {
	ID               string
	PropertyID       string
	SupplierCode     string
	RoomName         string
	Board            BoardBasis
	Refundable       bool
	FreeCancellation bool
	CancellableUntil *time.Time
	Adults           int
	Children         int
	Currency         string
	PriceBase        float64
	PriceTaxes       float64
	PriceTotal       float64
	PricePerNight    *float64
	RateToken        *string // opaque supplier token, needed to confirm a booking
	Availability     *int
	CheckIn          time.Time
	CheckOut         time.Time
	CreatedAt        time.Time
	ExpiresAt        *time.Time
}

// RoomOfferCandidate is a normalized offer that has not been tied to a
// canonical Property yet. IDs are assigned at persistence time.
type RoomOfferCandidate struct {
	RoomName         string
	Board            BoardBasis
	Refundable       bool
	FreeCancellation bool
	CancellableUntil *time.Time
	Adults           int
	Children         int
	Currency         string
	PriceBase        float64
	PriceTaxes       float64
	PriceTotal       float64
	PricePerNight    *float64
	RateToken        *string
	Availability     *int
	CheckIn          time.Time
	CheckOut         time.Time
	CreatedAt        time.Time
	ExpiresAt        *time.Time
}

// Expired reports whether the offer is past its expiry at the given instant.
func (o RoomOffer) Expired(at time.Time) bool {
	return o.ExpiresAt != nil && !o.ExpiresAt.After(at)
}
