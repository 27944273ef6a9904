package domain

import "time"

// Criteria is the canonical search request fanned out to supplier adapters.
type Criteria struct {
	Destination string // city
	Country     string
	CheckIn     time.Time
	CheckOut    time.Time
	Adults      int
	Children    int
	Currency    string
}

// Nights returns the stay length; zero if the dates are unusable.
func (c Criteria) Nights() int {
	n := int(c.CheckOut.Sub(c.CheckIn).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// SearchContext carries everything the normalizer needs to stay a pure
// function: the search criteria plus the clock reading and offer TTL decided
// by the caller.
type SearchContext struct {
	Criteria
	Now      time.Time
	OfferTTL time.Duration
}

type Filters struct {
	PriceMin             float64
	PriceMax             float64 // 0 = unbounded
	FreeCancellationOnly bool
	MinStars             float64
}

type Page struct {
	Limit  int
	Offset int
}

// RankedPropertyCard is one property's representative row in the result set:
// its cheapest eligible offer plus enough detail to render a search card.
type RankedPropertyCard struct {
	PropertyID       string     `json:"propertyId"`
	Name             string     `json:"name"`
	City             *string    `json:"city,omitempty"`
	Country          *string    `json:"country,omitempty"`
	Stars            *float64   `json:"stars,omitempty"`
	ReviewScore      *float64   `json:"reviewScore,omitempty"`
	ThumbnailURL     *string    `json:"thumbnailUrl,omitempty"`
	RoomName         string     `json:"roomName"`
	Board            BoardBasis `json:"boardBasis"`
	FreeCancellation bool       `json:"freeCancellation"`
	Currency         string     `json:"currency"`
	CheapestTotal    float64    `json:"cheapestTotal"`
	CheapestPerNight *float64   `json:"cheapestPerNight,omitempty"`
	CheapestSupplier string     `json:"cheapestSupplier"`
	CheapestOfferID  string     `json:"cheapestOfferId"`
	RateToken        *string    `json:"rateToken,omitempty"`
	OffersCount      int        `json:"offersCount"`
}

// RankedPage is one page of ranked cards plus the pre-pagination total.
type RankedPage struct {
	Properties []RankedPropertyCard `json:"properties"`
	TotalCount int                  `json:"totalCount"`
}

// OfferRow joins a live offer with the summary of the property it belongs
// to; the ranking service groups and orders these.
type OfferRow struct {
	Offer    RoomOffer
	Property Property
}

// OfferQuery selects committed, non-expired offers for ranking. At is the
// read clock: the store and the ranker judge expiry against the same instant.
type OfferQuery struct {
	Destination string
	Country     string
	CheckIn     time.Time
	CheckOut    time.Time
	Adults      int
	Children    int
	Currency    string
	Filters     Filters
	At          time.Time
}
