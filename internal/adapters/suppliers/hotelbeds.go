package suppliers

import (
	"context"

	"hotelfuse/internal/domain"
)

// Hotelbeds searches the Hotelbeds availability endpoint.
type Hotelbeds struct {
	c *httpClient
}

func NewHotelbeds(base, key string, rps int) *Hotelbeds {
	return &Hotelbeds{c: newHTTPClient(base, key, rps)}
}

func (a *Hotelbeds) Code() string { return domain.SupplierHotelbeds }

type hotelbedsSearchRequest struct {
	Stay struct {
		CheckIn  string `json:"checkIn"`
		CheckOut string `json:"checkOut"`
	} `json:"stay"`
	Occupancies []hotelbedsOccupancy `json:"occupancies"`
	Destination struct {
		City    string `json:"city"`
		Country string `json:"country,omitempty"`
	} `json:"destination"`
	Currency string `json:"currency"`
}

type hotelbedsOccupancy struct {
	Rooms    int `json:"rooms"`
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (a *Hotelbeds) Search(ctx context.Context, c domain.Criteria) (domain.RawResult, error) {
	var req hotelbedsSearchRequest
	req.Stay.CheckIn = isoDate(c.CheckIn)
	req.Stay.CheckOut = isoDate(c.CheckOut)
	req.Occupancies = []hotelbedsOccupancy{{Rooms: 1, Adults: c.Adults, Children: c.Children}}
	req.Destination.City = c.Destination
	req.Destination.Country = c.Country
	req.Currency = c.Currency

	var payload domain.HotelbedsPayload
	if err := a.c.postJSON(ctx, "/hotel-api/1.0/hotels", req, &payload); err != nil {
		return domain.RawResult{}, classify(domain.SupplierHotelbeds, err)
	}
	return domain.RawResult{Supplier: domain.SupplierHotelbeds, Hotelbeds: &payload}, nil
}
