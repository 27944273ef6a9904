package suppliers

import (
	"context"

	"hotelfuse/internal/domain"
)

// RateHawk searches the RateHawk SERP endpoint. Prices come back as decimal
// strings; the payload is handed to the normalizer untouched.
type RateHawk struct {
	c *httpClient
}

func NewRateHawk(base, key string, rps int) *RateHawk {
	return &RateHawk{c: newHTTPClient(base, key, rps)}
}

func (a *RateHawk) Code() string { return domain.SupplierRateHawk }

type ratehawkGuests struct {
	Adults   int   `json:"adults"`
	Children []int `json:"children"`
}

type ratehawkSearchRequest struct {
	Region   string           `json:"region"`
	Country  string           `json:"country_code,omitempty"`
	CheckIn  string           `json:"checkin"`
	CheckOut string           `json:"checkout"`
	Guests   []ratehawkGuests `json:"guests"`
	Currency string           `json:"currency"`
}

func (a *RateHawk) Search(ctx context.Context, c domain.Criteria) (domain.RawResult, error) {
	req := ratehawkSearchRequest{
		Region:   c.Destination,
		Country:  c.Country,
		CheckIn:  isoDate(c.CheckIn),
		CheckOut: isoDate(c.CheckOut),
		Guests:   []ratehawkGuests{{Adults: c.Adults, Children: make([]int, c.Children)}},
		Currency: c.Currency,
	}
	var payload domain.RateHawkPayload
	if err := a.c.postJSON(ctx, "/search/serp/hotels/", req, &payload); err != nil {
		return domain.RawResult{}, classify(domain.SupplierRateHawk, err)
	}
	return domain.RawResult{Supplier: domain.SupplierRateHawk, RateHawk: &payload}, nil
}
