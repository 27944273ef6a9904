package suppliers

import (
	"context"

	"hotelfuse/internal/domain"
)

// TBO searches the TBO hotel API.
type TBO struct {
	c *httpClient
}

func NewTBO(base, key string, rps int) *TBO {
	return &TBO{c: newHTTPClient(base, key, rps)}
}

func (a *TBO) Code() string { return domain.SupplierTBO }

type tboRoomRequest struct {
	Adults   int `json:"Adults"`
	Children int `json:"Children"`
}

type tboSearchRequest struct {
	CheckInDate  string           `json:"CheckInDate"`
	CheckOutDate string           `json:"CheckOutDate"`
	CityName     string           `json:"CityName"`
	CountryCode  string           `json:"CountryCode,omitempty"`
	Rooms        []tboRoomRequest `json:"Rooms"`
	Currency     string           `json:"Currency"`
}

func (a *TBO) Search(ctx context.Context, c domain.Criteria) (domain.RawResult, error) {
	req := tboSearchRequest{
		CheckInDate:  isoDate(c.CheckIn),
		CheckOutDate: isoDate(c.CheckOut),
		CityName:     c.Destination,
		CountryCode:  c.Country,
		Rooms:        []tboRoomRequest{{Adults: c.Adults, Children: c.Children}},
		Currency:     c.Currency,
	}
	var payload domain.TBOPayload
	if err := a.c.postJSON(ctx, "/hotelapi/Search", req, &payload); err != nil {
		return domain.RawResult{}, classify(domain.SupplierTBO, err)
	}
	return domain.RawResult{Supplier: domain.SupplierTBO, TBO: &payload}, nil
}
