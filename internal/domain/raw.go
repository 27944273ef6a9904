package domain

// RawResult is the adapter-local intermediate: exactly one provider payload
// pointer is set, tagged by Supplier. The normalizer is the only place that
// narrows a variant into the canonical shapes.
type RawResult struct {
	Supplier  string
	RateHawk  *RateHawkPayload
	Hotelbeds *HotelbedsPayload
	TBO       *TBOPayload
}

// Empty reports whether the result carries no payload at all.
func (r RawResult) Empty() bool {
	return r.RateHawk == nil && r.Hotelbeds == nil && r.TBO == nil
}

// ---- RateHawk wire shapes (snake_case, decimal prices as strings) ----

type RateHawkPayload struct {
	Hotels []RateHawkHotel `json:"hotels"`
}

type RateHawkHotel struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Address     string         `json:"address"`
	City        string         `json:"city"`
	CountryCode string         `json:"country_code"`
	Location    RateHawkGeo    `json:"location"`
	StarRating  float64        `json:"star_rating"`
	ReviewScore float64        `json:"review_score"`
	ReviewCount int            `json:"review_count"`
	ChainCode   string         `json:"chain_code"`
	GiataID     string         `json:"giata_id"`
	ImageURL    string         `json:"image_url"`
	Rates       []RateHawkRate `json:"rates"`
}

type RateHawkGeo struct {
	Coordinates struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coordinates"`
}

type RateHawkRate struct {
	RoomName               string            `json:"room_name"`
	Meal                   string            `json:"meal"` // nomeal|breakfast|half-board|full-board|all-inclusive
	CancellationPenalties  []RateHawkPenalty `json:"cancellation_penalties"`
	FreeCancellationBefore string            `json:"free_cancellation_before"`
	Price                  RateHawkPrice     `json:"payment_options"`
	BookHash               string            `json:"book_hash"`
	Allotment              int               `json:"allotment"`
	Adults                 int               `json:"adults"`
	Children               int               `json:"children"`
}

type RateHawkPenalty struct {
	Amount string `json:"amount"`
	From   string `json:"from"`
}

type RateHawkPrice struct {
	Currency string `json:"currency_code"`
	Base     string `json:"amount_base"`
	Taxes    string `json:"amount_taxes"`
	Total    string `json:"amount_total"`
}

// ---- Hotelbeds wire shapes (camelCase, category as "4EST") ----

type HotelbedsPayload struct {
	Hotels []HotelbedsHotel `json:"hotels"`
}

type HotelbedsHotel struct {
	Code         int64            `json:"code"`
	Name         string           `json:"name"`
	CategoryCode string           `json:"categoryCode"`
	Address      HotelbedsAddress `json:"address"`
	Coordinates  HotelbedsGeo     `json:"coordinates"`
	ChainCode    string           `json:"chainCode"`
	GiataCode    string           `json:"giataCode"`
	ImageURL     string           `json:"imageUrl"`
	Review       *HotelbedsReview `json:"review,omitempty"`
	Rooms        []HotelbedsRoom  `json:"rooms"`
}

type HotelbedsAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

type HotelbedsGeo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type HotelbedsReview struct {
	Score float64 `json:"score"`
	Count int     `json:"reviewCount"`
}

type HotelbedsRoom struct {
	Name  string          `json:"name"`
	Rates []HotelbedsRate `json:"rates"`
}

type HotelbedsRate struct {
	RateKey              string                  `json:"rateKey"`
	BoardCode            string                  `json:"boardCode"` // RO|BB|HB|FB|AI
	Net                  string                  `json:"net"`
	Taxes                *HotelbedsTaxes         `json:"taxes,omitempty"`
	SellingRate          string                  `json:"sellingRate"`
	Allotment            int                     `json:"allotment"`
	Adults               int                     `json:"adults"`
	Children             int                     `json:"children"`
	CancellationPolicies []HotelbedsCancelPolicy `json:"cancellationPolicies"`
}

type HotelbedsTaxes struct {
	Total string `json:"total"`
}

type HotelbedsCancelPolicy struct {
	Amount string `json:"amount"`
	From   string `json:"from"`
}

// ---- TBO wire shapes (PascalCase) ----

type TBOPayload struct {
	HotelResults []TBOHotel `json:"HotelResults"`
}

type TBOHotel struct {
	HotelCode   string    `json:"HotelCode"`
	HotelName   string    `json:"HotelName"`
	StarRating  float64   `json:"StarRating"`
	Latitude    float64   `json:"Latitude"`
	Longitude   float64   `json:"Longitude"`
	Address     string    `json:"Address"`
	CityName    string    `json:"CityName"`
	CountryCode string    `json:"CountryCode"`
	GiataID     string    `json:"GiataId"`
	ImageURL    string    `json:"ImageUrl"`
	ReviewScore float64   `json:"ReviewScore"`
	ReviewCount int       `json:"ReviewCount"`
	Rooms       []TBORoom `json:"Rooms"`
}

type TBORoom struct {
	RoomName             string  `json:"RoomName"`
	MealType             string  `json:"MealType"` // RoomOnly|Breakfast|HalfBoard|FullBoard|AllInclusive
	Currency             string  `json:"Currency"`
	TotalPrice           float64 `json:"TotalPrice"`
	BasePrice            float64 `json:"BasePrice"`
	Taxes                float64 `json:"Taxes"`
	IsRefundable         bool    `json:"IsRefundable"`
	FreeCancellationTill string  `json:"FreeCancellationTill"`
	RateKey              string  `json:"RateKey"`
	Availability         int     `json:"Availability"`
	Adults               int     `json:"Adults"`
	Children             int     `json:"Children"`
}
