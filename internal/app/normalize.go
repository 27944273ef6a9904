package app

import (
	"math"
	"strconv"
	"strings"
	"time"

	"hotelfuse/internal/domain"
)

// CandidateSet is one supplier hotel after normalization: the property
// sighting plus its priced offers, ready for identity resolution.
type CandidateSet struct {
	Property domain.PropertyCandidate
	Offers   []domain.RoomOfferCandidate
}

// Normalize narrows a supplier's raw payload into canonical candidates.
// It is pure: same input, same output, no I/O. A candidate missing a
// required field (name, at least one price, currency) is dropped and
// counted rather than failing the batch; the caller feeds the count into
// the normalization-skipped metric.
func Normalize(raw domain.RawResult, sc domain.SearchContext) (sets []CandidateSet, dropped int) {
	switch {
	case raw.RateHawk != nil:
		return normalizeRateHawk(raw.RateHawk, sc)
	case raw.Hotelbeds != nil:
		return normalizeHotelbeds(raw.Hotelbeds, sc)
	case raw.TBO != nil:
		return normalizeTBO(raw.TBO, sc)
	}
	return nil, 0
}

func normalizeRateHawk(p *domain.RateHawkPayload, sc domain.SearchContext) ([]CandidateSet, int) {
	var sets []CandidateSet
	dropped := 0
	for _, h := range p.Hotels {
		if strings.TrimSpace(h.Name) == "" || h.ID == "" {
			dropped++
			continue
		}
		cand := domain.PropertyCandidate{
			SupplierCode:    domain.SupplierRateHawk,
			SupplierHotelID: h.ID,
			Name:            strings.TrimSpace(h.Name),
			Address:         optStr(h.Address),
			City:            optStr(h.City),
			Country:         optStr(h.CountryCode),
			Stars:           optPosF(h.StarRating),
			ReviewScore:     optPosF(h.ReviewScore),
			ReviewCount:     optPosI(h.ReviewCount),
			ChainCode:       optStr(h.ChainCode),
			CrossRefID:      optStr(h.GiataID),
			ThumbnailURL:    optStr(h.ImageURL),
		}
		if h.Location.Coordinates.Lat != 0 || h.Location.Coordinates.Lon != 0 {
			cand.Lat = ptrF(h.Location.Coordinates.Lat)
			cand.Lon = ptrF(h.Location.Coordinates.Lon)
		}

		var offers []domain.RoomOfferCandidate
		for _, r := range h.Rates {
			base, taxes, total, ok := decomposePrice(parseDec(r.Price.Base), parseDec(r.Price.Taxes), parseDec(r.Price.Total))
			currency := firstNonEmpty(r.Price.Currency, sc.Currency)
			if !ok || currency == "" {
				dropped++
				continue
			}
			until := parseWhen(r.FreeCancellationBefore)
			free := len(r.CancellationPenalties) == 0 || (until != nil && until.After(sc.Now))
			o := domain.RoomOfferCandidate{
				RoomName:         firstNonEmpty(r.RoomName, "Standard Room"),
				Board:            mapBoard(r.Meal),
				Refundable:       free,
				FreeCancellation: free,
				CancellableUntil: until,
				Currency:         currency,
				PriceBase:        base,
				PriceTaxes:       taxes,
				PriceTotal:       total,
				PricePerNight:    perNight(total, sc.Nights()),
				RateToken:        optStr(r.BookHash),
				Availability:     optPosI(r.Allotment),
			}
			offers = append(offers, stamp(o, sc))
		}
		if len(offers) == 0 {
			continue
		}
		sets = append(sets, CandidateSet{Property: cand, Offers: offers})
	}
	return sets, dropped
}

func normalizeHotelbeds(p *domain.HotelbedsPayload, sc domain.SearchContext) ([]CandidateSet, int) {
	var sets []CandidateSet
	dropped := 0
	for _, h := range p.Hotels {
		if strings.TrimSpace(h.Name) == "" || h.Code == 0 {
			dropped++
			continue
		}
		cand := domain.PropertyCandidate{
			SupplierCode:    domain.SupplierHotelbeds,
			SupplierHotelID: strconv.FormatInt(h.Code, 10),
			Name:            strings.TrimSpace(h.Name),
			Address:         optStr(h.Address.Street),
			City:            optStr(h.Address.City),
			Country:         optStr(h.Address.Country),
			Stars:           categoryStars(h.CategoryCode),
			ChainCode:       optStr(h.ChainCode),
			CrossRefID:      optStr(h.GiataCode),
			ThumbnailURL:    optStr(h.ImageURL),
		}
		if h.Coordinates.Latitude != 0 || h.Coordinates.Longitude != 0 {
			cand.Lat = ptrF(h.Coordinates.Latitude)
			cand.Lon = ptrF(h.Coordinates.Longitude)
		}
		if h.Review != nil {
			cand.ReviewScore = optPosF(h.Review.Score)
			cand.ReviewCount = optPosI(h.Review.Count)
		}

		var offers []domain.RoomOfferCandidate
		for _, room := range h.Rooms {
			for _, r := range room.Rates {
				var taxes float64
				if r.Taxes != nil {
					taxes = parseDec(r.Taxes.Total)
				}
				base, taxes, total, ok := decomposePrice(parseDec(r.Net), taxes, parseDec(r.SellingRate))
				if !ok || sc.Currency == "" {
					dropped++
					continue
				}
				var until *time.Time
				if len(r.CancellationPolicies) > 0 {
					until = parseWhen(r.CancellationPolicies[0].From)
				}
				free := len(r.CancellationPolicies) == 0 || (until != nil && until.After(sc.Now))
				o := domain.RoomOfferCandidate{
					RoomName:         firstNonEmpty(room.Name, "Standard Room"),
					Board:            mapBoard(r.BoardCode),
					Refundable:       free,
					FreeCancellation: free,
					CancellableUntil: until,
					Currency:         sc.Currency,
					PriceBase:        base,
					PriceTaxes:       taxes,
					PriceTotal:       total,
					PricePerNight:    perNight(total, sc.Nights()),
					RateToken:        optStr(r.RateKey),
					Availability:     optPosI(r.Allotment),
				}
				offers = append(offers, stamp(o, sc))
			}
		}
		if len(offers) == 0 {
			continue
		}
		sets = append(sets, CandidateSet{Property: cand, Offers: offers})
	}
	return sets, dropped
}

func normalizeTBO(p *domain.TBOPayload, sc domain.SearchContext) ([]CandidateSet, int) {
	var sets []CandidateSet
	dropped := 0
	for _, h := range p.HotelResults {
		if strings.TrimSpace(h.HotelName) == "" || h.HotelCode == "" {
			dropped++
			continue
		}
		cand := domain.PropertyCandidate{
			SupplierCode:    domain.SupplierTBO,
			SupplierHotelID: h.HotelCode,
			Name:            strings.TrimSpace(h.HotelName),
			Address:         optStr(h.Address),
			City:            optStr(h.CityName),
			Country:         optStr(h.CountryCode),
			Stars:           optPosF(h.StarRating),
			ReviewScore:     optPosF(h.ReviewScore),
			ReviewCount:     optPosI(h.ReviewCount),
			CrossRefID:      optStr(h.GiataID),
			ThumbnailURL:    optStr(h.ImageURL),
		}
		if h.Latitude != 0 || h.Longitude != 0 {
			cand.Lat = ptrF(h.Latitude)
			cand.Lon = ptrF(h.Longitude)
		}

		var offers []domain.RoomOfferCandidate
		for _, r := range h.Rooms {
			base, taxes, total, ok := decomposePrice(r.BasePrice, r.Taxes, r.TotalPrice)
			currency := firstNonEmpty(r.Currency, sc.Currency)
			if !ok || currency == "" {
				dropped++
				continue
			}
			until := parseWhen(r.FreeCancellationTill)
			free := until != nil && until.After(sc.Now)
			o := domain.RoomOfferCandidate{
				RoomName:         firstNonEmpty(r.RoomName, "Standard Room"),
				Board:            mapBoard(r.MealType),
				Refundable:       r.IsRefundable || free,
				FreeCancellation: free,
				CancellableUntil: until,
				Currency:         currency,
				PriceBase:        base,
				PriceTaxes:       taxes,
				PriceTotal:       total,
				PricePerNight:    perNight(total, sc.Nights()),
				RateToken:        optStr(r.RateKey),
				Availability:     optPosI(r.Availability),
			}
			offers = append(offers, stamp(o, sc))
		}
		if len(offers) == 0 {
			continue
		}
		sets = append(sets, CandidateSet{Property: cand, Offers: offers})
	}
	return sets, dropped
}

// decomposePrice enforces total = base + taxes: missing taxes default to 0,
// a missing side is reconstructed from the other, and on disagreement the
// total wins (base is recomputed from it).
func decomposePrice(base, taxes, total float64) (float64, float64, float64, bool) {
	if base <= 0 && total <= 0 {
		return 0, 0, 0, false
	}
	if taxes < 0 {
		taxes = 0
	}
	switch {
	case total <= 0:
		total = round2(base + taxes)
	case base <= 0:
		base = round2(total - taxes)
	case math.Abs(base+taxes-total) > 0.01:
		base = round2(total - taxes)
	}
	return base, taxes, total, true
}

func mapBoard(s string) domain.BoardBasis {
	switch strings.ReplaceAll(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", ""), " ", "") {
	case "ro", "roomonly", "nomeal", "none":
		return domain.BoardRoomOnly
	case "bb", "breakfast", "bedandbreakfast":
		return domain.BoardBreakfast
	case "hb", "halfboard":
		return domain.BoardHalfBoard
	case "fb", "fullboard":
		return domain.BoardFullBoard
	case "ai", "allinclusive":
		return domain.BoardAllInclusive
	}
	return domain.BoardUnknown
}

func stamp(o domain.RoomOfferCandidate, sc domain.SearchContext) domain.RoomOfferCandidate {
	o.CheckIn = sc.CheckIn
	o.CheckOut = sc.CheckOut
	// Offers are keyed by the search context they answered, whatever
	// occupancy the rate itself reports.
	o.Adults = sc.Adults
	o.Children = sc.Children
	o.CreatedAt = sc.Now
	if sc.OfferTTL > 0 {
		exp := sc.Now.Add(sc.OfferTTL)
		o.ExpiresAt = &exp
	}
	return o
}

// categoryStars extracts the star count from Hotelbeds category codes like
// "4EST" or "3LL".
func categoryStars(code string) *float64 {
	code = strings.TrimSpace(code)
	i := 0
	for i < len(code) && code[i] >= '0' && code[i] <= '9' {
		i++
	}
	if i == 0 {
		return nil
	}
	n, err := strconv.ParseFloat(code[:i], 64)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func parseDec(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var whenLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

func parseWhen(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func perNight(total float64, nights int) *float64 {
	if nights <= 0 || total <= 0 {
		return nil
	}
	v := round2(total / float64(nights))
	return &v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func optStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func ptrF(f float64) *float64 { return &f }

func optPosF(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}

func optPosI(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
