package domain

import "time"

// Well-known supplier codes. The directory may carry others; these are the
// providers with first-party adapters.
const (
	SupplierRateHawk  = "RATEHAWK"
	SupplierHotelbeds = "HOTELBEDS"
	SupplierTBO       = "TBO"
)

// Supplier is a provider identity as configured. Suppliers are created by
// configuration and disabled rather than deleted.
type Supplier struct {
	Code    string        `json:"code"`
	Enabled bool          `json:"enabled"`
	Weight  int           `json:"weight"` // priority weight, informational
	Timeout time.Duration `json:"-"`      // per-call budget, capped by the global deadline
}

// SupplierMetric is the per-supplier outcome of one search, exposed to the
// caller for observability.
type SupplierMetric struct {
	Success     bool   `json:"success"`
	ResultCount int    `json:"resultCount"`
	LatencyMs   int64  `json:"latencyMs"`
	Error       string `json:"error,omitempty"`
}

// SupplierSpread summarizes one supplier's live offers for a property.
type SupplierSpread struct {
	SupplierCode     string  `json:"supplierCode"`
	Rooms            int     `json:"rooms"`
	MinTotal         float64 `json:"minTotal"`
	MaxTotal         float64 `json:"maxTotal"`
	AvgTotal         float64 `json:"avgTotal"`
	Currency         string  `json:"currency"`
	FreeCancellation int     `json:"freeCancellationRooms"`
}
