package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotelfuse/internal/app"
	"hotelfuse/internal/domain"
)

type Handlers struct {
	Search    *app.SearchService
	Breakers  *app.BreakerSet
	Directory domain.SupplierDirectory
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)
	s.mux.Post("/v1/search", h.search)
	s.mux.Get("/v1/properties/{id}/offers", h.propertyOffers)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

type searchBody struct {
	Destination string  `json:"destination"`
	Country     string  `json:"country"`
	CheckIn     string  `json:"checkIn"`
	CheckOut    string  `json:"checkOut"`
	Adults      int     `json:"adults"`
	Children    int     `json:"children"`
	Currency    string  `json:"currency"`
	Filters     filters `json:"filters"`
	Limit       int     `json:"limit"`
	Offset      int     `json:"offset"`
}

type filters struct {
	PriceMin             float64 `json:"priceMin"`
	PriceMax             float64 `json:"priceMax"`
	FreeCancellationOnly bool    `json:"freeCancellationOnly"`
	MinStars             float64 `json:"minStars"`
}

func (b searchBody) toRequest() (app.SearchRequest, string) {
	if strings.TrimSpace(b.Destination) == "" {
		return app.SearchRequest{}, "destination is required"
	}
	checkIn, err := time.Parse("2006-01-02", b.CheckIn)
	if err != nil {
		return app.SearchRequest{}, "checkIn must be YYYY-MM-DD"
	}
	checkOut, err := time.Parse("2006-01-02", b.CheckOut)
	if err != nil {
		return app.SearchRequest{}, "checkOut must be YYYY-MM-DD"
	}
	if !checkOut.After(checkIn) {
		return app.SearchRequest{}, "checkOut must be after checkIn"
	}
	if b.Adults < 1 {
		return app.SearchRequest{}, "adults must be at least 1"
	}
	if b.Children < 0 {
		return app.SearchRequest{}, "children must not be negative"
	}
	currency := strings.ToUpper(strings.TrimSpace(b.Currency))
	if currency == "" {
		currency = "USD"
	}
	if b.Limit <= 0 || b.Limit > 100 {
		b.Limit = 20
	}
	if b.Offset < 0 {
		b.Offset = 0
	}
	return app.SearchRequest{
		Criteria: domain.Criteria{
			Destination: strings.TrimSpace(b.Destination),
			Country:     strings.TrimSpace(b.Country),
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			Adults:      b.Adults,
			Children:    b.Children,
			Currency:    currency,
		},
		Filters: domain.Filters{
			PriceMin:             b.Filters.PriceMin,
			PriceMax:             b.Filters.PriceMax,
			FreeCancellationOnly: b.Filters.FreeCancellationOnly,
			MinStars:             b.Filters.MinStars,
		},
		Page: domain.Page{Limit: b.Limit, Offset: b.Offset},
	}, ""
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	req, reason := body.toRequest()
	if reason != "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Search", reason)
		return
	}

	resp, err := h.Search.Search(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrNoResults) {
			writeProblem(w, http.StatusBadGateway, "No Results Available", "no supplier produced any results")
			return
		}
		log.Error().Err(err).Msg("search failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) propertyOffers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "property id is required")
		return
	}
	spread, err := h.Search.PropertyOffers(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "no live offers for property")
			return
		}
		log.Error().Err(err).Str("property_id", id).Msg("property offers failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"propertyId": id, "suppliers": spread})
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"status": "ok"}
	if h.Breakers != nil {
		out["breakers"] = h.Breakers.Snapshot()
	}
	if h.Directory != nil {
		if suppliers, err := h.Directory.ListSuppliers(r.Context()); err == nil {
			out["suppliers"] = suppliers
		}
	}
	writeJSON(w, http.StatusOK, out)
}
