package suppliers

import (
	"context"
	"errors"
	"net"
	"time"

	"hotelfuse/internal/domain"
)

// Registry holds the adapters constructed at startup, keyed by supplier
// code. It is an explicit value handed to the orchestrator; there is no
// ambient global registry.
type Registry struct {
	adapters map[string]domain.SupplierAdapter
}

func NewRegistry(adapters ...domain.SupplierAdapter) *Registry {
	m := make(map[string]domain.SupplierAdapter, len(adapters))
	for _, a := range adapters {
		m[a.Code()] = a
	}
	return &Registry{adapters: m}
}

func (r *Registry) Get(code string) (domain.SupplierAdapter, bool) {
	a, ok := r.adapters[code]
	return a, ok
}

func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.adapters))
	for code := range r.adapters {
		out = append(out, code)
	}
	return out
}

// classify wraps a transport error as a typed supplier failure.
func classify(supplier string, err error) *domain.SupplierError {
	kind := domain.FailHTTP
	var de *decodeError
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = domain.FailTimeout
	case errors.As(err, &ne) && ne.Timeout():
		kind = domain.FailTimeout
	case errors.As(err, &de):
		kind = domain.FailMalformed
	}
	return domain.NewSupplierError(supplier, kind, err)
}

func isoDate(t time.Time) string { return t.Format("2006-01-02") }
