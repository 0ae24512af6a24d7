// Package pricing resolves first-year registration prices for
// candidate domains. Pricing is best effort: a failed lookup yields no
// quote and the domain surfaces with an unknown price category, it
// never aborts a search round.
package pricing

import (
	"context"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

// Oracle prices a batch of domains. Domains absent from the returned
// map could not be priced. Implementations return an error only for a
// wholesale failure; per-domain misses are silent.
type Oracle interface {
	BatchPrice(ctx context.Context, domains []string) (map[string]domain.PriceQuote, error)
}

// Static is a fixed-price Oracle for tests and offline runs. Every
// domain gets the same price, categorized by the thresholds.
type Static struct {
	PriceCents int
	Currency   string
	Thresholds domain.PriceThresholds
}

// NewStatic returns a Static oracle pricing everything at cents.
func NewStatic(cents int) *Static {
	return &Static{
		PriceCents: cents,
		Currency:   "USD",
		Thresholds: domain.DefaultPriceThresholds(),
	}
}

// BatchPrice quotes the fixed price for every domain.
func (s *Static) BatchPrice(_ context.Context, domains []string) (map[string]domain.PriceQuote, error) {
	quotes := make(map[string]domain.PriceQuote, len(domains))
	for _, d := range domains {
		quotes[d] = domain.PriceQuote{
			Domain:     d,
			PriceCents: s.PriceCents,
			Currency:   s.Currency,
			Category:   s.Thresholds.CategoryFor(s.PriceCents),
		}
	}
	return quotes, nil
}

// Disabled is an Oracle that prices nothing, for runs where pricing
// is turned off.
type Disabled struct{}

// BatchPrice returns an empty map.
func (Disabled) BatchPrice(context.Context, []string) (map[string]domain.PriceQuote, error) {
	return map[string]domain.PriceQuote{}, nil
}
