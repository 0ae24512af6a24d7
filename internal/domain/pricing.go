package domain

// PriceCategory buckets a domain's first-year price for presentation and
// ranking. The zero-valued ordering (bundled first) is the ranking order.
type PriceCategory string

const (
	// CategoryBundled means the price fits inside a hosting bundle.
	CategoryBundled PriceCategory = "bundled"

	// CategoryRecommended is affordable but above the bundled ceiling.
	CategoryRecommended PriceCategory = "recommended"

	// CategoryStandard is ordinary registry pricing.
	CategoryStandard PriceCategory = "standard"

	// CategoryPremium flags aftermarket or registry-premium pricing.
	CategoryPremium PriceCategory = "premium"

	// CategoryUnknown means no price could be resolved.
	CategoryUnknown PriceCategory = "unknown"
)

// SortOrder returns the rank of the category for result ordering;
// lower sorts first.
func (c PriceCategory) SortOrder() int {
	switch c {
	case CategoryBundled:
		return 0
	case CategoryRecommended:
		return 1
	case CategoryStandard:
		return 2
	case CategoryPremium:
		return 3
	case CategoryUnknown:
		return 4
	default:
		return 5
	}
}

// PriceThresholds are the configurable category boundaries in minor
// currency units.
type PriceThresholds struct {
	// BundledMaxCents is the inclusive ceiling for CategoryBundled.
	BundledMaxCents int `json:"bundled_max_cents"`

	// RecommendedMaxCents is the inclusive ceiling for CategoryRecommended.
	RecommendedMaxCents int `json:"recommended_max_cents"`

	// PremiumAboveCents is the exclusive floor for CategoryPremium.
	PremiumAboveCents int `json:"premium_above_cents"`
}

// DefaultPriceThresholds returns the production boundaries:
// bundled up to $30, recommended up to $50, premium above $50.
func DefaultPriceThresholds() PriceThresholds {
	return PriceThresholds{
		BundledMaxCents:     3000,
		RecommendedMaxCents: 5000,
		PremiumAboveCents:   5000,
	}
}

// CategoryFor derives the category for a price in minor units.
func (t PriceThresholds) CategoryFor(cents int) PriceCategory {
	switch {
	case cents <= 0:
		return CategoryUnknown
	case cents <= t.BundledMaxCents:
		return CategoryBundled
	case cents <= t.RecommendedMaxCents:
		return CategoryRecommended
	case cents > t.PremiumAboveCents:
		return CategoryPremium
	default:
		return CategoryStandard
	}
}

// PriceQuote is a resolved first-year price for a domain.
type PriceQuote struct {
	Domain     string        `json:"domain"`
	PriceCents int           `json:"price_cents"`
	Currency   string        `json:"currency"`
	Category   PriceCategory `json:"category"`
}
