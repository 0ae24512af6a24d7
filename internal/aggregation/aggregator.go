// Package aggregation merges per-round evaluation, availability, and
// pricing data into SearchResults and ranks them for presentation.
package aggregation

import (
	"sort"
	"strings"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

// ApplyRound folds one round's lookups into the search state. Every
// availability record produces exactly one SearchResult; a missing
// evaluation or quote degrades that result rather than dropping it.
// The checked and available domain sets are extended in record order.
func ApplyRound(
	state *domain.SearchState,
	round int,
	evals []domain.Evaluation,
	records []domain.AvailabilityRecord,
	quotes map[string]domain.PriceQuote,
) {
	byDomain := make(map[string]domain.Evaluation, len(evals))
	for _, e := range evals {
		byDomain[strings.ToLower(e.Domain)] = e
	}

	for _, rec := range records {
		key := strings.ToLower(rec.Domain)

		result := domain.SearchResult{
			Domain:   key,
			TLD:      domain.TLDOf(key),
			Status:   rec.Status,
			Score:    0.5,
			Category: domain.CategoryUnknown,
			Round:    round,
		}
		if eval, ok := byDomain[key]; ok {
			result.Score = eval.Score
			result.Evaluation = &eval
		}
		if quote, ok := quotes[key]; ok {
			result.PriceCents = quote.PriceCents
			result.Category = quote.Category
		}

		state.Results = append(state.Results, result)
		if !state.HasChecked(key) {
			state.CheckedDomains = append(state.CheckedDomains, key)
		}
		if rec.Status == domain.StatusAvailable {
			state.AvailableDomains = append(state.AvailableDomains, key)
		}
	}
}

// Ranked returns the available results ordered best first: score
// descending, then the cheaper price category, then the domain name
// for a stable total order. The list is truncated to limit when limit
// is positive.
func Ranked(results []domain.SearchResult, limit int) []domain.SearchResult {
	ranked := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		if r.Status == domain.StatusAvailable {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if a, b := ranked[i].Category.SortOrder(), ranked[j].Category.SortOrder(); a != b {
			return a < b
		}
		return ranked[i].Domain < ranked[j].Domain
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
