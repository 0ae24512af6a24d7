package generation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

var (
	commonPrefixes = []string{"get", "try", "my", "the", "go", "use"}
	commonSuffixes = []string{"hq", "app", "io", "labs", "studio"}
)

// RoundHistory summarizes earlier rounds so the generator can steer
// away from exhausted patterns and toward TLDs that showed supply.
type RoundHistory struct {
	Checked   []string
	Available []string
	Target    int
}

// HistoryFromState builds a RoundHistory from accumulated search state.
func HistoryFromState(state *domain.SearchState, target int) *RoundHistory {
	return &RoundHistory{
		Checked:   state.CheckedDomains,
		Available: state.AvailableDomains,
		Target:    target,
	}
}

func (h *RoundHistory) CheckedCount() int   { return len(h.Checked) }
func (h *RoundHistory) AvailableCount() int { return len(h.Available) }

// TriedSummary groups checked domains by TLD, most-tried first, capped
// at the five busiest TLDs.
func (h *RoundHistory) TriedSummary() string {
	if len(h.Checked) == 0 {
		return "Nothing checked yet"
	}

	counts := make(map[string]int)
	for _, d := range h.Checked {
		counts[domain.TLDOf(d)]++
	}

	tlds := make([]string, 0, len(counts))
	for tld := range counts {
		tlds = append(tlds, tld)
	}
	sort.Slice(tlds, func(i, j int) bool {
		if counts[tlds[i]] != counts[tlds[j]] {
			return counts[tlds[i]] > counts[tlds[j]]
		}
		return tlds[i] < tlds[j]
	})

	if len(tlds) > 5 {
		tlds = tlds[:5]
	}
	parts := make([]string, len(tlds))
	for i, tld := range tlds {
		parts[i] = fmt.Sprintf(".%s: %d", tld, counts[tld])
	}
	return strings.Join(parts, ", ")
}

// AvailableSummary lists up to ten available domains.
func (h *RoundHistory) AvailableSummary() string {
	if len(h.Available) == 0 {
		return "None found yet"
	}
	names := h.Available
	if len(names) > 10 {
		names = names[:10]
	}
	return strings.Join(names, ", ")
}

// TakenPatterns sketches the base names that were all taken, with
// common prefixes and suffixes stripped so the model sees the pattern
// rather than each variation.
func (h *RoundHistory) TakenPatterns() string {
	available := make(map[string]struct{}, len(h.Available))
	for _, d := range h.Available {
		available[strings.ToLower(d)] = struct{}{}
	}

	baseNames := make(map[string]struct{})
	taken := 0
	for _, d := range h.Checked {
		d = strings.ToLower(d)
		if _, ok := available[d]; ok {
			continue
		}
		taken++
		name, _, _ := strings.Cut(d, ".")
		for _, prefix := range commonPrefixes {
			if rest, ok := strings.CutPrefix(name, prefix); ok {
				name = rest
				break
			}
		}
		for _, suffix := range commonSuffixes {
			if rest, ok := strings.CutSuffix(name, suffix); ok {
				name = rest
				break
			}
		}
		if name != "" {
			baseNames[name] = struct{}{}
		}
	}

	if taken == 0 {
		return "No clear patterns yet"
	}
	if len(baseNames) >= 5 {
		return "Various patterns all taken"
	}

	names := make([]string, 0, len(baseNames))
	for name := range baseNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return "Base names tried: " + strings.Join(names, ", ")
}
