package domain

// Evaluation is a quality assessment of a single domain candidate.
// Every domain submitted for evaluation ends up with exactly one
// Evaluation, either model-produced or from the heuristic fallback.
type Evaluation struct {
	// Domain is the full lowercase domain being evaluated.
	Domain string `json:"domain" validate:"required"`

	// Score is the overall quality in [0,1]. Always clamped on construction.
	Score float64 `json:"score" validate:"min=0,max=1"`

	// WorthChecking marks domains that merit an availability lookup.
	WorthChecking bool `json:"worth_checking"`

	Pronounceable bool `json:"pronounceable"`
	Memorable     bool `json:"memorable"`
	BrandFit      bool `json:"brand_fit"`
	EmailFriendly bool `json:"email_friendly"`

	// Flags lists free-text concerns, e.g. "contains hyphens".
	Flags []string `json:"flags,omitempty"`

	// Notes is a brief free-text explanation.
	Notes string `json:"notes,omitempty"`
}

// ClampScore forces a score into [0,1]. Model output is untrusted and
// occasionally reports scores like 8.5 or -1.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
