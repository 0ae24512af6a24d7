package domain

// Approximate costs per token in USD, assuming the production mix of a
// capable generation model and a fast evaluation model (roughly 20/80).
const (
	generatorInputCostPerTok  = 3.0 / 1_000_000
	generatorOutputCostPerTok = 15.0 / 1_000_000
	evaluatorInputCostPerTok  = 0.25 / 1_000_000
	evaluatorOutputCostPerTok = 1.25 / 1_000_000

	generatorShare = 0.2
	evaluatorShare = 0.8
)

// UsageStats tracks token consumption across all model calls in a
// search. Totals only ever grow; they are used for cost estimation,
// never for control flow.
type UsageStats struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Add folds a usage delta into the totals.
func (u *UsageStats) Add(delta UsageStats) {
	u.InputTokens += delta.InputTokens
	u.OutputTokens += delta.OutputTokens
}

// TotalTokens returns input plus output tokens.
func (u UsageStats) TotalTokens() int64 { return u.InputTokens + u.OutputTokens }

// EstimatedCostUSD estimates spend from token totals using the blended
// generator/evaluator rate. A rough figure for dashboards, nothing more.
func (u UsageStats) EstimatedCostUSD() float64 {
	in := float64(u.InputTokens)
	out := float64(u.OutputTokens)

	return in*generatorShare*generatorInputCostPerTok +
		out*generatorShare*generatorOutputCostPerTok +
		in*evaluatorShare*evaluatorInputCostPerTok +
		out*evaluatorShare*evaluatorOutputCostPerTok
}
