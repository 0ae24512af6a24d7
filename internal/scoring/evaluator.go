// Package scoring evaluates domain candidates for quality. A fast
// model scores candidates in concurrent chunks; a deterministic
// heuristic guarantees every candidate gets a score even when the
// model fails or skips entries.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/extract"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
)

const (
	// DefaultChunkSize is how many domains go into one evaluation call.
	DefaultChunkSize = 10
	// DefaultMaxConcurrent caps in-flight evaluation calls.
	DefaultMaxConcurrent = 12

	evaluateMaxTokens   = 2048
	evaluateTemperature = 0.3
)

const evaluateSystemPrompt = `You are a domain name evaluator. Your job is to quickly assess domain names for quality.

Score each domain on these criteria:
1. **Pronounceability** (0-1): Can it be easily said aloud? No awkward letter combinations?
2. **Memorability** (0-1): Will people remember it after hearing once?
3. **Brand fit** (0-1): Does it sound professional and trustworthy?
4. **Email-ability** (0-1): Would this make a good email address? Easy to spell over phone?

Also flag potential issues:
- Unfortunate spellings or meanings in other languages
- Possible trademark conflicts with major brands
- Awkward pronunciation or letter combinations
- Too similar to existing popular sites

Output format: JSON with evaluations array.
`

// Evaluator fans candidate chunks out to a fast model.
type Evaluator struct {
	client        llm.Client
	model         string
	chunkSize     int
	maxConcurrent int
	logger        zerolog.Logger
}

// NewEvaluator returns an Evaluator. Non-positive chunkSize or
// maxConcurrent fall back to the defaults.
func NewEvaluator(client llm.Client, model string, chunkSize, maxConcurrent int, logger zerolog.Logger) *Evaluator {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Evaluator{
		client:        client,
		model:         model,
		chunkSize:     chunkSize,
		maxConcurrent: maxConcurrent,
		logger:        logger.With().Str("component", "evaluator").Logger(),
	}
}

// Evaluate scores every candidate and returns exactly one evaluation
// per input domain. Chunks run concurrently; a chunk that fails or a
// domain the model skips falls back to the heuristic score, so the
// result is always complete and the call never returns an error from
// a flaky model.
func (e *Evaluator) Evaluate(
	ctx context.Context,
	candidates []domain.Candidate,
	intake *domain.Intake,
) ([]domain.Evaluation, llm.Usage, error) {
	if len(candidates) == 0 {
		return nil, llm.Usage{}, nil
	}

	var chunks [][]domain.Candidate
	for i := 0; i < len(candidates); i += e.chunkSize {
		end := min(i+e.chunkSize, len(candidates))
		chunks = append(chunks, candidates[i:end])
	}

	var mu sync.Mutex
	var usage llm.Usage
	results := make([][]domain.Evaluation, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)
	for i, chunk := range chunks {
		g.Go(func() error {
			evals, chunkUsage, err := e.evaluateChunk(gctx, chunk, intake)
			if err != nil {
				e.logger.Warn().Err(err).Int("chunk", i).
					Msg("chunk evaluation failed, using heuristic scores")
				evals = heuristicAll(chunk)
			}
			mu.Lock()
			results[i] = evals
			usage.InputTokens += chunkUsage.InputTokens
			usage.OutputTokens += chunkUsage.OutputTokens
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, usage, err
	}

	var all []domain.Evaluation
	for _, evals := range results {
		all = append(all, evals...)
	}
	return all, usage, nil
}

func (e *Evaluator) evaluateChunk(
	ctx context.Context,
	chunk []domain.Candidate,
	intake *domain.Intake,
) ([]domain.Evaluation, llm.Usage, error) {
	req := llm.Request{
		Prompt:      buildEvaluatePrompt(chunk, intake),
		System:      evaluateSystemPrompt,
		Model:       e.model,
		MaxTokens:   evaluateMaxTokens,
		Temperature: evaluateTemperature,
	}

	tool := llm.EvaluationTool

	var resp *llm.Response
	var err error
	if e.client.SupportsTools() {
		resp, err = e.client.GenerateWithTools(ctx, req, []llm.ToolDefinition{tool}, tool.Name)
		if err != nil {
			resp, err = e.client.Generate(ctx, req)
		}
	} else {
		resp, err = e.client.Generate(ctx, req)
	}
	if err != nil {
		return nil, llm.Usage{}, err
	}

	payloads := extract.Evaluations(resp, tool.Name)
	byDomain := make(map[string]domain.Evaluation, len(payloads))
	for _, p := range payloads {
		byDomain[p.Domain] = domain.Evaluation{
			Domain:        p.Domain,
			Score:         domain.ClampScore(p.Score),
			WorthChecking: p.WorthChecking,
			Pronounceable: p.Pronounceable,
			Memorable:     p.Memorable,
			BrandFit:      p.BrandFit,
			EmailFriendly: p.EmailFriendly,
			Flags:         p.Flags,
			Notes:         p.Notes,
		}
	}

	// One evaluation per candidate, in input order. Skipped domains
	// get the heuristic score.
	evals := make([]domain.Evaluation, 0, len(chunk))
	for _, c := range chunk {
		if eval, ok := byDomain[c.Key()]; ok {
			evals = append(evals, eval)
		} else {
			evals = append(evals, QuickEvaluate(c.Domain))
		}
	}
	return evals, resp.Usage, nil
}

func buildEvaluatePrompt(chunk []domain.Candidate, intake *domain.Intake) string {
	var b strings.Builder
	b.WriteString("Evaluate these domain names for the client:\n\n")
	fmt.Fprintf(&b, "**Client Vibe**: %s\n", intake.Vibe)
	fmt.Fprintf(&b, "**Business Type**: %s\n\n", intake.BusinessName)
	b.WriteString("**Domains to evaluate**:\n")
	for _, c := range chunk {
		fmt.Fprintf(&b, "- %s\n", c.Domain)
	}
	b.WriteString(`
For each domain, provide:
- score: Overall quality score 0-1 (average of criteria)
- worth_checking: boolean - should we check availability?
- pronounceable: boolean
- memorable: boolean
- brand_fit: boolean
- email_friendly: boolean
- flags: array of any concerns
- notes: brief explanation

Output as JSON:
{"evaluations": [
  {"domain": "example.com", "score": 0.85, "worth_checking": true, "pronounceable": true, "memorable": true, "brand_fit": true, "email_friendly": true, "flags": [], "notes": "Short, classic .com"},
  ...
]}
`)
	return b.String()
}

func heuristicAll(chunk []domain.Candidate) []domain.Evaluation {
	evals := make([]domain.Evaluation, len(chunk))
	for i, c := range chunk {
		evals[i] = QuickEvaluate(c.Domain)
	}
	return evals
}

// FilterWorthChecking keeps evaluations that are both flagged worth
// checking and score at least minScore.
func FilterWorthChecking(evals []domain.Evaluation, minScore float64) []domain.Evaluation {
	kept := make([]domain.Evaluation, 0, len(evals))
	for _, e := range evals {
		if e.WorthChecking && e.Score >= minScore {
			kept = append(kept, e)
		}
	}
	return kept
}

// Rank orders evaluations by score, highest first. Ties keep their
// input order.
func Rank(evals []domain.Evaluation) []domain.Evaluation {
	ranked := make([]domain.Evaluation, len(evals))
	copy(ranked, evals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
