package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
)

// stubClient provides controllable model behavior for evaluator tests.
type stubClient struct {
	failAll      bool
	supportsTool bool
	score        float64
	skipDomains  map[string]bool
	calls        int
}

func (s *stubClient) Name() string        { return "stub" }
func (s *stubClient) SupportsTools() bool { return s.supportsTool }

func (s *stubClient) Generate(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.calls++
	if s.failAll {
		return nil, errors.New("stub: provider down")
	}
	return &llm.Response{
		Content: s.evaluationsFor(req.Prompt),
		Usage:   llm.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

func (s *stubClient) GenerateWithTools(ctx context.Context, req llm.Request, tools []llm.ToolDefinition, _ string) (*llm.Response, error) {
	s.calls++
	if s.failAll {
		return nil, errors.New("stub: provider down")
	}
	return &llm.Response{
		ToolCalls: []llm.ToolCall{{Name: tools[0].Name, Arguments: []byte(s.evaluationsFor(req.Prompt))}},
		Usage:     llm.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

// evaluationsFor scores every bulleted domain in the prompt except the
// configured skips.
func (s *stubClient) evaluationsFor(prompt string) string {
	var evals []map[string]any
	for _, line := range strings.Split(prompt, "\n") {
		name, ok := strings.CutPrefix(strings.TrimSpace(line), "- ")
		if !ok {
			continue
		}
		if s.skipDomains[name] {
			continue
		}
		evals = append(evals, map[string]any{
			"domain":         name,
			"score":          s.score,
			"worth_checking": true,
		})
	}
	payload, _ := json.Marshal(map[string]any{"evaluations": evals})
	return string(payload)
}

func candidates(n int) []domain.Candidate {
	out := make([]domain.Candidate, n)
	for i := range out {
		out[i] = domain.Candidate{Domain: fmt.Sprintf("name%d.com", i), Round: 1}
	}
	return out
}

func testIntake() *domain.Intake {
	return &domain.Intake{
		BusinessName:   "Acme",
		TLDPreferences: []string{"com"},
		Vibe:           domain.VibeProfessional,
	}
}

func TestEvaluateEmptyInput(t *testing.T) {
	e := NewEvaluator(&stubClient{}, "", 5, 2, zerolog.Nop())

	evals, usage, err := e.Evaluate(context.Background(), nil, testIntake())
	require.NoError(t, err)
	assert.Empty(t, evals)
	assert.Zero(t, usage.InputTokens)
	assert.Zero(t, usage.OutputTokens)
}

func TestEvaluateCompleteness(t *testing.T) {
	client := &stubClient{supportsTool: true, score: 0.7}
	e := NewEvaluator(client, "", 5, 2, zerolog.Nop())

	input := candidates(13)
	evals, usage, err := e.Evaluate(context.Background(), input, testIntake())
	require.NoError(t, err)
	require.Len(t, evals, 13)

	seen := map[string]int{}
	for _, eval := range evals {
		seen[strings.ToLower(eval.Domain)]++
	}
	for _, c := range input {
		assert.Equal(t, 1, seen[c.Key()], c.Domain)
	}
	// 13 domains at chunk size 5 is three calls.
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, int64(30), usage.InputTokens)
}

func TestEvaluateAllChunksFailFallsBackToHeuristic(t *testing.T) {
	client := &stubClient{failAll: true, supportsTool: true}
	e := NewEvaluator(client, "", 5, 2, zerolog.Nop())

	input := candidates(15)
	evals, _, err := e.Evaluate(context.Background(), input, testIntake())
	require.NoError(t, err)
	require.Len(t, evals, 15)

	for i, eval := range evals {
		expected := QuickEvaluate(input[i].Domain)
		assert.Equal(t, expected, eval)
	}
}

func TestEvaluateSkippedDomainGetsHeuristicScore(t *testing.T) {
	client := &stubClient{
		supportsTool: true,
		score:        0.9,
		skipDomains:  map[string]bool{"name2.com": true},
	}
	e := NewEvaluator(client, "", 10, 2, zerolog.Nop())

	input := candidates(4)
	evals, _, err := e.Evaluate(context.Background(), input, testIntake())
	require.NoError(t, err)
	require.Len(t, evals, 4)

	assert.InDelta(t, 0.9, evals[0].Score, 1e-9)
	assert.Equal(t, QuickEvaluate("name2.com"), evals[2])
}

func TestEvaluateClampsScores(t *testing.T) {
	client := &stubClient{supportsTool: true, score: 3.5}
	e := NewEvaluator(client, "", 10, 2, zerolog.Nop())

	evals, _, err := e.Evaluate(context.Background(), candidates(2), testIntake())
	require.NoError(t, err)
	for _, eval := range evals {
		assert.LessOrEqual(t, eval.Score, 1.0)
		assert.GreaterOrEqual(t, eval.Score, 0.0)
	}
}

func TestFilterWorthChecking(t *testing.T) {
	evals := []domain.Evaluation{
		{Domain: "a.com", Score: 0.8, WorthChecking: true},
		{Domain: "b.com", Score: 0.4, WorthChecking: true},
		{Domain: "c.com", Score: 0.9, WorthChecking: false},
		{Domain: "d.com", Score: 0.3, WorthChecking: true},
	}

	kept := FilterWorthChecking(evals, 0.4)
	require.Len(t, kept, 2)
	assert.Equal(t, "a.com", kept[0].Domain)
	assert.Equal(t, "b.com", kept[1].Domain)
}

func TestRankSortsDescending(t *testing.T) {
	evals := []domain.Evaluation{
		{Domain: "a.com", Score: 0.2},
		{Domain: "b.com", Score: 0.9},
		{Domain: "c.com", Score: 0.5},
		{Domain: "d.com", Score: 0.9},
	}

	ranked := Rank(evals)
	require.Len(t, ranked, 4)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	// Stable: b.com keeps its position ahead of the tied d.com.
	assert.Equal(t, "b.com", ranked[0].Domain)
	assert.Equal(t, "d.com", ranked[1].Domain)

	// Input untouched.
	assert.Equal(t, "a.com", evals[0].Domain)
}
