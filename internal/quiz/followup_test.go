package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
)

type followupStub struct {
	content string
	err     error
}

func (s *followupStub) Name() string        { return "stub" }
func (s *followupStub) SupportsTools() bool { return false }

func (s *followupStub) Generate(context.Context, llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content}, nil
}

func (s *followupStub) GenerateWithTools(context.Context, llm.Request, []llm.ToolDefinition, string) (*llm.Response, error) {
	return nil, errors.New("stub: no tools")
}

func stalledState(t *testing.T) *domain.SearchState {
	t.Helper()
	intake, err := domain.NewIntake("Acme", []string{"com"}, domain.VibeProfessional)
	require.NoError(t, err)

	state := domain.NewSearchState("client-1", intake)
	state.Round = 6
	state.CheckedDomains = []string{"acme.com", "getacme.com", "acme.io", "acmehq.io"}
	state.AvailableDomains = []string{"acmehq.io"}
	state.Results = []domain.SearchResult{
		{Domain: "acmehq.io", Status: domain.StatusAvailable, Score: 0.7},
	}
	return state
}

func TestFollowupGenerateParsesModelQuestions(t *testing.T) {
	stub := &followupStub{content: `Here you go:
{"questions": [
  {"id": "followup_tld", "type": "single_select", "prompt": "Which ending?", "options": [{"value": "io", "label": ".io"}]},
  {"prompt": "Any new themes?", "type": "text"}
]}`}
	g := NewFollowupGenerator(stub, "", zerolog.Nop())

	followup, err := g.Generate(context.Background(), stalledState(t), 25, 0)
	require.NoError(t, err)
	require.Len(t, followup.Questions, 2)

	assert.Equal(t, "followup_tld", followup.Questions[0].ID)
	assert.Equal(t, TypeSingleSelect, followup.Questions[0].Type)
	require.Len(t, followup.Questions[0].Options, 1)
	assert.Equal(t, ".io", followup.Questions[0].Options[0].Label)

	// Missing id gets the generic fallback.
	assert.Equal(t, "followup", followup.Questions[1].ID)
	assert.Equal(t, TypeText, followup.Questions[1].Type)
}

func TestFollowupGenerateFallsBackOnModelFailure(t *testing.T) {
	stub := &followupStub{err: errors.New("provider down")}
	g := NewFollowupGenerator(stub, "", zerolog.Nop())

	followup, err := g.Generate(context.Background(), stalledState(t), 25, 0)
	require.NoError(t, err)
	require.Len(t, followup.Questions, 3)
	assert.Equal(t, "followup_direction", followup.Questions[0].ID)
}

func TestFollowupGenerateFallsBackOnGarbage(t *testing.T) {
	stub := &followupStub{content: "Sorry, I cannot produce JSON today."}
	g := NewFollowupGenerator(stub, "", zerolog.Nop())

	followup, err := g.Generate(context.Background(), stalledState(t), 25, 0)
	require.NoError(t, err)
	require.Len(t, followup.Questions, 3)
}

func TestFollowupGenerateCapsQuestionCount(t *testing.T) {
	stub := &followupStub{content: `{"questions": [
  {"prompt": "Q1", "type": "text"},
  {"prompt": "Q2", "type": "text"},
  {"prompt": "Q3", "type": "text"},
  {"prompt": "Q4", "type": "text"},
  {"prompt": "Q5", "type": "text"}
]}`}
	g := NewFollowupGenerator(stub, "", zerolog.Nop())

	followup, err := g.Generate(context.Background(), stalledState(t), 25, 0)
	require.NoError(t, err)
	assert.Len(t, followup.Questions, 3)
}

func TestFollowupGenerateContext(t *testing.T) {
	stub := &followupStub{err: errors.New("provider down")}
	g := NewFollowupGenerator(stub, "", zerolog.Nop())

	followup, err := g.Generate(context.Background(), stalledState(t), 25, 0)
	require.NoError(t, err)

	assert.Equal(t, 6, followup.Context["rounds_completed"])
	assert.Equal(t, 4, followup.Context["total_checked"])
	assert.Equal(t, 1, followup.Context["good_found"])
	assert.Equal(t, 25, followup.Context["target"])
	assert.InDelta(t, 0.25, followup.Context["availability_rate"].(float64), 1e-9)
}

func TestFollowupGenerateHonorsMinScore(t *testing.T) {
	stub := &followupStub{err: errors.New("provider down")}
	g := NewFollowupGenerator(stub, "", zerolog.Nop())

	// The lone 0.7-scored result falls below a stricter floor.
	followup, err := g.Generate(context.Background(), stalledState(t), 25, 0.8)
	require.NoError(t, err)
	assert.Equal(t, 0, followup.Context["good_found"])
}

func TestParseFollowupQuestionsSkipsUnknownTypes(t *testing.T) {
	questions := parseFollowupQuestions(`{"questions": [
  {"prompt": "ok", "type": "multi_select"},
  {"prompt": "bad", "type": "slider"},
  {"prompt": "defaulted"}
]}`)

	require.Len(t, questions, 2)
	assert.Equal(t, TypeMultiSelect, questions[0].Type)
	assert.Equal(t, TypeSingleSelect, questions[1].Type)
}

func TestAvailabilityPatterns(t *testing.T) {
	checked := []string{"a.com", "b.com", "c.com", "d.io", "e.io"}
	available := []string{"b.com", "d.io", "e.io"}

	out := availabilityPatterns(checked, available)
	assert.Equal(t, ".com: 1/3 available (33%)\n.io: 2/2 available (100%)", out)

	assert.Equal(t, "No domains checked yet", availabilityPatterns(nil, nil))
}

func TestTakenSummary(t *testing.T) {
	checked := []string{"acme.com", "longbusinessname.com", "open.io"}
	available := []string{"open.io"}

	out := takenSummary(checked, available)
	assert.Contains(t, out, "Short names taken: acme.com")
	assert.Contains(t, out, "Longer names taken: longbusinessname.com")

	assert.Equal(t, "None - all checked domains were available!",
		takenSummary([]string{"open.io"}, []string{"open.io"}))
}
