package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/extract"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
)

const (
	followupMaxTokens   = 2048
	followupTemperature = 0.7
	maxFollowupCount    = 3
)

const followupSystemPrompt = `You are helping refine a domain search that hasn't found enough good options.

Based on the search results, generate 3 targeted follow-up questions that will help narrow down what the client really wants.

Your questions should:
1. Address specific patterns from the failed search
2. Help clarify trade-offs (e.g., short name vs. .com TLD)
3. Explore new directions based on what's available
4. Be quick to answer (multiple choice preferred)
`

// FollowupGenerator builds a refinement quiz from a stalled search.
// The model writes questions tailored to the observed availability
// patterns; hardcoded defaults cover the case where it produces
// nothing usable.
type FollowupGenerator struct {
	client llm.Client
	model  string
	logger zerolog.Logger
}

// NewFollowupGenerator returns a generator backed by the given client.
func NewFollowupGenerator(client llm.Client, model string, logger zerolog.Logger) *FollowupGenerator {
	return &FollowupGenerator{
		client: client,
		model:  model,
		logger: logger.With().Str("component", "followup").Logger(),
	}
}

// Generate produces a follow-up quiz for the search state. It returns
// at most three questions, falling back to the default set when the
// model call fails or yields no parseable questions. minScore is the
// good-result floor the search ran with; zero or negative falls back
// to the default.
func (g *FollowupGenerator) Generate(
	ctx context.Context,
	state *domain.SearchState,
	target int,
	minScore float64,
) (*Followup, error) {
	if minScore <= 0 {
		minScore = domain.DefaultMinGoodScore
	}
	prompt := buildFollowupPrompt(state, target, minScore)

	questions := defaultFollowupQuestions()
	resp, err := g.client.Generate(ctx, llm.Request{
		Prompt:      prompt,
		System:      followupSystemPrompt,
		Model:       g.model,
		MaxTokens:   followupMaxTokens,
		Temperature: followupTemperature,
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("follow-up generation failed, using defaults")
	} else if parsed := parseFollowupQuestions(resp.Content); len(parsed) > 0 {
		questions = parsed
	}

	if len(questions) > maxFollowupCount {
		questions = questions[:maxFollowupCount]
	}

	checked := len(state.CheckedDomains)
	return &Followup{
		Questions: questions,
		Context: map[string]any{
			"rounds_completed":  state.Round,
			"total_checked":     checked,
			"good_found":        state.GoodCount(minScore),
			"target":            target,
			"availability_rate": float64(len(state.AvailableDomains)) / float64(max(1, checked)),
		},
	}, nil
}

func buildFollowupPrompt(state *domain.SearchState, target int, minScore float64) string {
	intakeJSON, _ := json.MarshalIndent(state.Intake, "", "  ")

	var b strings.Builder
	b.WriteString("Generate a follow-up quiz based on this search:\n\n")
	b.WriteString("## Original Preferences\n")
	b.Write(intakeJSON)
	b.WriteString("\n\n## Search Results\n")
	fmt.Fprintf(&b, "- Rounds completed: %d\n", state.Round)
	fmt.Fprintf(&b, "- Domains checked: %d\n", len(state.CheckedDomains))
	fmt.Fprintf(&b, "- Good options found: %d (target was %d)\n\n",
		state.GoodCount(minScore), target)
	fmt.Fprintf(&b, "## Availability Patterns\n%s\n\n",
		availabilityPatterns(state.CheckedDomains, state.AvailableDomains))
	fmt.Fprintf(&b, "## What Was Taken\n%s\n\n",
		takenSummary(state.CheckedDomains, state.AvailableDomains))
	fmt.Fprintf(&b, "## What Was Available\n%s\n\n",
		availableSummary(state.AvailableDomains))
	b.WriteString(`Generate 3 follow-up questions as JSON:
{"questions": [
  {
    "id": "followup_1",
    "type": "single_select",
    "prompt": "Question text",
    "options": [{"value": "opt1", "label": "Option 1"}, ...]
  },
  ...
]}

Focus on the specific trade-offs and patterns from this search.
`)
	return b.String()
}

// availabilityPatterns reports per-TLD hit rates, busiest TLDs first,
// capped at five lines.
func availabilityPatterns(checked, available []string) string {
	if len(checked) == 0 {
		return "No domains checked yet"
	}

	availableSet := lowerSet(available)
	type stat struct {
		checked, available int
	}
	stats := make(map[string]*stat)
	for _, d := range checked {
		tld := domain.TLDOf(d)
		if stats[tld] == nil {
			stats[tld] = &stat{}
		}
		stats[tld].checked++
		if _, ok := availableSet[strings.ToLower(d)]; ok {
			stats[tld].available++
		}
	}

	tlds := make([]string, 0, len(stats))
	for tld := range stats {
		tlds = append(tlds, tld)
	}
	sort.Slice(tlds, func(i, j int) bool {
		if stats[tlds[i]].checked != stats[tlds[j]].checked {
			return stats[tlds[i]].checked > stats[tlds[j]].checked
		}
		return tlds[i] < tlds[j]
	})
	if len(tlds) > 5 {
		tlds = tlds[:5]
	}

	lines := make([]string, len(tlds))
	for i, tld := range tlds {
		s := stats[tld]
		rate := float64(s.available) / float64(max(1, s.checked)) * 100
		lines[i] = fmt.Sprintf(".%s: %d/%d available (%.0f%%)", tld, s.available, s.checked, rate)
	}
	return strings.Join(lines, "\n")
}

func takenSummary(checked, available []string) string {
	availableSet := lowerSet(available)

	var short, long []string
	for _, d := range checked {
		if _, ok := availableSet[strings.ToLower(d)]; ok {
			continue
		}
		name, _, _ := strings.Cut(d, ".")
		if len(name) <= 8 {
			short = append(short, d)
		} else {
			long = append(long, d)
		}
	}

	if len(short) == 0 && len(long) == 0 {
		return "None - all checked domains were available!"
	}

	var parts []string
	if len(short) > 0 {
		parts = append(parts, "Short names taken: "+strings.Join(capList(short, 5), ", "))
	}
	if len(long) > 0 {
		parts = append(parts, "Longer names taken: "+strings.Join(capList(long, 5), ", "))
	}
	return strings.Join(parts, "\n")
}

func availableSummary(available []string) string {
	if len(available) == 0 {
		return "None found yet"
	}

	byTLD := make(map[string][]string)
	for _, d := range available {
		tld := domain.TLDOf(d)
		byTLD[tld] = append(byTLD[tld], d)
	}

	tlds := make([]string, 0, len(byTLD))
	for tld := range byTLD {
		tlds = append(tlds, tld)
	}
	sort.Slice(tlds, func(i, j int) bool {
		if len(byTLD[tlds[i]]) != len(byTLD[tlds[j]]) {
			return len(byTLD[tlds[i]]) > len(byTLD[tlds[j]])
		}
		return tlds[i] < tlds[j]
	})
	if len(tlds) > 4 {
		tlds = tlds[:4]
	}

	lines := make([]string, len(tlds))
	for i, tld := range tlds {
		lines[i] = fmt.Sprintf(".%s: %s", tld, strings.Join(capList(byTLD[tld], 3), ", "))
	}
	return strings.Join(lines, "\n")
}

func parseFollowupQuestions(content string) []Question {
	payloads := extract.Questions(content)
	questions := make([]Question, 0, len(payloads))
	for _, p := range payloads {
		qType := QuestionType(p.Type)
		switch qType {
		case TypeText, TypeSingleSelect, TypeMultiSelect:
		case "":
			qType = TypeSingleSelect
		default:
			continue
		}

		id := p.ID
		if id == "" {
			id = "followup"
		}
		options := make([]Option, len(p.Options))
		for i, o := range p.Options {
			options[i] = Option{Value: o.Value, Label: o.Label}
		}
		questions = append(questions, Question{
			ID:       id,
			Type:     qType,
			Prompt:   p.Prompt,
			Required: p.Required,
			Options:  options,
		})
	}
	return questions
}

func defaultFollowupQuestions() []Question {
	return []Question{
		{
			ID:     "followup_direction",
			Type:   TypeSingleSelect,
			Prompt: "Your preferred name wasn't available. What would you like to try?",
			Options: []Option{
				{Value: "variation", Label: "Try variations of the same name"},
				{Value: "different_tld", Label: "Try different domain endings (.co, .io, etc.)"},
				{Value: "new_name", Label: "Explore completely different names"},
			},
		},
		{
			ID:     "followup_length",
			Type:   TypeSingleSelect,
			Prompt: "Short names are mostly taken. What's your preference?",
			Options: []Option{
				{Value: "keep_short", Label: "Keep trying for short names"},
				{Value: "longer_ok", Label: "Longer, more descriptive names are fine"},
				{Value: "compound", Label: "Try compound words or phrases"},
			},
		},
		{
			ID:          "followup_keywords",
			Type:        TypeText,
			Prompt:      "Any new keywords or themes to explore?",
			Placeholder: "e.g., local, artisan, modern",
		},
	}
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
