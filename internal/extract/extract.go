// Package extract recovers structured payloads from model responses.
//
// Models are asked for tool calls, but weaker backends answer with
// free text that merely contains JSON, or with bare domain names. Each
// extractor here runs the same degradation chain: structured tool
// call, then the first JSON object in the text, then a format-specific
// fallback, and finally an empty result. Callers never see a parse
// error from a sloppy response, only fewer items.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
)

var (
	jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)
	domainPattern     = regexp.MustCompile(`\b([a-zA-Z0-9][-a-zA-Z0-9]*\.[a-zA-Z]{2,})\b`)
)

// FirstJSONObject returns the first brace-delimited JSON object found
// in content, or false when none parses.
func FirstJSONObject(content string, out any) bool {
	match := jsonObjectPattern.FindString(content)
	if match == "" {
		return false
	}
	return json.Unmarshal([]byte(match), out) == nil
}

// toolArguments returns the arguments of the first call to the named
// tool, or false when the response carries no such call.
func toolArguments(resp *llm.Response, toolName string, out any) bool {
	for _, tc := range resp.ToolCalls {
		if tc.Name != toolName {
			continue
		}
		if json.Unmarshal(tc.Arguments, out) == nil {
			return true
		}
	}
	return false
}

// Domains extracts candidate domain names from a generation response.
// Invalid entries are dropped, duplicates are collapsed to their first
// occurrence, and every name is lowercased.
func Domains(resp *llm.Response, toolName string, valid func(string) bool) []string {
	var payload struct {
		Domains []string `json:"domains"`
	}

	found := toolArguments(resp, toolName, &payload)
	if !found {
		found = FirstJSONObject(resp.Content, &payload)
	}

	var raw []string
	if found {
		raw = payload.Domains
	}
	if len(raw) == 0 {
		// Last resort: anything in the text that looks like a domain.
		raw = domainPattern.FindAllString(resp.Content, -1)
	}

	seen := make(map[string]struct{}, len(raw))
	domains := make([]string, 0, len(raw))
	for _, d := range raw {
		d = strings.ToLower(strings.TrimSpace(d))
		if !valid(d) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		domains = append(domains, d)
	}
	return domains
}

// EvaluationPayload is the wire shape of a single scored domain inside
// an evaluate_domains tool call or its free-text equivalent.
type EvaluationPayload struct {
	Domain        string   `json:"domain"`
	Score         float64  `json:"score"`
	WorthChecking bool     `json:"worth_checking"`
	Pronounceable bool     `json:"pronounceable"`
	Memorable     bool     `json:"memorable"`
	BrandFit      bool     `json:"brand_fit"`
	EmailFriendly bool     `json:"email_friendly"`
	Flags         []string `json:"flags"`
	Notes         string   `json:"notes"`
}

// Evaluations extracts per-domain evaluations from a scoring response.
// Duplicate domains keep their first evaluation. Domains the model
// skipped are absent; completeness is the caller's concern.
func Evaluations(resp *llm.Response, toolName string) []EvaluationPayload {
	var payload struct {
		Evaluations []EvaluationPayload `json:"evaluations"`
	}

	if !toolArguments(resp, toolName, &payload) {
		FirstJSONObject(resp.Content, &payload)
	}

	seen := make(map[string]struct{}, len(payload.Evaluations))
	evals := make([]EvaluationPayload, 0, len(payload.Evaluations))
	for _, e := range payload.Evaluations {
		e.Domain = strings.ToLower(strings.TrimSpace(e.Domain))
		if e.Domain == "" {
			continue
		}
		if _, dup := seen[e.Domain]; dup {
			continue
		}
		seen[e.Domain] = struct{}{}
		evals = append(evals, e)
	}
	return evals
}

// OptionPayload is one choice of a select-type quiz question.
type OptionPayload struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// QuestionPayload is the wire shape of a follow-up quiz question.
type QuestionPayload struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Prompt   string          `json:"prompt"`
	Required bool            `json:"required"`
	Options  []OptionPayload `json:"options"`
}

// Questions extracts follow-up questions from a quiz-generation
// response. Entries without prompt text are dropped.
func Questions(content string) []QuestionPayload {
	var payload struct {
		Questions []QuestionPayload `json:"questions"`
	}
	if !FirstJSONObject(content, &payload) {
		return nil
	}

	questions := make([]QuestionPayload, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		if strings.TrimSpace(q.Prompt) == "" {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}
