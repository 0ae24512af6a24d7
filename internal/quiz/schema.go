// Package quiz defines the client intake questionnaire and generates
// follow-up quizzes when a search stalls short of its target.
package quiz

import (
	"fmt"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
)

// QuestionType distinguishes free-text from select questions.
type QuestionType string

const (
	TypeText         QuestionType = "text"
	TypeSingleSelect QuestionType = "single_select"
	TypeMultiSelect  QuestionType = "multi_select"
)

// Option is one choice of a select-type question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Question is a single quiz question, static or generated.
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt"`
	Required    bool         `json:"required"`
	Placeholder string       `json:"placeholder,omitempty"`
	Options     []Option     `json:"options,omitempty"`
	Default     any          `json:"default,omitempty"`
}

// Responses maps question IDs to answers: string for text and
// single_select, []string for multi_select.
type Responses map[string]any

// Followup is a dynamically generated quiz with the search context
// that produced it.
type Followup struct {
	Questions []Question     `json:"questions"`
	Context   map[string]any `json:"context"`
}

// InitialSchema is the static intake quiz presented before a search.
func InitialSchema() []Question {
	return []Question{
		{
			ID:          "business_name",
			Type:        TypeText,
			Prompt:      "Business or project name",
			Required:    true,
			Placeholder: "e.g., Sunrise Bakery",
		},
		{
			ID:          "domain_idea",
			Type:        TypeText,
			Prompt:      "Domain in mind?",
			Placeholder: "e.g., sunrisebakery.com",
		},
		{
			ID:       "tld_preference",
			Type:     TypeMultiSelect,
			Prompt:   "Preferred endings",
			Required: true,
			Options: []Option{
				{Value: "com", Label: ".com (most recognized)"},
				{Value: "co", Label: ".co (modern alternative)"},
				{Value: "io", Label: ".io (tech-focused)"},
				{Value: "dev", Label: ".dev (developer-focused)"},
				{Value: "app", Label: ".app (application-focused)"},
				{Value: "me", Label: ".me (personal brand)"},
				{Value: "any", Label: "Open to anything"},
			},
			Default: []string{"com", "any"},
		},
		{
			ID:       "vibe",
			Type:     TypeSingleSelect,
			Prompt:   "What vibe fits your brand?",
			Required: true,
			Options: []Option{
				{Value: "professional", Label: "Professional & trustworthy"},
				{Value: "creative", Label: "Creative & playful"},
				{Value: "minimal", Label: "Minimal & modern"},
				{Value: "bold", Label: "Bold & memorable"},
				{Value: "personal", Label: "Personal & approachable"},
			},
			Default: "professional",
		},
		{
			ID:          "keywords",
			Type:        TypeText,
			Prompt:      "Keywords or themes",
			Placeholder: "e.g., nature, tech, local, artisan",
		},
	}
}

// ValidateResponses checks responses against the initial schema and
// returns every violation, not just the first.
func ValidateResponses(responses Responses) []string {
	var errs []string

	for _, q := range InitialSchema() {
		value, present := responses[q.ID]
		if q.Required && (!present || isEmpty(value)) {
			errs = append(errs, fmt.Sprintf("%q is required", q.Prompt))
			continue
		}
		if !present || isEmpty(value) {
			continue
		}

		switch q.Type {
		case TypeSingleSelect:
			s, ok := value.(string)
			if !ok || !validOption(q.Options, s) {
				errs = append(errs, fmt.Sprintf("invalid value for %q: %v", q.Prompt, value))
			}
		case TypeMultiSelect:
			values, ok := toStringSlice(value)
			if !ok {
				errs = append(errs, fmt.Sprintf("%q must be a list", q.Prompt))
				continue
			}
			for _, v := range values {
				if !validOption(q.Options, v) {
					errs = append(errs, fmt.Sprintf("invalid value for %q: %v", q.Prompt, v))
				}
			}
		}
	}
	return errs
}

// IntakeFromResponses builds a validated Intake from quiz answers.
func IntakeFromResponses(responses Responses) (*domain.Intake, error) {
	if errs := ValidateResponses(responses); len(errs) > 0 {
		return nil, fmt.Errorf("invalid quiz responses: %v", errs)
	}

	name, _ := responses["business_name"].(string)
	idea, _ := responses["domain_idea"].(string)
	vibe, _ := responses["vibe"].(string)
	keywords, _ := responses["keywords"].(string)
	tlds, _ := toStringSlice(responses["tld_preference"])

	intake, err := domain.NewIntake(name, tlds, domain.Vibe(vibe))
	if err != nil {
		return nil, err
	}
	intake.DomainIdea = idea
	intake.Keywords = keywords
	return &intake, nil
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}

func validOption(options []Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func toStringSlice(v any) ([]string, bool) {
	switch vals := v.(type) {
	case []string:
		return vals, true
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
