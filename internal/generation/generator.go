// Package generation produces domain name candidates from an LLM,
// steering each round with the accumulated history of what has already
// been tried and what proved available.
package generation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/extract"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
)

const (
	generateMaxTokens   = 4096
	generateTemperature = 0.8
)

// Generator asks a capable model for candidate domains, one batch per
// round. Structured tool calls are preferred; free-text JSON is the
// fallback for backends that cannot or will not use the tool.
type Generator struct {
	client llm.Client
	model  string
	logger zerolog.Logger
}

// NewGenerator returns a Generator backed by the given client. An
// empty model uses the provider's default.
func NewGenerator(client llm.Client, model string, logger zerolog.Logger) *Generator {
	return &Generator{
		client: client,
		model:  model,
		logger: logger.With().Str("component", "generator").Logger(),
	}
}

// Generate requests count candidates for the given round. Candidates
// already present in history are filtered out, and the result is
// capped at count. A model that volunteers nothing usable yields an
// empty slice, not an error.
func (g *Generator) Generate(
	ctx context.Context,
	intake *domain.Intake,
	history *RoundHistory,
	round, count, maxRounds int,
) ([]domain.Candidate, llm.Usage, error) {
	req := llm.Request{
		Prompt:      buildPrompt(intake, history, round, count, maxRounds),
		System:      systemPrompt,
		Model:       g.model,
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
	}

	tool := llm.CandidateTool

	var resp *llm.Response
	var err error
	if g.client.SupportsTools() {
		resp, err = g.client.GenerateWithTools(ctx, req, []llm.ToolDefinition{tool}, tool.Name)
		if err != nil {
			g.logger.Warn().Err(err).Int("round", round).
				Msg("tool call failed, falling back to plain prompt")
			resp, err = g.client.Generate(ctx, req)
		}
	} else {
		resp, err = g.client.Generate(ctx, req)
	}
	if err != nil {
		return nil, llm.Usage{}, err
	}

	names := extract.Domains(resp, tool.Name, domain.IsValidDomain)

	checked := make(map[string]struct{})
	if history != nil {
		for _, d := range history.Checked {
			checked[strings.ToLower(d)] = struct{}{}
		}
	}

	candidates := make([]domain.Candidate, 0, len(names))
	for _, name := range names {
		if _, seen := checked[name]; seen {
			continue
		}
		candidates = append(candidates, domain.Candidate{Domain: name, Round: round})
		if len(candidates) == count {
			break
		}
	}

	g.logger.Debug().Int("round", round).Int("candidates", len(candidates)).
		Int("raw", len(names)).Msg("generated candidates")

	return candidates, resp.Usage, nil
}
