// Package worker assembles the search engine and registers it with a
// Temporal worker.
package worker

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/AutumnsGrove/grove-domain-tool/internal/configuration"
	"github.com/AutumnsGrove/grove-domain-tool/internal/generation"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm/providers"
	"github.com/AutumnsGrove/grove-domain-tool/internal/pricing"
	"github.com/AutumnsGrove/grove-domain-tool/internal/quiz"
	"github.com/AutumnsGrove/grove-domain-tool/internal/rdap"
	"github.com/AutumnsGrove/grove-domain-tool/internal/scoring"
	"github.com/AutumnsGrove/grove-domain-tool/internal/search"
)

// BuildOrchestrator wires every engine component from configuration:
// one capable model for generation and follow-ups, one fast model for
// evaluation, the RDAP checker, and the registrar pricing oracle when
// credentials are configured.
func BuildOrchestrator(cfg *configuration.Config, logger zerolog.Logger) (*search.Orchestrator, error) {
	genClient, err := providers.New(cfg.Models.GeneratorProvider, providers.Config{
		APIKey:       cfg.Models.GeneratorAPIKey,
		DefaultModel: cfg.Models.GeneratorModel,
		AccountID:    cfg.Models.CloudflareAccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("generator provider: %w", err)
	}

	evalClient, err := providers.New(cfg.Models.EvaluatorProvider, providers.Config{
		APIKey:       cfg.Models.EvaluatorAPIKey,
		DefaultModel: cfg.Models.EvaluatorModel,
		AccountID:    cfg.Models.CloudflareAccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("evaluator provider: %w", err)
	}

	generator := generation.NewGenerator(genClient, cfg.Models.GeneratorModel, logger)
	evaluator := scoring.NewEvaluator(
		evalClient, cfg.Models.EvaluatorModel,
		cfg.RateLimit.ChunkSize, cfg.RateLimit.MaxConcurrentAI, logger)
	checker := rdap.NewChecker(logger, rdap.WithDelay(cfg.RateLimit.RDAPDelay))
	followup := quiz.NewFollowupGenerator(genClient, cfg.Models.GeneratorModel, logger)

	var pricer pricing.Oracle = pricing.Disabled{}
	if cfg.Pricing.Endpoint != "" {
		registrar, err := pricing.NewRegistrarClient(
			cfg.Pricing.Endpoint, cfg.Pricing.Username, cfg.Pricing.Password,
			cfg.Pricing.Thresholds(), logger)
		if err != nil {
			return nil, fmt.Errorf("pricing registrar: %w", err)
		}
		pricer = registrar
	}

	return search.NewOrchestrator(
		generator, evaluator, checker, pricer, followup, cfg.Search, logger), nil
}
