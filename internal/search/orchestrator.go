// Package search drives the round loop. An Orchestrator owns one
// SearchState at a time and runs the pipeline: generate candidates,
// evaluate them, check availability on the survivors, price the
// available ones, fold everything back into the state. Termination is
// decided only at round boundaries.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/AutumnsGrove/grove-domain-tool/internal/aggregation"
	"github.com/AutumnsGrove/grove-domain-tool/internal/configuration"
	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/generation"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm"
	"github.com/AutumnsGrove/grove-domain-tool/internal/pricing"
	"github.com/AutumnsGrove/grove-domain-tool/internal/quiz"
	"github.com/AutumnsGrove/grove-domain-tool/internal/scoring"
)

// CandidateGenerator produces one round's worth of candidates.
type CandidateGenerator interface {
	Generate(ctx context.Context, intake *domain.Intake, history *generation.RoundHistory,
		round, count, maxRounds int) ([]domain.Candidate, llm.Usage, error)
}

// CandidateEvaluator scores candidates, one evaluation per input.
type CandidateEvaluator interface {
	Evaluate(ctx context.Context, candidates []domain.Candidate,
		intake *domain.Intake) ([]domain.Evaluation, llm.Usage, error)
}

// AvailabilityChecker resolves registration status for a batch of
// domains, returning one record per input.
type AvailabilityChecker interface {
	CheckAll(ctx context.Context, domains []string) []domain.AvailabilityRecord
}

// FollowupGenerator builds a refinement quiz from a stalled search.
type FollowupGenerator interface {
	Generate(ctx context.Context, state *domain.SearchState, target int, minScore float64) (*quiz.Followup, error)
}

// Orchestrator coordinates one search at a time. It is not safe for
// concurrent use against the same SearchState; rounds run strictly in
// sequence.
type Orchestrator struct {
	generator CandidateGenerator
	evaluator CandidateEvaluator
	checker   AvailabilityChecker
	pricer    pricing.Oracle
	followup  FollowupGenerator
	cfg       configuration.Search
	logger    zerolog.Logger
}

// NewOrchestrator wires the pipeline together.
func NewOrchestrator(
	generator CandidateGenerator,
	evaluator CandidateEvaluator,
	checker AvailabilityChecker,
	pricer pricing.Oracle,
	followup FollowupGenerator,
	cfg configuration.Search,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		evaluator: evaluator,
		checker:   checker,
		pricer:    pricer,
		followup:  followup,
		cfg:       cfg,
		logger:    logger.With().Str("component", "orchestrator").Logger(),
	}
}

// StartSearch creates a pending state for the intake.
func (o *Orchestrator) StartSearch(clientID string, intake domain.Intake) (*domain.SearchState, error) {
	if err := intake.Validate(); err != nil {
		return nil, err
	}
	return domain.NewSearchState(clientID, intake), nil
}

// Run executes the round loop until the good-result target is met, the
// round budget runs out, or a round fails. Calling Run on a terminal
// state returns it unchanged. A needs_followup state resumes, which
// only makes progress when maxRounds exceeds the rounds already run.
// maxRounds of zero or less uses the configured maximum.
func (o *Orchestrator) Run(ctx context.Context, state *domain.SearchState, maxRounds int) *domain.SearchState {
	if state.Status.IsTerminal() {
		return state
	}
	if maxRounds <= 0 {
		maxRounds = o.cfg.MaxRounds
	}

	if err := state.TransitionTo(domain.StatusRunning); err != nil {
		o.fail(state, err)
		return state
	}

	for state.Round < maxRounds {
		// Target check happens only here, between rounds. A round that
		// overshoots the target still runs to completion.
		if state.GoodCount(o.cfg.MinGoodScore) >= o.cfg.TargetGoodResults {
			break
		}

		summary, err := o.RunRound(ctx, state)
		if err != nil {
			o.fail(state, err)
			return state
		}
		o.logger.Info().
			Str("job_id", state.JobID).
			Int("round", summary.Round).
			Int("generated", summary.CandidatesGenerated).
			Int("available", summary.DomainsAvailable).
			Int("new_good", summary.NewGoodResults).
			Dur("duration", summary.Duration).
			Msg("round complete")
	}

	next := domain.StatusNeedsFollowup
	if state.GoodCount(o.cfg.MinGoodScore) >= o.cfg.TargetGoodResults {
		next = domain.StatusComplete
	}
	if err := state.TransitionTo(next); err != nil {
		o.fail(state, err)
	}
	return state
}

// RunRound executes one generate-evaluate-verify-aggregate pass and
// advances the round counter. It requires intake answers on the state
// and fails before any network activity when they are missing.
func (o *Orchestrator) RunRound(ctx context.Context, state *domain.SearchState) (domain.RoundSummary, error) {
	if state.Intake == nil {
		return domain.RoundSummary{}, domain.ErrMissingIntake
	}

	start := time.Now()
	round := state.Round + 1
	history := generation.HistoryFromState(state, o.cfg.TargetGoodResults)

	// A failed generation call still completes the round with zero
	// candidates; only the surrounding machinery can fail a search.
	candidates, genUsage, err := o.generator.Generate(
		ctx, state.Intake, history, round, o.cfg.CandidatesPerRound, o.cfg.MaxRounds)
	if err != nil {
		o.logger.Warn().Err(err).Int("round", round).
			Msg("candidate generation failed, continuing with empty round")
		candidates = nil
	}
	state.Usage.Add(domain.UsageStats{InputTokens: genUsage.InputTokens, OutputTokens: genUsage.OutputTokens})

	evals, evalUsage, err := o.evaluator.Evaluate(ctx, candidates, state.Intake)
	if err != nil {
		return domain.RoundSummary{}, fmt.Errorf("evaluate round %d: %w", round, err)
	}
	state.Usage.Add(domain.UsageStats{InputTokens: evalUsage.InputTokens, OutputTokens: evalUsage.OutputTokens})

	worth := scoring.FilterWorthChecking(evals, o.cfg.MinGoodScore)
	toCheck := make([]string, len(worth))
	for i, e := range worth {
		toCheck[i] = e.Domain
	}

	records := o.checker.CheckAll(ctx, toCheck)

	var available []string
	for _, rec := range records {
		if rec.Status == domain.StatusAvailable {
			available = append(available, rec.Domain)
		}
	}

	// Pricing is optional; a failed oracle leaves categories unknown.
	quotes := map[string]domain.PriceQuote{}
	if len(available) > 0 && o.pricer != nil {
		if priced, err := o.pricer.BatchPrice(ctx, available); err != nil {
			o.logger.Warn().Err(err).Int("round", round).Msg("pricing failed, categories unknown")
		} else {
			quotes = priced
		}
	}

	goodBefore := state.GoodCount(o.cfg.MinGoodScore)
	aggregation.ApplyRound(state, round, evals, records, quotes)
	state.Round = round
	state.Touch()

	return domain.RoundSummary{
		Round:               round,
		CandidatesGenerated: len(candidates),
		CandidatesEvaluated: len(evals),
		DomainsChecked:      len(records),
		DomainsAvailable:    len(available),
		NewGoodResults:      state.GoodCount(o.cfg.MinGoodScore) - goodBefore,
		Duration:            time.Since(start),
	}, nil
}

// GenerateFollowup builds refinement questions for a search that
// stalled below its target.
func (o *Orchestrator) GenerateFollowup(ctx context.Context, state *domain.SearchState) (*quiz.Followup, error) {
	if state.Intake == nil {
		return nil, domain.ErrMissingIntake
	}
	return o.followup.Generate(ctx, state, o.cfg.TargetGoodResults, o.cfg.MinGoodScore)
}

// RankedResults returns the best available results, at most limit.
func (o *Orchestrator) RankedResults(state *domain.SearchState, limit int) []domain.SearchResult {
	return aggregation.Ranked(state.Results, limit)
}

func (o *Orchestrator) fail(state *domain.SearchState, err error) {
	o.logger.Error().Err(err).Str("job_id", state.JobID).Msg("search failed")
	state.Error = err.Error()
	state.Status = domain.StatusFailed
	state.Touch()
}
