// Package workflow orchestrates domain searches as Temporal workflows.
// The workflow owns the deterministic round loop and the status state
// machine; all model, registry, and pricing I/O lives in activities
// that take the serializable SearchState in and out.
package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/AutumnsGrove/grove-domain-tool/internal/activity"
	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/quiz"
)

const (
	defaultMaxRounds = 6
	defaultTarget    = 25

	roundTimeout     = 30 * time.Minute
	startTimeout     = 10 * time.Second
	followupTimeout  = 2 * time.Minute
	heartbeatTimeout = 5 * time.Minute
)

// SearchRequest starts a domain search.
type SearchRequest struct {
	ClientID string        `json:"client_id"`
	Intake   domain.Intake `json:"intake"`

	// MaxRounds caps the round budget; zero uses the default.
	MaxRounds int `json:"max_rounds,omitempty"`

	// TargetGoodResults stops the loop early once met; zero uses the
	// default.
	TargetGoodResults int `json:"target_good_results,omitempty"`

	// MinGoodScore is the score floor for a good result; zero uses the
	// default.
	MinGoodScore float64 `json:"min_good_score,omitempty"`
}

// SearchOutput is the workflow result: the terminal state plus the
// refinement quiz when the search stalled below target.
type SearchOutput struct {
	State    *domain.SearchState `json:"state"`
	Followup *quiz.Followup      `json:"followup,omitempty"`
}

// DomainSearchWorkflow runs the round loop until the target is met or
// the budget is exhausted. A failed round flips the state to failed
// and returns the partial results rather than erroring the workflow;
// only invalid input fails the execution itself.
func DomainSearchWorkflow(ctx workflow.Context, req SearchRequest) (*SearchOutput, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "domain-search.v", workflow.DefaultVersion, currentVersion)

	if err := req.Intake.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError("invalid search request", "Validation", err)
	}

	maxRounds := req.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	target := req.TargetGoodResults
	if target <= 0 {
		target = defaultTarget
	}
	minScore := req.MinGoodScore
	if minScore <= 0 {
		minScore = domain.DefaultMinGoodScore
	}

	logger := workflow.GetLogger(ctx)

	var a *activity.Activities

	startCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: startTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	var state *domain.SearchState
	err := workflow.ExecuteActivity(startCtx, a.StartSearch, activity.StartSearchInput{
		ClientID: req.ClientID,
		Intake:   req.Intake,
	}).Get(ctx, &state)
	if err != nil {
		return nil, err
	}

	roundCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: roundTimeout,
		HeartbeatTimeout:    heartbeatTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    3,
		},
	})

	transition(ctx, state, domain.StatusRunning)

	for state.Round < maxRounds {
		// The target is checked only between rounds; a round that
		// overshoots it still runs to completion.
		if state.GoodCount(minScore) >= target {
			break
		}

		var out activity.RoundOutput
		if err := workflow.ExecuteActivity(roundCtx, a.RunSearchRound, state).Get(ctx, &out); err != nil {
			logger.Error("search round failed", "round", state.Round+1, "error", err)
			state.Error = err.Error()
			transition(ctx, state, domain.StatusFailed)
			return &SearchOutput{State: state}, nil
		}
		state = out.State

		logger.Info("round complete",
			"round", out.Summary.Round,
			"generated", out.Summary.CandidatesGenerated,
			"available", out.Summary.DomainsAvailable,
			"good_total", state.GoodCount(minScore))
	}

	if state.GoodCount(minScore) >= target {
		transition(ctx, state, domain.StatusComplete)
		return &SearchOutput{State: state}, nil
	}
	transition(ctx, state, domain.StatusNeedsFollowup)

	// Best effort: a search without followup questions is still a
	// valid result.
	followupCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: followupTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	var followup *quiz.Followup
	if err := workflow.ExecuteActivity(followupCtx, a.GenerateFollowup, state).Get(ctx, &followup); err != nil {
		logger.Warn("follow-up generation failed", "error", err)
	}

	return &SearchOutput{State: state, Followup: followup}, nil
}

// transition applies a status change inside the workflow, keeping the
// lifecycle state machine authoritative. The timestamp comes from
// workflow.Now so replays stay deterministic.
func transition(ctx workflow.Context, state *domain.SearchState, next domain.SearchStatus) {
	if err := state.TransitionTo(next); err != nil {
		workflow.GetLogger(ctx).Error("illegal search transition forced",
			"from", state.Status, "to", next, "error", err)
		state.Status = next
	}
	state.UpdatedAt = workflow.Now(ctx).UTC()
}
