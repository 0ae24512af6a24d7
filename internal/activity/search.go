// Package activity exposes the search engine's round pipeline as
// Temporal activities. Each activity takes the serializable SearchState
// as input and returns the updated state, so the workflow stays
// deterministic while all I/O happens here.
package activity

import (
	"context"
	"errors"

	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/llm/llmerrors"
	"github.com/AutumnsGrove/grove-domain-tool/internal/quiz"
	"github.com/AutumnsGrove/grove-domain-tool/internal/search"
)

// Activities holds the engine dependencies injected at worker startup.
type Activities struct {
	orchestrator *search.Orchestrator
}

// NewActivities creates an Activities instance around the orchestrator.
func NewActivities(orchestrator *search.Orchestrator) *Activities {
	return &Activities{orchestrator: orchestrator}
}

// StartSearchInput begins a search for a client.
type StartSearchInput struct {
	ClientID string        `json:"client_id"`
	Intake   domain.Intake `json:"intake"`
}

// StartSearch validates the intake and creates the pending state. IDs
// and timestamps are assigned here so the workflow never needs a
// non-deterministic call.
func (a *Activities) StartSearch(_ context.Context, input StartSearchInput) (*domain.SearchState, error) {
	state, err := a.orchestrator.StartSearch(input.ClientID, input.Intake)
	if err != nil {
		return nil, nonRetryable("StartSearch", err, "invalid intake")
	}
	return state, nil
}

// RoundOutput carries the mutated state and the round's statistics.
type RoundOutput struct {
	State   *domain.SearchState `json:"state"`
	Summary domain.RoundSummary `json:"summary"`
}

// RunSearchRound executes one generate-evaluate-verify-aggregate pass.
// Missing intake is non-retryable; authentication failures are
// non-retryable; everything else from upstream may be retried, and a
// retry is safe because the state input is re-sent unchanged.
func (a *Activities) RunSearchRound(ctx context.Context, state *domain.SearchState) (*RoundOutput, error) {
	if state == nil {
		return nil, nonRetryable("RunSearchRound", ErrMissingState, "nil state")
	}

	summary, err := a.orchestrator.RunRound(ctx, state)
	if err != nil {
		if errors.Is(err, domain.ErrMissingIntake) {
			return nil, nonRetryable("RunSearchRound", err, "state has no intake")
		}
		var authErr *llmerrors.AuthenticationError
		if errors.As(err, &authErr) {
			return nil, nonRetryable("RunSearchRound", err, "provider authentication failed")
		}
		return nil, retryable("RunSearchRound", err, "round execution failed")
	}

	return &RoundOutput{State: state, Summary: summary}, nil
}

// GenerateFollowup builds the refinement quiz for a stalled search.
// The generator degrades to default questions internally, so a failure
// here is a genuine infrastructure problem and retryable.
func (a *Activities) GenerateFollowup(ctx context.Context, state *domain.SearchState) (*quiz.Followup, error) {
	if state == nil {
		return nil, nonRetryable("GenerateFollowup", ErrMissingState, "nil state")
	}

	followup, err := a.orchestrator.GenerateFollowup(ctx, state)
	if err != nil {
		if errors.Is(err, domain.ErrMissingIntake) {
			return nil, nonRetryable("GenerateFollowup", err, "state has no intake")
		}
		return nil, retryable("GenerateFollowup", err, "follow-up generation failed")
	}
	return followup, nil
}
