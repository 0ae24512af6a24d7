package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/AutumnsGrove/grove-domain-tool/internal/activity"
	"github.com/AutumnsGrove/grove-domain-tool/internal/domain"
	"github.com/AutumnsGrove/grove-domain-tool/internal/quiz"
)

func validSearchRequest() SearchRequest {
	return SearchRequest{
		ClientID: "client-1",
		Intake: domain.Intake{
			BusinessName:   "Acme",
			TLDPreferences: []string{"com"},
			Vibe:           domain.VibeProfessional,
		},
		MaxRounds:         3,
		TargetGoodResults: 5,
	}
}

func pendingState(req SearchRequest) *domain.SearchState {
	state := domain.NewSearchState(req.ClientID, req.Intake)
	state.JobID = "job-fixed"
	return state
}

// roundRunner fakes RunSearchRound: each call appends goodPerRound
// available results and advances the round counter.
func roundRunner(goodPerRound int) func(context.Context, *domain.SearchState) (*activity.RoundOutput, error) {
	return func(_ context.Context, state *domain.SearchState) (*activity.RoundOutput, error) {
		round := state.Round + 1
		for i := 0; i < goodPerRound; i++ {
			state.Results = append(state.Results, domain.SearchResult{
				Domain: "name.com",
				Status: domain.StatusAvailable,
				Score:  0.9,
				Round:  round,
			})
		}
		state.Round = round
		return &activity.RoundOutput{
			State:   state,
			Summary: domain.RoundSummary{Round: round, DomainsAvailable: goodPerRound},
		}, nil
	}
}

func TestTransitionFollowsLifecycle(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}

	t.Run("legal chain", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()

		lifecycleWf := func(ctx workflow.Context) (*domain.SearchState, error) {
			state := domain.NewSearchState("client-1", validSearchRequest().Intake)
			transition(ctx, state, domain.StatusRunning)
			transition(ctx, state, domain.StatusNeedsFollowup)
			transition(ctx, state, domain.StatusRunning)
			transition(ctx, state, domain.StatusComplete)
			return state, nil
		}
		env.ExecuteWorkflow(lifecycleWf)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var state domain.SearchState
		require.NoError(t, env.GetWorkflowResult(&state))
		assert.Equal(t, domain.StatusComplete, state.Status)
		assert.False(t, state.UpdatedAt.IsZero())
	})

	t.Run("illegal move still lands but is logged", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()

		forcedWf := func(ctx workflow.Context) (*domain.SearchState, error) {
			state := domain.NewSearchState("client-1", validSearchRequest().Intake)
			transition(ctx, state, domain.StatusComplete)
			return state, nil
		}
		env.ExecuteWorkflow(forcedWf)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var state domain.SearchState
		require.NoError(t, env.GetWorkflowResult(&state))
		assert.Equal(t, domain.StatusComplete, state.Status)
	})
}

func TestDomainSearchWorkflow(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	var a *activity.Activities

	t.Run("invalid intake fails validation", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		env.ExecuteWorkflow(DomainSearchWorkflow, SearchRequest{ClientID: "client-1"})

		require.True(t, env.IsWorkflowCompleted())
		err := env.GetWorkflowError()
		require.Error(t, err)

		var appErr *temporal.ApplicationError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Validation", appErr.Type())
		assert.True(t, appErr.NonRetryable())
	})

	t.Run("completes once target met", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		req := validSearchRequest()
		env.OnActivity(a.StartSearch, mock.Anything, mock.Anything).
			Return(pendingState(req), nil).Once()
		env.OnActivity(a.RunSearchRound, mock.Anything, mock.Anything).
			Return(roundRunner(5)).Once()

		env.ExecuteWorkflow(DomainSearchWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var out SearchOutput
		require.NoError(t, env.GetWorkflowResult(&out))
		assert.Equal(t, domain.StatusComplete, out.State.Status)
		assert.Equal(t, 1, out.State.Round)
		assert.Nil(t, out.Followup)
	})

	t.Run("exhausted budget produces followup", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		req := validSearchRequest()
		followup := &quiz.Followup{
			Questions: []quiz.Question{{ID: "followup_direction", Prompt: "?"}},
		}
		env.OnActivity(a.StartSearch, mock.Anything, mock.Anything).
			Return(pendingState(req), nil).Once()
		env.OnActivity(a.RunSearchRound, mock.Anything, mock.Anything).
			Return(roundRunner(1)).Times(3)
		env.OnActivity(a.GenerateFollowup, mock.Anything, mock.Anything).
			Return(followup, nil).Once()

		env.ExecuteWorkflow(DomainSearchWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var out SearchOutput
		require.NoError(t, env.GetWorkflowResult(&out))
		assert.Equal(t, domain.StatusNeedsFollowup, out.State.Status)
		assert.Equal(t, 3, out.State.Round)
		require.NotNil(t, out.Followup)
		assert.Equal(t, "followup_direction", out.Followup.Questions[0].ID)
	})

	t.Run("followup failure is best effort", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		req := validSearchRequest()
		env.OnActivity(a.StartSearch, mock.Anything, mock.Anything).
			Return(pendingState(req), nil).Once()
		env.OnActivity(a.RunSearchRound, mock.Anything, mock.Anything).
			Return(roundRunner(1)).Times(3)
		env.OnActivity(a.GenerateFollowup, mock.Anything, mock.Anything).
			Return(nil, temporal.NewNonRetryableApplicationError(
				"quiz generation broken", "Internal", errors.New("boom")))

		env.ExecuteWorkflow(DomainSearchWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var out SearchOutput
		require.NoError(t, env.GetWorkflowResult(&out))
		assert.Equal(t, domain.StatusNeedsFollowup, out.State.Status)
		assert.Nil(t, out.Followup)
	})

	t.Run("round failure returns failed state with partials", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		req := validSearchRequest()
		env.OnActivity(a.StartSearch, mock.Anything, mock.Anything).
			Return(pendingState(req), nil).Once()
		env.OnActivity(a.RunSearchRound, mock.Anything, mock.Anything).
			Return(roundRunner(1)).Once()
		env.OnActivity(a.RunSearchRound, mock.Anything, mock.Anything).
			Return(nil, temporal.NewNonRetryableApplicationError(
				"provider authentication failed", "RunSearchRound", errors.New("401"))).Once()

		env.ExecuteWorkflow(DomainSearchWorkflow, req)

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var out SearchOutput
		require.NoError(t, env.GetWorkflowResult(&out))
		assert.Equal(t, domain.StatusFailed, out.State.Status)
		assert.NotEmpty(t, out.State.Error)
		assert.Equal(t, 1, out.State.Round)
		assert.Len(t, out.State.Results, 1)
	})

	t.Run("start failure errors the workflow", func(t *testing.T) {
		env := testSuite.NewTestWorkflowEnvironment()
		defer env.AssertExpectations(t)

		env.OnActivity(a.StartSearch, mock.Anything, mock.Anything).
			Return(nil, temporal.NewNonRetryableApplicationError(
				"invalid intake", "StartSearch", errors.New("bad"))).Once()

		env.ExecuteWorkflow(DomainSearchWorkflow, validSearchRequest())

		require.True(t, env.IsWorkflowCompleted())
		require.Error(t, env.GetWorkflowError())
	})
}
