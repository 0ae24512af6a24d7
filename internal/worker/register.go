package worker

import (
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/AutumnsGrove/grove-domain-tool/internal/activity"
	"github.com/AutumnsGrove/grove-domain-tool/internal/search"
	"github.com/AutumnsGrove/grove-domain-tool/internal/workflow"
)

// RegisterAll registers the search workflow and its activities. Must
// be called once during worker startup, before the worker runs.
func RegisterAll(w sdkworker.Worker, orchestrator *search.Orchestrator) {
	activities := activity.NewActivities(orchestrator)

	w.RegisterWorkflow(workflow.DomainSearchWorkflow)

	w.RegisterActivity(activities.StartSearch)
	w.RegisterActivity(activities.RunSearchRound)
	w.RegisterActivity(activities.GenerateFollowup)
}
