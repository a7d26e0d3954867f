package interfaces

import (
	"context"

	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

// Actions provides read access to the workflows, runs and jobs of one repository.
type Actions interface {
	GetWorkflows(ctx context.Context) ([]*model.Workflow, error)
	GetWorkflow(ctx context.Context, workflowID int64) (*model.Workflow, error)
	// GetCompletedWorkflowRuns stops paging once at least limit runs are fetched,
	// so the result may exceed limit by up to one page.
	GetCompletedWorkflowRuns(ctx context.Context, workflowID int64, branch, event string, limit int) ([]*model.WorkflowRun, error)
	GetRunJobs(ctx context.Context, runID int64) ([]*model.RunJob, error)
}

// AuthService hands out the GitHub API client the Actions implementation
// talks through. An empty token triggers the device flow.
type AuthService interface {
	GetToken(ctx context.Context) (string, error)
	DeviceFlow(ctx context.Context) (string, error)
	GetAuthenticatedClient(ctx context.Context) (*github.Client, error)
}
