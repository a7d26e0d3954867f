package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

const perPage = 100

// RestActions reads workflow data from the GitHub REST API.
type RestActions struct {
	client *github.Client
	repo   model.Repository
}

func NewRestActions(client *github.Client, repo model.Repository) interfaces.Actions {
	return &RestActions{
		client: client,
		repo:   repo,
	}
}

func (r *RestActions) GetWorkflows(ctx context.Context) ([]*model.Workflow, error) {
	logger := ctxlog.From(ctx)
	logger.Info("fetching repository workflows", slog.String("repo", r.repo.FullName()))

	opts := &github.ListOptions{PerPage: perPage}
	var workflows []*model.Workflow
	for {
		page, resp, err := r.client.Actions.ListWorkflows(ctx, r.repo.Owner, r.repo.Name, opts)
		if err != nil {
			return nil, domain.ErrAPIRequest.Wrap(err)
		}
		for _, workflow := range page.Workflows {
			workflows = append(workflows, convertWorkflow(workflow))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return workflows, nil
}

func (r *RestActions) GetWorkflow(ctx context.Context, workflowID int64) (*model.Workflow, error) {
	workflows, err := r.GetWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	return findWorkflow(workflows, workflowID)
}

func (r *RestActions) GetCompletedWorkflowRuns(ctx context.Context, workflowID int64, branch, event string, limit int) ([]*model.WorkflowRun, error) {
	logger := ctxlog.From(ctx)
	logger.Info("fetching workflow runs",
		slog.String("repo", r.repo.FullName()),
		slog.Int64("workflow_id", workflowID),
		slog.String("branch", branch),
		slog.String("event", event),
		slog.Int("limit", limit),
	)

	opts := &github.ListWorkflowRunsOptions{
		Branch: branch,
		Event:  event,
		Status: "completed",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var runs []*model.WorkflowRun
	for {
		page, resp, err := r.client.Actions.ListWorkflowRunsByID(ctx, r.repo.Owner, r.repo.Name, workflowID, opts)
		if err != nil {
			return nil, domain.ErrAPIRequest.Wrap(err)
		}
		for _, run := range page.WorkflowRuns {
			runs = append(runs, convertWorkflowRun(run))
		}
		// The limit is checked per page, the last page is kept whole.
		if len(runs) >= limit || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logger.Debug("fetched workflow runs",
		slog.Int64("workflow_id", workflowID),
		slog.Int("count", len(runs)),
	)

	return runs, nil
}

func (r *RestActions) GetRunJobs(ctx context.Context, runID int64) ([]*model.RunJob, error) {
	logger := ctxlog.From(ctx)
	logger.Info("fetching run jobs",
		slog.String("repo", r.repo.FullName()),
		slog.Int64("run_id", runID),
	)

	opts := &github.ListWorkflowJobsOptions{
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var jobs []*model.RunJob
	for {
		page, resp, err := r.client.Actions.ListWorkflowJobs(ctx, r.repo.Owner, r.repo.Name, runID, opts)
		if err != nil {
			return nil, domain.ErrAPIRequest.Wrap(err)
		}
		for _, job := range page.Jobs {
			jobs = append(jobs, convertRunJob(job))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return jobs, nil
}

func findWorkflow(workflows []*model.Workflow, workflowID int64) (*model.Workflow, error) {
	for _, workflow := range workflows {
		if workflow.ID == workflowID {
			return workflow, nil
		}
	}
	return nil, goerr.Wrap(domain.ErrWorkflowNotFound, "no such workflow in repository", goerr.V("workflow_id", workflowID))
}

func convertWorkflow(w *github.Workflow) *model.Workflow {
	return &model.Workflow{
		ID:        w.GetID(),
		Name:      w.GetName(),
		Path:      w.GetPath(),
		State:     w.GetState(),
		HTMLURL:   w.GetHTMLURL(),
		BadgeURL:  w.GetBadgeURL(),
		CreatedAt: w.GetCreatedAt().Time,
		UpdatedAt: w.GetUpdatedAt().Time,
	}
}

func convertWorkflowRun(run *github.WorkflowRun) *model.WorkflowRun {
	return &model.WorkflowRun{
		ID:           run.GetID(),
		Name:         run.GetName(),
		WorkflowID:   run.GetWorkflowID(),
		RunNumber:    run.GetRunNumber(),
		RunAttempt:   run.GetRunAttempt(),
		HeadBranch:   run.GetHeadBranch(),
		HeadSHA:      run.GetHeadSHA(),
		Event:        run.GetEvent(),
		Status:       run.GetStatus(),
		Conclusion:   model.Conclusion(run.GetConclusion()),
		HTMLURL:      run.GetHTMLURL(),
		CreatedAt:    run.GetCreatedAt().Time,
		UpdatedAt:    run.GetUpdatedAt().Time,
		RunStartedAt: timestampPtr(run.RunStartedAt),
	}
}

func convertRunJob(job *github.WorkflowJob) *model.RunJob {
	return &model.RunJob{
		ID:          job.GetID(),
		RunID:       job.GetRunID(),
		Name:        job.GetName(),
		Status:      job.GetStatus(),
		Conclusion:  model.Conclusion(job.GetConclusion()),
		StartedAt:   timestampPtr(job.StartedAt),
		CompletedAt: timestampPtr(job.CompletedAt),
		HTMLURL:     job.GetHTMLURL(),
		RunnerName:  job.GetRunnerName(),
		Labels:      job.Labels,
	}
}

func timestampPtr(ts *github.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
