package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBranch   = "master"
	DefaultEvent    = "push"
	DefaultRunLimit = 250

	// Job lists are fetched with a small fan-out to stay within GitHub API limits.
	defaultFetchConcurrency = 4
)

type StatsBuilder struct {
	repository  string
	actions     interfaces.Actions
	concurrency int
}

type StatsBuilderOption func(*StatsBuilder)

// WithConcurrency sets how many job lists are fetched at the same time.
func WithConcurrency(n int) StatsBuilderOption {
	return func(b *StatsBuilder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

func NewStatsBuilder(repository string, actions interfaces.Actions, opts ...StatsBuilderOption) *StatsBuilder {
	b := &StatsBuilder{
		repository:  repository,
		actions:     actions,
		concurrency: defaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetWorkflowStats fetches the completed runs of a workflow and their jobs and
// aggregates them. A run whose jobs cannot be fetched or reduced is left out of
// RunStats; a run with an unrecognized conclusion fails the whole call.
func (b *StatsBuilder) GetWorkflowStats(ctx context.Context, workflowID int64, branch, event string, limit int) (*model.WorkflowStats, error) {
	branch, event, limit = applyRunDefaults(branch, event, limit)

	workflow, err := b.actions.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if workflow == nil {
		return nil, goerr.Wrap(domain.ErrWorkflowNotFound, "no workflow returned", goerr.V("workflow_id", workflowID))
	}

	runs, err := b.actions.GetCompletedWorkflowRuns(ctx, workflowID, branch, event, limit)
	if err != nil {
		return nil, err
	}

	conclusions, err := countRunConclusions(runs)
	if err != nil {
		return nil, err
	}

	runStats := b.calculateRunStats(ctx, runs)

	ctxlog.From(ctx).Info("calculated workflow stats",
		slog.Int64("workflow_id", workflowID),
		slog.String("branch", branch),
		slog.String("event", event),
		slog.Int("runs", len(runs)),
		slog.Int("run_stats", len(runStats)),
	)

	return &model.WorkflowStats{
		Repository:      b.repository,
		Workflow:        workflow,
		Conclusions:     conclusions,
		JobsConclusions: aggregateJobsConclusions(runStats),
		RunStats:        runStats,
		Runs:            runs,
	}, nil
}

// GetJobsStats groups the runs of a workflow by job name.
func (b *StatsBuilder) GetJobsStats(ctx context.Context, workflowID int64, branch, event string, limit int) ([]*model.JobStats, error) {
	stats, err := b.GetWorkflowStats(ctx, workflowID, branch, event, limit)
	if err != nil {
		return nil, err
	}
	return BuildJobsStats(stats), nil
}

// BuildJobsStats derives per job name statistics from workflow stats. Names are
// ordered by first appearance. A run without the job is skipped, and when a run
// has several jobs with the name the last one is used.
func BuildJobsStats(stats *model.WorkflowStats) []*model.JobStats {
	var names []string
	seen := make(map[string]bool)
	for _, runStats := range stats.RunStats {
		for _, job := range runStats.Jobs {
			if !seen[job.Name] {
				seen[job.Name] = true
				names = append(names, job.Name)
			}
		}
	}

	jobsStats := make([]*model.JobStats, 0, len(names))
	for _, name := range names {
		jobStats := &model.JobStats{
			Name:     name,
			Workflow: stats.Workflow,
		}
		for _, runStats := range stats.RunStats {
			if job := lastJobNamed(runStats.Jobs, name); job != nil {
				jobStats.Runs = append(jobStats.Runs, model.JobRun{Run: runStats.Run, Job: job})
			}
		}
		jobsStats = append(jobsStats, jobStats)
	}
	return jobsStats
}

func lastJobNamed(jobs []*model.RunJob, name string) *model.RunJob {
	for i := len(jobs) - 1; i >= 0; i-- {
		if jobs[i].Name == name {
			return jobs[i]
		}
	}
	return nil
}

func applyRunDefaults(branch, event string, limit int) (string, string, int) {
	if branch == "" {
		branch = DefaultBranch
	}
	if event == "" {
		event = DefaultEvent
	}
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	return branch, event, limit
}

func countRunConclusions(runs []*model.WorkflowRun) (model.ConclusionStats, error) {
	var stats model.ConclusionStats
	for _, run := range runs {
		stats.Count++

		switch run.Conclusion {
		case model.ConclusionSuccess:
			stats.Success++
		case model.ConclusionFailure:
			stats.Failure++
		case model.ConclusionCancelled:
			stats.Cancelled++
		default:
			return model.ConclusionStats{}, goerr.Wrap(domain.ErrUnknownConclusion, "run has unexpected conclusion",
				goerr.V("run_id", run.ID),
				goerr.V("conclusion", string(run.Conclusion)),
			)
		}
	}
	return stats, nil
}

// calculateRunStats waits for every run to settle and keeps the successful
// results in input order.
func (b *StatsBuilder) calculateRunStats(ctx context.Context, runs []*model.WorkflowRun) []*model.RunStats {
	logger := ctxlog.From(ctx)
	results := make([]*model.RunStats, len(runs))

	var eg errgroup.Group
	eg.SetLimit(b.concurrency)
	for i, run := range runs {
		eg.Go(func() error {
			stats, err := b.getRunJobsStats(ctx, run)
			if err != nil {
				logger.Warn("rejected run stats",
					slog.Int64("run_id", run.ID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = stats
			return nil
		})
	}
	_ = eg.Wait()

	runStats := make([]*model.RunStats, 0, len(results))
	for _, stats := range results {
		if stats != nil {
			runStats = append(runStats, stats)
		}
	}
	return runStats
}

func (b *StatsBuilder) getRunJobsStats(ctx context.Context, run *model.WorkflowRun) (*model.RunStats, error) {
	jobs, err := b.actions.GetRunJobs(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return CalculateRunJobsStats(run, jobs)
}

// CalculateRunJobsStats reduces the jobs of a run. An empty job list is invalid.
func CalculateRunJobsStats(run *model.WorkflowRun, jobs []*model.RunJob) (*model.RunStats, error) {
	if len(jobs) == 0 {
		return nil, goerr.Wrap(domain.ErrInvalidRun, "empty jobs list", goerr.V("run_id", run.ID))
	}

	firstStarted := selectJob(jobs, jobStartedAt, time.Time.Before)
	lastStarted := selectJob(jobs, jobStartedAt, time.Time.After)
	firstCompleted := selectJob(jobs, jobCompletedAt, time.Time.Before)
	lastCompleted := selectJob(jobs, jobCompletedAt, time.Time.After)

	conclusion := run.Conclusion
	if conclusion == "" {
		conclusion = model.ConclusionUnknown
	}

	return &model.RunStats{
		Run:              run,
		Jobs:             jobs,
		FirstStarted:     firstStarted,
		LastStarted:      lastStarted,
		FirstCompleted:   firstCompleted,
		LastCompleted:    lastCompleted,
		QueuedTime:       DurationBetween(run.Created(), firstStarted.StartedAt),
		CompletionTime:   DurationBetween(run.Created(), lastCompleted.CompletedAt),
		Conclusion:       conclusion,
		Conclusions:      buildJobsConclusionsMap(jobs),
		ConclusionsStats: calculateJobsConclusionsStats(jobs),
	}, nil
}

func jobStartedAt(job *model.RunJob) *time.Time   { return job.StartedAt }
func jobCompletedAt(job *model.RunJob) *time.Time { return job.CompletedAt }

// selectJob folds over jobs keeping the current pick unless a candidate's
// timestamp strictly wins, so ties go to the earlier job in the list. A job
// without the timestamp never wins against one that has it.
func selectJob(jobs []*model.RunJob, timestamp func(*model.RunJob) *time.Time, wins func(candidate, current time.Time) bool) *model.RunJob {
	selected := jobs[0]
	for _, candidate := range jobs[1:] {
		candidateTime := timestamp(candidate)
		if candidateTime == nil {
			continue
		}
		selectedTime := timestamp(selected)
		if selectedTime == nil || wins(*candidateTime, *selectedTime) {
			selected = candidate
		}
	}
	return selected
}

func buildJobsConclusionsMap(jobs []*model.RunJob) map[string]model.Conclusion {
	conclusions := make(map[string]model.Conclusion, len(jobs))
	for _, job := range jobs {
		conclusions[job.Name] = job.Conclusion
	}
	return conclusions
}

func calculateJobsConclusionsStats(jobs []*model.RunJob) model.ConclusionStats {
	stats := model.ConclusionStats{Count: len(jobs)}
	for _, job := range jobs {
		switch job.Conclusion {
		case model.ConclusionSuccess:
			stats.Success++
		case model.ConclusionFailure:
			stats.Failure++
		case model.ConclusionCancelled:
			stats.Cancelled++
		case model.ConclusionSkipped:
			stats.Skipped++
		case model.ConclusionTimedOut:
			stats.TimedOut++
		case model.ConclusionNeutral:
			stats.Neutral++
		}
	}
	return stats
}

// aggregateJobsConclusions counts, per job name, the runs containing the job
// and the conclusion the job had in each of them. Neutral and missing
// conclusions only increase Count.
func aggregateJobsConclusions(runStats []*model.RunStats) map[string]*model.ConclusionStats {
	jobsConclusions := make(map[string]*model.ConclusionStats)
	for _, stats := range runStats {
		for name, conclusion := range stats.Conclusions {
			jobStats, ok := jobsConclusions[name]
			if !ok {
				jobStats = &model.ConclusionStats{}
				jobsConclusions[name] = jobStats
			}

			jobStats.Count++
			switch conclusion {
			case model.ConclusionSuccess:
				jobStats.Success++
			case model.ConclusionFailure:
				jobStats.Failure++
			case model.ConclusionSkipped:
				jobStats.Skipped++
			case model.ConclusionCancelled:
				jobStats.Cancelled++
			case model.ConclusionTimedOut:
				jobStats.TimedOut++
			}
		}
	}
	return jobsConclusions
}
