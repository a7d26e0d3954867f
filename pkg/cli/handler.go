package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"github.com/m-mizutani/octastat/pkg/usecase"
	"github.com/urfave/cli/v3"
)

type report struct {
	stats     *model.WorkflowStats
	jobsStats []*model.JobStats
	files     []string
}

func RunReport(ctx context.Context, cmd *cli.Command) error {
	logLevel := logLevelOf(cmd)
	ctx = ctxlog.With(ctx, newLogger(logLevel))

	config := ConfigFromCommand(cmd)
	if config.WorkflowID == 0 {
		return goerr.Wrap(domain.ErrConfiguration, "workflow ID is required, use --workflow (run `octastat workflows` to list them)")
	}

	repo, err := resolveRepository(ctx, config.Repository)
	if err != nil {
		return err
	}

	hookConfig, err := loadHookConfig(ctx, config.ConfigPath)
	if err != nil {
		return err
	}
	hooks := usecase.NewHookExecutor(hookConfig)
	defer hooks.WaitForCompletion()

	event := model.ReportEvent{
		Repository: repo.FullName(),
		WorkflowID: config.WorkflowID,
		OutputDir:  config.OutputDir,
	}

	result, err := generateReport(ctx, config, *repo, logLevel > slog.LevelInfo)
	if err != nil {
		event.Type = model.HookReportFailure
		event.Error = err.Error()
		_ = hooks.Execute(ctx, event)
		return err
	}

	NewSummaryPrinter(os.Stdout).Print(result.stats, result.jobsStats, result.files)

	event.Type = model.HookReportSuccess
	event.Workflow = result.stats.Workflow.Name
	event.Files = result.files
	return hooks.Execute(ctx, event)
}

func generateReport(ctx context.Context, config *Config, repo model.Repository, showProgress bool) (*report, error) {
	client, err := usecase.NewAuthService("", config.Token).GetAuthenticatedClient(ctx)
	if err != nil {
		return nil, err
	}
	actions := newActions(client, repo, config)
	reportConfig := config.ToReportConfig()

	if showProgress {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Prefix = "⏳ "
		s.Suffix = fmt.Sprintf(" Fetching runs of workflow %d...", reportConfig.WorkflowID)
		s.Start()
		defer s.Stop()
	}

	builder := usecase.NewStatsBuilder(repo.FullName(), actions)
	stats, err := builder.GetWorkflowStats(ctx, reportConfig.WorkflowID, reportConfig.Branch, reportConfig.Event, reportConfig.Limit)
	if err != nil {
		return nil, err
	}
	jobsStats := usecase.BuildJobsStats(stats)

	renderer := usecase.NewStatsRenderer(reportConfig.TemplateDir, reportConfig.OutputDir, usecase.NewTemplateCache())
	files, err := renderReports(ctx, renderer, stats, jobsStats)
	if err != nil {
		return nil, err
	}

	return &report{
		stats:     stats,
		jobsStats: jobsStats,
		files:     files,
	}, nil
}

func renderReports(ctx context.Context, renderer interfaces.StatsRenderer, stats *model.WorkflowStats, jobsStats []*model.JobStats) ([]string, error) {
	workflowFile, err := renderer.RenderWorkflowStats(ctx, stats)
	if err != nil {
		return nil, err
	}

	runsFile, err := renderer.RenderWorkflowRunsStats(ctx, stats)
	if err != nil {
		return nil, err
	}

	jobFiles, err := renderer.RenderJobStats(ctx, jobsStats)
	if err != nil {
		return nil, err
	}

	return append([]string{workflowFile, runsFile}, jobFiles...), nil
}

func RunWorkflows(ctx context.Context, cmd *cli.Command) error {
	ctx = ctxlog.With(ctx, newLogger(logLevelOf(cmd)))
	config := ConfigFromCommand(cmd)

	repo, err := resolveRepository(ctx, config.Repository)
	if err != nil {
		return err
	}

	client, err := usecase.NewAuthService("", config.Token).GetAuthenticatedClient(ctx)
	if err != nil {
		return err
	}

	workflows, err := newActions(client, *repo, config).GetWorkflows(ctx)
	if err != nil {
		return err
	}

	NewSummaryPrinter(os.Stdout).PrintWorkflows(repo.FullName(), workflows)
	return nil
}

func newActions(client *github.Client, repo model.Repository, config *Config) interfaces.Actions {
	actions := usecase.NewRestActions(client, repo)
	if config.NoCache {
		return actions
	}
	return usecase.NewCachingActions(actions, config.ToActionsConfig(repo))
}

// resolveRepository parses name, or detects the repository of the working
// directory when name is empty.
func resolveRepository(ctx context.Context, name string) (*model.Repository, error) {
	if name != "" {
		repo, err := model.ParseRepository(name)
		if err != nil {
			return nil, domain.ErrConfiguration.Wrap(err)
		}
		return &repo, nil
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}

	repo, err := usecase.DetectRepository(ctx, currentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository info: %w\nPlease run this command in a Git repository with GitHub remote or use --repository", err)
	}
	return repo, nil
}

// loadHookConfig loads the config at path, else the first config file of the
// working directory, else the default config.
func loadHookConfig(ctx context.Context, path string) (*model.Config, error) {
	service := usecase.NewConfigService()
	logger := ctxlog.From(ctx)

	if path != "" {
		logger.Debug("loading config", slog.String("path", path))
		return service.Load(path)
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}

	config, found, err := service.LoadFromDirectory(currentDir)
	if err != nil {
		return nil, err
	}
	if found != "" {
		logger.Debug("loaded config", slog.String("path", found))
		return config, nil
	}

	return service.LoadDefault()
}
