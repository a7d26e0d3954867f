package cli

import (
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"github.com/m-mizutani/octastat/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const (
	defaultCacheDir    = ".octastat-cache"
	defaultTemplateDir = "./templates"
	defaultOutputDir   = "./output"
)

type Config struct {
	Token       string
	Repository  string
	ConfigPath  string
	CacheDir    string
	NoCache     bool
	WorkflowID  int64
	Branch      string
	Event       string
	Limit       int
	TemplateDir string
	OutputDir   string
}

func NewConfig() *Config {
	return &Config{
		CacheDir:    defaultCacheDir,
		Branch:      usecase.DefaultBranch,
		Event:       usecase.DefaultEvent,
		Limit:       usecase.DefaultRunLimit,
		TemplateDir: defaultTemplateDir,
		OutputDir:   defaultOutputDir,
	}
}

// ConfigFromCommand collects flag values of cmd and its parents.
func ConfigFromCommand(cmd *cli.Command) *Config {
	return &Config{
		Token:       cmd.String("token"),
		Repository:  cmd.String("repository"),
		ConfigPath:  cmd.String("config"),
		CacheDir:    cmd.String("cache-dir"),
		NoCache:     cmd.Bool("no-cache"),
		WorkflowID:  cmd.Int64("workflow"),
		Branch:      cmd.String("branch"),
		Event:       cmd.String("event"),
		Limit:       cmd.Int("limit"),
		TemplateDir: cmd.String("template-dir"),
		OutputDir:   cmd.String("output-dir"),
	}
}

func (c *Config) ToActionsConfig(repo model.Repository) model.ActionsConfig {
	return model.ActionsConfig{
		Repo:              repo,
		CacheDir:          c.CacheDir,
		CacheWorkflows:    !c.NoCache,
		CacheWorkflowRuns: !c.NoCache,
		CacheRunJobs:      !c.NoCache,
	}
}

func (c *Config) ToReportConfig() model.ReportConfig {
	return model.ReportConfig{
		WorkflowID:  c.WorkflowID,
		Branch:      c.Branch,
		Event:       c.Event,
		Limit:       c.Limit,
		TemplateDir: c.TemplateDir,
		OutputDir:   c.OutputDir,
	}
}

// DefineGlobalFlags returns flags shared by every command
func DefineGlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "GitHub token. The stored token or the device flow is used when empty",
			Sources: cli.EnvVars("GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "repository",
			Aliases: []string{"r"},
			Usage:   "Repository in owner/name format. Detected from the git origin remote when empty",
			Sources: cli.EnvVars("OCTASTAT_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to config file",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Directory for cached API responses",
			Value: defaultCacheDir,
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Always fetch from the GitHub API",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable verbose logging",
			Value: false,
		},
	}
}

// DefineReportFlags returns flags of the report command
func DefineReportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:    "workflow",
			Aliases: []string{"w"},
			Usage:   "Workflow ID to report on, as listed by the workflows command",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b"},
			Usage:   "Branch of the workflow runs",
			Value:   usecase.DefaultBranch,
		},
		&cli.StringFlag{
			Name:    "event",
			Aliases: []string{"e"},
			Usage:   "Event that triggered the workflow runs",
			Value:   usecase.DefaultEvent,
		},
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of runs to fetch, rounded up to whole pages",
			Value:   usecase.DefaultRunLimit,
		},
		&cli.StringFlag{
			Name:  "template-dir",
			Usage: "Directory containing the report templates",
			Value: defaultTemplateDir,
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory the reports are written to",
			Value: defaultOutputDir,
		},
	}
}
