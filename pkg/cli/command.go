package cli

import (
	"github.com/urfave/cli/v3"
)

// NewCommand builds the root command. Its flags are inherited by the
// subcommands, so "octastat report -w 1" and "octastat -w 1" are equivalent.
func NewCommand() *cli.Command {
	flags := append(DefineGlobalFlags(), DefineReportFlags()...)

	return &cli.Command{
		Name:    "octastat",
		Usage:   "GitHub Actions workflow statistics reporter",
		Version: "0.1.0",
		Description: `octastat fetches the completed runs of a GitHub Actions workflow and their
jobs, aggregates conclusion and duration statistics and renders them as HTML reports.

By default, it reports on the repository of the current directory.
Use -r/--repository to specify a different repository and -w/--workflow to pick
the workflow. Run "octastat templates init" first to get the default templates.`,
		Flags:  flags,
		Action: RunReport,
		Commands: []*cli.Command{
			NewReportCommand(),
			NewWorkflowsCommand(),
			NewConfigCommand(),
			NewTemplatesCommand(),
		},
	}
}

func NewReportCommand() *cli.Command {
	return &cli.Command{
		Name:   "report",
		Usage:  "Render workflow, runs and job reports",
		Action: RunReport,
	}
}

func NewWorkflowsCommand() *cli.Command {
	return &cli.Command{
		Name:   "workflows",
		Usage:  "List workflows of the repository",
		Action: RunWorkflows,
	}
}
