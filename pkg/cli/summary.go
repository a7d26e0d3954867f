package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"github.com/m-mizutani/octastat/pkg/usecase"
)

// SummaryPrinter writes a short, coloured overview of a report to a terminal
type SummaryPrinter struct {
	w io.Writer
}

func NewSummaryPrinter(w io.Writer) *SummaryPrinter {
	return &SummaryPrinter{w: w}
}

func (p *SummaryPrinter) Print(stats *model.WorkflowStats, jobsStats []*model.JobStats, files []string) {
	bold := color.New(color.Bold)

	bold.Fprintf(p.w, "\n📊 %s / %s\n", stats.Repository, stats.Workflow.Name)
	fmt.Fprintf(p.w, "Runs: %d (%d with job data)\n", stats.Conclusions.Count, len(stats.RunStats))
	if stats.Conclusions.Count > 0 {
		fmt.Fprintf(p.w, "Conclusions: %s\n", conclusionColor(stats.Conclusions).Sprint(usecase.FormatConclusions(stats.Conclusions)))
	}

	if len(jobsStats) > 0 {
		bold.Fprintf(p.w, "\nJobs\n")
		for _, job := range jobsStats {
			jobConclusions, ok := stats.JobsConclusions[job.Name]
			if !ok || jobConclusions.Count == 0 {
				continue
			}
			fmt.Fprintf(p.w, "  %s %s\n", job.Name, conclusionColor(*jobConclusions).Sprint(usecase.FormatConclusions(*jobConclusions)))
		}
	}

	if len(files) > 0 {
		bold.Fprintf(p.w, "\nFiles\n")
		for _, file := range files {
			fmt.Fprintf(p.w, "  %s\n", color.New(color.FgCyan).Sprint(file))
		}
	}
}

func (p *SummaryPrinter) PrintWorkflows(repository string, workflows []*model.Workflow) {
	color.New(color.Bold).Fprintf(p.w, "Workflows of %s\n", repository)
	for _, workflow := range workflows {
		stateColor := color.New(color.FgGreen)
		if workflow.State != "active" {
			stateColor = color.New(color.FgYellow)
		}
		fmt.Fprintf(p.w, "  %d  %s %s %s\n",
			workflow.ID,
			workflow.Name,
			stateColor.Sprintf("[%s]", workflow.State),
			color.New(color.FgCyan).Sprint(workflow.Path),
		)
	}
}

func conclusionColor(stats model.ConclusionStats) *color.Color {
	switch {
	case stats.Success == stats.Count:
		return color.New(color.FgGreen)
	case stats.Success == 0:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgYellow)
	}
}
