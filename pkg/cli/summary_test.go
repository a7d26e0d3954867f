package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/octastat/pkg/cli"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

func TestSummaryPrinter(t *testing.T) {
	color.NoColor = true

	workflow := &model.Workflow{ID: 1392268, Name: "CI", Path: ".github/workflows/ci.yml", State: "active"}

	t.Run("Print", func(t *testing.T) {
		stats := &model.WorkflowStats{
			Repository:  "owner/repo",
			Workflow:    workflow,
			Conclusions: model.ConclusionStats{Count: 4, Success: 3, Failure: 1},
			JobsConclusions: map[string]*model.ConclusionStats{
				"build": {Count: 2, Success: 2},
				"test":  {Count: 2, Success: 1, Failure: 1},
			},
			RunStats: make([]*model.RunStats, 2),
		}
		jobsStats := []*model.JobStats{
			{Name: "build", Workflow: workflow},
			{Name: "test", Workflow: workflow},
		}

		var buf bytes.Buffer
		cli.NewSummaryPrinter(&buf).Print(stats, jobsStats, []string{"output/workflow_1392268.html"})

		output := buf.String()
		gt.True(t, strings.Contains(output, "owner/repo / CI"))
		gt.True(t, strings.Contains(output, "Runs: 4 (2 with job data)"))
		gt.True(t, strings.Contains(output, "Conclusions: success: 75%, failure: 25%"))
		gt.True(t, strings.Contains(output, "build success: 100%, failure: 0%"))
		gt.True(t, strings.Contains(output, "test success: 50%, failure: 50%"))
		gt.True(t, strings.Contains(output, "output/workflow_1392268.html"))
		gt.True(t, strings.Index(output, "build") < strings.Index(output, "test success"))
	})

	t.Run("PrintWorkflows", func(t *testing.T) {
		var buf bytes.Buffer
		cli.NewSummaryPrinter(&buf).PrintWorkflows("owner/repo", []*model.Workflow{
			workflow,
			{ID: 7, Name: "Nightly", Path: ".github/workflows/nightly.yml", State: "disabled_manually"},
		})

		output := buf.String()
		gt.True(t, strings.Contains(output, "1392268  CI [active] .github/workflows/ci.yml"))
		gt.True(t, strings.Contains(output, "7  Nightly [disabled_manually]"))
	})
}
