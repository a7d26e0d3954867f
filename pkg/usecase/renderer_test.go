package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"github.com/m-mizutani/octastat/pkg/usecase"
)

func newRenderFixture(t *testing.T) *model.WorkflowStats {
	t.Helper()

	run1 := newRun(1, model.ConclusionSuccess)
	run2 := newRun(2, model.ConclusionFailure)

	stats1, err := usecase.CalculateRunJobsStats(run1, []*model.RunJob{
		newJob("build/linux", model.ConclusionSuccess, ts("2024-01-01T10:01:00Z"), ts("2024-01-01T10:04:00Z")),
		newJob("test", model.ConclusionSuccess, ts("2024-01-01T10:04:00Z"), ts("2024-01-01T10:09:30Z")),
	})
	gt.NoError(t, err)
	stats2, err := usecase.CalculateRunJobsStats(run2, []*model.RunJob{
		newJob("build/linux", model.ConclusionSuccess, ts("2024-01-01T10:02:00Z"), ts("2024-01-01T10:05:00Z")),
		newJob("test", model.ConclusionFailure, ts("2024-01-01T10:05:00Z"), ts("2024-01-01T10:06:00Z")),
	})
	gt.NoError(t, err)

	return &model.WorkflowStats{
		Repository:  "owner/repo",
		Workflow:    testWorkflow,
		Conclusions: model.ConclusionStats{Count: 2, Success: 1, Failure: 1},
		JobsConclusions: map[string]*model.ConclusionStats{
			"build/linux": {Count: 2, Success: 2},
			"test":        {Count: 2, Success: 1, Failure: 1},
		},
		RunStats: []*model.RunStats{stats1, stats2},
		Runs:     []*model.WorkflowRun{run1, run2},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	return string(data)
}

func TestWriteDefaultTemplates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")

	written, err := usecase.WriteDefaultTemplates(dir, false)
	gt.NoError(t, err)
	gt.Equal(t, len(written), 3)
	for _, name := range []string{"workflow_stats.html", "workflow_runs.html", "job_stats.html"} {
		_, err := os.Stat(filepath.Join(dir, name))
		gt.NoError(t, err)
	}

	customized := filepath.Join(dir, "job_stats.html")
	gt.NoError(t, os.WriteFile(customized, []byte("custom"), 0600))

	written, err = usecase.WriteDefaultTemplates(dir, false)
	gt.NoError(t, err)
	gt.Equal(t, len(written), 0)
	gt.Equal(t, readFile(t, customized), "custom")

	written, err = usecase.WriteDefaultTemplates(dir, true)
	gt.NoError(t, err)
	gt.Equal(t, len(written), 3)
	gt.NotEqual(t, readFile(t, customized), "custom")
}

func TestStatsRenderer(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (string, string) {
		templateDir := filepath.Join(t.TempDir(), "templates")
		outputDir := filepath.Join(t.TempDir(), "output")
		_, err := usecase.WriteDefaultTemplates(templateDir, false)
		gt.NoError(t, err)
		return templateDir, outputDir
	}

	t.Run("renders workflow summary", func(t *testing.T) {
		templateDir, outputDir := setup(t)
		renderer := usecase.NewStatsRenderer(templateDir, outputDir, nil)

		file, err := renderer.RenderWorkflowStats(ctx, newRenderFixture(t))
		gt.NoError(t, err)
		gt.Equal(t, file, filepath.Join(outputDir, "workflow_1392268.html"))

		content := readFile(t, file)
		gt.True(t, strings.Contains(content, "owner/repo"))
		gt.True(t, strings.Contains(content, "success: 50%, failure: 50%"))
		gt.True(t, strings.Contains(content, "build/linux"))
	})

	t.Run("renders run table", func(t *testing.T) {
		templateDir, outputDir := setup(t)
		renderer := usecase.NewStatsRenderer(templateDir, outputDir, nil)

		file, err := renderer.RenderWorkflowRunsStats(ctx, newRenderFixture(t))
		gt.NoError(t, err)
		gt.Equal(t, file, filepath.Join(outputDir, "workflow_1392268_runs.html"))

		content := readFile(t, file)
		gt.True(t, strings.Contains(content, "09:30"))
		gt.True(t, strings.Contains(content, "02:00"))
	})

	t.Run("renders one file per job in input order", func(t *testing.T) {
		templateDir, outputDir := setup(t)
		renderer := usecase.NewStatsRenderer(templateDir, outputDir, nil)

		jobsStats := usecase.BuildJobsStats(newRenderFixture(t))
		files, err := renderer.RenderJobStats(ctx, jobsStats)
		gt.NoError(t, err)
		gt.Equal(t, files, []string{
			filepath.Join(outputDir, "workflow_1392268_job_buildlinux.html"),
			filepath.Join(outputDir, "workflow_1392268_job_test.html"),
		})

		content := readFile(t, files[1])
		gt.True(t, strings.Contains(content, "CI"))
		gt.True(t, strings.Contains(content, "failure"))
	})

	t.Run("templates are read once per cache", func(t *testing.T) {
		templateDir, outputDir := setup(t)
		cache := usecase.NewTemplateCache()
		renderer := usecase.NewStatsRenderer(templateDir, outputDir, cache)

		stats := newRenderFixture(t)
		_, err := renderer.RenderWorkflowStats(ctx, stats)
		gt.NoError(t, err)
		gt.Equal(t, cache.Len(), 1)

		gt.NoError(t, os.WriteFile(filepath.Join(templateDir, "workflow_stats.html"), []byte("changed"), 0600))

		other := usecase.NewStatsRenderer(templateDir, filepath.Join(t.TempDir(), "other"), cache)
		file, err := other.RenderWorkflowStats(ctx, stats)
		gt.NoError(t, err)
		gt.True(t, strings.Contains(readFile(t, file), "owner/repo"))

		_, err = renderer.RenderJobStats(ctx, usecase.BuildJobsStats(stats))
		gt.NoError(t, err)
		gt.Equal(t, cache.Len(), 2)
	})

	t.Run("missing template fails", func(t *testing.T) {
		renderer := usecase.NewStatsRenderer(t.TempDir(), t.TempDir(), nil)

		_, err := renderer.RenderWorkflowStats(ctx, newRenderFixture(t))
		gt.Error(t, err)

		_, err = renderer.RenderJobStats(ctx, usecase.BuildJobsStats(newRenderFixture(t)))
		gt.Error(t, err)
	})

	t.Run("broken template fails", func(t *testing.T) {
		templateDir, outputDir := setup(t)
		gt.NoError(t, os.WriteFile(filepath.Join(templateDir, "workflow_runs.html"), []byte("{{.Broken"), 0600))

		renderer := usecase.NewStatsRenderer(templateDir, outputDir, nil)
		_, err := renderer.RenderWorkflowRunsStats(ctx, newRenderFixture(t))
		gt.Error(t, err)
	})
}

func TestTemplateCache(t *testing.T) {
	cache := usecase.NewTemplateCache()

	var loads int
	load := func(path string) (string, error) {
		loads++
		return "content of " + path, nil
	}

	for range 3 {
		content, err := cache.Get("a.html", load)
		gt.NoError(t, err)
		gt.Equal(t, content, "content of a.html")
	}
	gt.Equal(t, loads, 1)

	_, err := cache.Get("b.html", load)
	gt.NoError(t, err)
	gt.Equal(t, loads, 2)
	gt.Equal(t, cache.Len(), 2)

	_, err = cache.Get("c.html", func(path string) (string, error) {
		return "", os.ErrNotExist
	})
	gt.Error(t, err)
	gt.Equal(t, cache.Len(), 2)
}
