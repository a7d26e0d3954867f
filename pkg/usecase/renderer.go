package usecase

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

const (
	templateWorkflowStats = "workflow_stats"
	templateWorkflowRuns  = "workflow_runs"
	templateJobStats      = "job_stats"

	defaultRenderConcurrency = 4
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// StatsRenderer renders statistics with the HTML templates of a directory.
type StatsRenderer struct {
	templateDir string
	outputDir   string
	cache       *TemplateCache
	funcs       template.FuncMap
	slots       chan struct{}
}

// NewStatsRenderer creates a renderer. A nil cache gives the renderer a
// private one.
func NewStatsRenderer(templateDir, outputDir string, cache *TemplateCache) interfaces.StatsRenderer {
	if cache == nil {
		cache = NewTemplateCache()
	}

	return &StatsRenderer{
		templateDir: templateDir,
		outputDir:   outputDir,
		cache:       cache,
		funcs: template.FuncMap{
			"ratio":             CalculateRatio,
			"formatDuration":    FormatDuration,
			"durationBetween":   DurationBetween,
			"formatConclusions": FormatConclusions,
		},
		slots: make(chan struct{}, defaultRenderConcurrency),
	}
}

func (r *StatsRenderer) RenderWorkflowStats(ctx context.Context, stats *model.WorkflowStats) (string, error) {
	outputName := fmt.Sprintf("workflow_%d.html", stats.Workflow.ID)
	return r.renderTemplate(ctx, templateWorkflowStats, outputName, stats)
}

func (r *StatsRenderer) RenderWorkflowRunsStats(ctx context.Context, stats *model.WorkflowStats) (string, error) {
	outputName := fmt.Sprintf("workflow_%d_runs.html", stats.Workflow.ID)
	return r.renderTemplate(ctx, templateWorkflowRuns, outputName, stats)
}

// RenderJobStats renders one file per job. Paths are returned in input order.
func (r *StatsRenderer) RenderJobStats(ctx context.Context, stats []*model.JobStats) ([]string, error) {
	files := make([]string, len(stats))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, job := range stats {
		eg.Go(func() error {
			outputName := sanitizeFilename(fmt.Sprintf("workflow_%d_job_%s.html", job.Workflow.ID, job.Name))
			file, err := r.renderTemplate(egCtx, templateJobStats, outputName, job)
			if err != nil {
				return err
			}
			files[i] = file
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

func (r *StatsRenderer) renderTemplate(ctx context.Context, name, outputName string, data any) (string, error) {
	select {
	case r.slots <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-r.slots }()

	tmpl, err := r.readTemplate(ctx, name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(domain.ErrRender.Wrap(err), "failed to execute template", goerr.V("template", name))
	}

	return r.writeOutputFile(ctx, outputName, buf.Bytes())
}

func (r *StatsRenderer) readTemplate(ctx context.Context, name string) (*template.Template, error) {
	templateFile := filepath.Join(r.templateDir, name+".html")
	if _, err := os.Stat(templateFile); err != nil {
		return nil, goerr.Wrap(domain.ErrRender.Wrap(err), "could not find template", goerr.V("path", templateFile))
	}

	content, err := r.cache.Get(templateFile, func(path string) (string, error) {
		ctxlog.From(ctx).Info("reading template", slog.String("path", path))
		data, err := os.ReadFile(path) // #nosec G304 - path is inside the configured template directory
		if err != nil {
			return "", domain.ErrRender.Wrap(err)
		}
		return string(data), nil
	})
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(r.funcs).Parse(content)
	if err != nil {
		return nil, goerr.Wrap(domain.ErrRender.Wrap(err), "failed to parse template", goerr.V("path", templateFile))
	}
	return tmpl, nil
}

func (r *StatsRenderer) writeOutputFile(ctx context.Context, filename string, content []byte) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0750); err != nil {
		return "", domain.ErrRender.Wrap(err)
	}

	outputFile := filepath.Join(r.outputDir, filename)
	ctxlog.From(ctx).Info("rendering output file", slog.String("path", outputFile))

	if err := os.WriteFile(outputFile, content, 0600); err != nil {
		return "", goerr.Wrap(domain.ErrRender.Wrap(err), "failed to write output file", goerr.V("path", outputFile))
	}
	return outputFile, nil
}

// WriteDefaultTemplates copies the built-in report templates into dir.
// Existing files are kept unless force is set.
func WriteDefaultTemplates(dir string, force bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}

	entries, err := fs.ReadDir(defaultTemplates, "templates")
	if err != nil {
		return nil, domain.ErrConfiguration.Wrap(err)
	}

	var written []string
	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name())
		if !force {
			if _, err := os.Stat(target); err == nil {
				continue
			}
		}

		data, err := defaultTemplates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, domain.ErrConfiguration.Wrap(err)
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			return nil, goerr.Wrap(domain.ErrConfiguration.Wrap(err), "failed to write template", goerr.V("path", target))
		}
		written = append(written, target)
	}
	return written, nil
}
