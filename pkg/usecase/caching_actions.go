package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

// CachingActions serves records from JSON files in a cache directory and falls
// back to the delegate on a miss, writing the fetched records through.
type CachingActions struct {
	delegate interfaces.Actions
	config   model.ActionsConfig
}

func NewCachingActions(delegate interfaces.Actions, config model.ActionsConfig) interfaces.Actions {
	return &CachingActions{
		delegate: delegate,
		config:   config,
	}
}

func (c *CachingActions) GetWorkflows(ctx context.Context) ([]*model.Workflow, error) {
	if !c.config.CacheWorkflows {
		return c.delegate.GetWorkflows(ctx)
	}

	return readThrough(ctx, c.workflowsCacheFile(), func() ([]*model.Workflow, error) {
		return c.delegate.GetWorkflows(ctx)
	})
}

func (c *CachingActions) GetWorkflow(ctx context.Context, workflowID int64) (*model.Workflow, error) {
	workflows, err := c.GetWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	return findWorkflow(workflows, workflowID)
}

func (c *CachingActions) GetCompletedWorkflowRuns(ctx context.Context, workflowID int64, branch, event string, limit int) ([]*model.WorkflowRun, error) {
	if !c.config.CacheWorkflowRuns {
		return c.delegate.GetCompletedWorkflowRuns(ctx, workflowID, branch, event, limit)
	}

	return readThrough(ctx, c.workflowRunsCacheFile(workflowID, branch, event), func() ([]*model.WorkflowRun, error) {
		return c.delegate.GetCompletedWorkflowRuns(ctx, workflowID, branch, event, limit)
	})
}

func (c *CachingActions) GetRunJobs(ctx context.Context, runID int64) ([]*model.RunJob, error) {
	if !c.config.CacheRunJobs {
		return c.delegate.GetRunJobs(ctx, runID)
	}

	return readThrough(ctx, c.runCacheFile(runID), func() ([]*model.RunJob, error) {
		return c.delegate.GetRunJobs(ctx, runID)
	})
}

func (c *CachingActions) workflowsCacheFile() string {
	return filepath.Join(c.config.CacheDir, "workflows.cache.json")
}

func (c *CachingActions) workflowRunsCacheFile(workflowID int64, branch, event string) string {
	return filepath.Join(c.config.CacheDir, sanitizeFilename(fmt.Sprintf("workflow_%d_%s_%s.cache.json", workflowID, branch, event)))
}

func (c *CachingActions) runCacheFile(runID int64) string {
	return filepath.Join(c.config.CacheDir, fmt.Sprintf("run_%d.cache.json", runID))
}

// readThrough returns the cached records at path. Any read failure counts as a
// miss: the records are fetched and written to path.
func readThrough[T any](ctx context.Context, path string, fetch func() ([]T, error)) ([]T, error) {
	logger := ctxlog.From(ctx)

	cached, err := readCache[T](path)
	if err == nil {
		logger.Debug("read cache", slog.String("path", path), slog.Int("count", len(cached)))
		return cached, nil
	}
	logger.Debug("cache miss", slog.String("path", path), slog.String("reason", err.Error()))

	records, err := fetch()
	if err != nil {
		return nil, err
	}

	logger.Info("writing cache", slog.String("path", path), slog.Int("count", len(records)))
	if err := writeCache(path, records); err != nil {
		return nil, err
	}
	return records, nil
}

func readCache[T any](path string) ([]T, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, domain.ErrCache.Wrap(err)
	}

	var data []byte
	err := withFileLock(path, false, func() error {
		var err error
		data, err = os.ReadFile(path) // #nosec G304 - path is built from the configured cache directory
		return err
	})
	if err != nil {
		return nil, domain.ErrCache.Wrap(err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, goerr.Wrap(domain.ErrCache.Wrap(err), "broken cache file", goerr.V("path", path))
	}
	return records, nil
}

func writeCache[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return domain.ErrCache.Wrap(err)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return domain.ErrCache.Wrap(err)
	}

	err = withFileLock(path, true, func() error {
		return os.WriteFile(path, data, 0600)
	})
	if err != nil {
		return goerr.Wrap(domain.ErrCache.Wrap(err), "failed to write cache file", goerr.V("path", path))
	}
	return nil
}
