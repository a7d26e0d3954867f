package interfaces

import (
	"context"

	"github.com/m-mizutani/octastat/pkg/domain/model"
)

// StatsRenderer writes statistics into report files and returns their paths.
type StatsRenderer interface {
	RenderWorkflowStats(ctx context.Context, stats *model.WorkflowStats) (string, error)
	RenderWorkflowRunsStats(ctx context.Context, stats *model.WorkflowStats) (string, error)
	RenderJobStats(ctx context.Context, stats []*model.JobStats) ([]string, error)
}
