package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

func TestConclusionStatsTracked(t *testing.T) {
	stats := model.ConclusionStats{
		Count:     9,
		Success:   3,
		Failure:   2,
		Cancelled: 1,
		Skipped:   1,
		TimedOut:  1,
	}
	gt.Equal(t, stats.Tracked(), 8)
	gt.True(t, stats.Tracked() <= stats.Count)
}

func TestWorkflowRunCreated(t *testing.T) {
	t.Run("zero creation time", func(t *testing.T) {
		run := &model.WorkflowRun{ID: 1}
		gt.Nil(t, run.Created())
	})

	t.Run("nil run", func(t *testing.T) {
		var run *model.WorkflowRun
		gt.Nil(t, run.Created())
	})

	t.Run("creation time set", func(t *testing.T) {
		created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		run := &model.WorkflowRun{ID: 1, CreatedAt: created}
		gt.NotNil(t, run.Created())
		gt.True(t, run.Created().Equal(created))
	})
}

func TestRunJobDecodesAPIShape(t *testing.T) {
	raw := `{
		"id": 42,
		"run_id": 7,
		"name": "build",
		"status": "completed",
		"conclusion": null,
		"started_at": "2024-01-01T10:00:00Z",
		"completed_at": null,
		"labels": ["ubuntu-latest"]
	}`

	var job model.RunJob
	gt.NoError(t, json.Unmarshal([]byte(raw), &job))
	gt.Equal(t, job.ID, int64(42))
	gt.Equal(t, job.RunID, int64(7))
	gt.Equal(t, job.Name, "build")
	gt.Equal(t, job.Conclusion, model.Conclusion(""))
	gt.NotNil(t, job.StartedAt)
	gt.Nil(t, job.CompletedAt)
	gt.Equal(t, job.Labels, []string{"ubuntu-latest"})
}
