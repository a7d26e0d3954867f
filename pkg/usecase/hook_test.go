package usecase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"github.com/m-mizutani/octastat/pkg/usecase"
)

func TestHookExecutor(t *testing.T) {
	t.Run("Execute with nil config does not panic", func(t *testing.T) {
		executor := usecase.NewHookExecutor(nil)
		err := executor.Execute(context.Background(), newReportEvent(model.HookReportSuccess))
		gt.NoError(t, err)
		executor.WaitForCompletion()
	})

	t.Run("Execute handles unknown action type gracefully", func(t *testing.T) {
		config := &model.Config{
			Hooks: model.HooksConfig{
				ReportSuccess: []model.Action{
					{
						Type: "sound",
						Data: map[string]any{},
					},
				},
			},
		}
		executor := usecase.NewHookExecutor(config)

		err := executor.Execute(context.Background(), newReportEvent(model.HookReportSuccess))
		gt.NoError(t, err)
		executor.WaitForCompletion()
	})

	t.Run("WaitForCompletion returns immediately when no actions", func(t *testing.T) {
		executor := usecase.NewHookExecutor(&model.Config{})

		startTime := time.Now()
		executor.WaitForCompletion()
		gt.True(t, time.Since(startTime) < 10*time.Millisecond)
	})

	t.Run("Actions run in parallel and are awaited", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("uses sleep command")
		}

		sleep := model.Action{
			Type: "command",
			Data: map[string]any{
				"command": "sleep",
				"args":    []string{"0.1"},
			},
		}
		config := &model.Config{
			Hooks: model.HooksConfig{
				ReportSuccess: []model.Action{sleep, sleep, sleep},
			},
		}

		executor := usecase.NewHookExecutor(config)
		startTime := time.Now()

		err := executor.Execute(context.Background(), newReportEvent(model.HookReportSuccess))
		gt.NoError(t, err)
		executor.WaitForCompletion()

		duration := time.Since(startTime)
		gt.True(t, duration >= 100*time.Millisecond)
		gt.True(t, duration < 500*time.Millisecond)
	})

	t.Run("Only actions of the event type run", func(t *testing.T) {
		var requestCount int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		config := &model.Config{
			Hooks: model.HooksConfig{
				ReportSuccess: []model.Action{
					{
						Type: "slack",
						Data: map[string]any{
							"webhook_url": server.URL,
							"message":     "Report ready for {{.Repository}}",
						},
					},
				},
				ReportFailure: []model.Action{
					{
						Type: "slack",
						Data: map[string]any{
							"webhook_url": server.URL,
							"message":     "Report failed for {{.Repository}}",
						},
					},
					{
						Type: "slack",
						Data: map[string]any{
							"webhook_url": server.URL,
							"message":     "Second failure hook",
						},
					},
				},
			},
		}

		executor := usecase.NewHookExecutor(config)
		err := executor.Execute(context.Background(), newReportEvent(model.HookReportFailure))
		gt.NoError(t, err)
		executor.WaitForCompletion()

		gt.Equal(t, atomic.LoadInt32(&requestCount), int32(2))
	})

	t.Run("Execute with real Command action", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("uses sh")
		}

		outputFile := filepath.Join(t.TempDir(), "hook.txt")
		config := &model.Config{
			Hooks: model.HooksConfig{
				ReportSuccess: []model.Action{
					{
						Type: "command",
						Data: map[string]any{
							"command": "sh",
							"args":    []string{"-c", "echo done > " + outputFile},
						},
					},
				},
			},
		}

		executor := usecase.NewHookExecutor(config)
		err := executor.Execute(context.Background(), newReportEvent(model.HookReportSuccess))
		gt.NoError(t, err)
		executor.WaitForCompletion()

		_, err = os.Stat(outputFile)
		gt.NoError(t, err)
	})
}
