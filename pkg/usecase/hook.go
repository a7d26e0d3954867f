package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
	"golang.org/x/sync/errgroup"
)

// hookExecutor starts configured actions in the background. A failing action
// is logged and never fails the report itself.
type hookExecutor struct {
	hooks     model.HooksConfig
	executors map[string]interfaces.ActionExecutor
	pending   errgroup.Group
}

// NewHookExecutor creates a HookExecutor for config. A nil config runs nothing.
func NewHookExecutor(config *model.Config) interfaces.HookExecutor {
	h := &hookExecutor{
		executors: map[string]interfaces.ActionExecutor{
			model.ActionTypeCommand: NewCommandAction(),
			model.ActionTypeSlack:   NewSlackAction(),
		},
	}
	if config != nil {
		h.hooks = config.Hooks
	}
	return h
}

func (h *hookExecutor) Execute(ctx context.Context, event model.ReportEvent) error {
	for _, action := range h.hooks.For(event.Type) {
		executor, ok := h.executors[action.Type]
		if !ok {
			ctxlog.From(ctx).Warn("Unknown action type", slog.String("type", action.Type))
			continue
		}

		h.pending.Go(func() error {
			if err := executor.Execute(ctx, action, event); err != nil {
				ctxlog.From(ctx).Warn("Hook action failed",
					slog.String("type", action.Type),
					slog.String("event", string(event.Type)),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}

	return nil
}

// WaitForCompletion blocks until every started action has finished
func (h *hookExecutor) WaitForCompletion() {
	_ = h.pending.Wait()
}
