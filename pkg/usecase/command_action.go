package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/octastat/pkg/domain/interfaces"
	"github.com/m-mizutani/octastat/pkg/domain/model"
)

const defaultCommandTimeout = 30 * time.Second

type commandAction struct{}

// NewCommandAction creates a new CommandAction instance
func NewCommandAction() interfaces.ActionExecutor {
	return &commandAction{}
}

// Execute runs the configured command with the report event exported as
// OCTASTAT_* environment variables
func (c *commandAction) Execute(ctx context.Context, action model.Action, event model.ReportEvent) error {
	cmdAction, err := action.ToCommandAction()
	if err != nil {
		return goerr.Wrap(err, "failed to parse command action")
	}

	timeout := cmdAction.Timeout
	if timeout == 0 {
		timeout = defaultCommandTimeout
	}

	env := append(os.Environ(), reportEnv(event)...)
	env = append(env, cmdAction.Env...)

	if err := c.executeCommand(ctx, cmdAction, env, timeout); err != nil {
		return goerr.Wrap(err, "command execution failed",
			goerr.V("command", cmdAction.Command),
			goerr.V("timeout", timeout),
		)
	}
	return nil
}

// reportEnv returns the event as KEY=value pairs. Files are joined with the
// OS path list separator.
func reportEnv(event model.ReportEvent) []string {
	return []string{
		"OCTASTAT_EVENT_TYPE=" + string(event.Type),
		"OCTASTAT_REPOSITORY=" + event.Repository,
		"OCTASTAT_WORKFLOW=" + event.Workflow,
		"OCTASTAT_WORKFLOW_ID=" + strconv.FormatInt(event.WorkflowID, 10),
		"OCTASTAT_OUTPUT_DIR=" + event.OutputDir,
		"OCTASTAT_FILES=" + strings.Join(event.Files, string(os.PathListSeparator)),
		"OCTASTAT_ERROR=" + event.Error,
	}
}

func (c *commandAction) executeCommand(ctx context.Context, cmdAction *model.CommandAction, env []string, timeout time.Duration) error {
	logger := ctxlog.From(ctx)

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := expandPath(cmdAction.Command)
	args := make([]string, len(cmdAction.Args))
	for i, arg := range cmdAction.Args {
		args[i] = os.ExpandEnv(arg)
	}

	// PowerShell scripts are not directly executable on Windows
	if runtime.GOOS == "windows" && strings.HasSuffix(strings.ToLower(command), ".ps1") {
		args = append([]string{"-ExecutionPolicy", "Bypass", "-File", command}, args...)
		command = "powershell"
	}

	cmd := exec.CommandContext(cmdCtx, command, args...) // #nosec G204 - command is from config file
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Executing hook command",
		slog.String("command", command),
		slog.Any("args", args),
		slog.Duration("timeout", timeout),
	)

	err := cmd.Run()
	logger.Debug("Hook command finished",
		slog.String("command", command),
		slog.String("stdout", stdout.String()),
		slog.String("stderr", stderr.String()),
	)

	if err != nil {
		if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
			return goerr.New("command timed out", goerr.V("timeout", timeout))
		}
		return goerr.Wrap(err, "command failed", goerr.V("stderr", stderr.String()))
	}
	return nil
}

// expandPath expands a leading ~ and environment variables in path
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = homeDir + path[1:]
		}
	}
	return path
}
