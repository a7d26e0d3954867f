package cli

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

func logLevelOf(cmd *cli.Command) slog.Level {
	if cmd.Bool("debug") {
		return slog.LevelDebug
	}
	if cmd.Bool("verbose") {
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
