package safe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

// Close closes closer and logs a failure. io.EOF is not a failure.
func Close(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil && !errors.Is(err, io.EOF) {
		logging.Default().Warn("Fail to close resource", slog.Any("error", err))
	}
}

// RemoveAll removes path and its children, logging a failure.
func RemoveAll(path string) {
	if err := os.RemoveAll(path); err != nil {
		logging.Default().Warn("Fail to remove directory", slog.String("path", path), slog.Any("error", err))
	}
}

// Cleanup runs a best-effort cleanup step. A failure is logged with the logger in ctx and otherwise ignored.
func Cleanup(ctx context.Context, what string, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil {
		logging.From(ctx).Warn("Fail to clean up", slog.String("target", what), slog.Any("error", err))
	}
}
