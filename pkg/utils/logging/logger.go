package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/clog/hooks"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/secmon-lab/repovault/pkg/domain/types"
)

var (
	defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, nil))

	outputMutex sync.Mutex
	outputFile  io.Closer
)

func init() {
	_ = Configure("text", "info", "stdout")
}

func Default() *slog.Logger {
	return defaultLogger
}

func newFilter() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithType[types.JWTSecret](masq.MaskWithSymbol('*', 32)),
		masq.WithType[types.RedisPassword](masq.MaskWithSymbol('*', 16)),
		// signup, login and profile inputs
		masq.WithFieldName("Password"),
	)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, goerr.Wrap(types.ErrInvalidOption, "invalid log level, should be one of debug, info, warn and error",
		goerr.V("value", s))
}

// openOutput returns the writer of logOutput. closer is nil for stdout and stderr.
func openOutput(logOutput string) (io.Writer, io.Closer, error) {
	switch logOutput {
	case "stdout", "-", "":
		return os.Stdout, nil, nil
	case "stderr":
		return os.Stderr, nil, nil
	}

	fd, err := os.OpenFile(filepath.Clean(logOutput), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", logOutput))
	}
	return fd, fd, nil
}

func textHandler(w io.Writer, level slog.Level, filter func([]string, slog.Attr) slog.Attr) slog.Handler {
	return clog.New(
		clog.WithWriter(w),
		clog.WithLevel(level),
		clog.WithSource(true),
		clog.WithColorMap(&clog.ColorMap{
			Level: map[slog.Level]*color.Color{
				slog.LevelDebug: color.New(color.FgGreen, color.Bold),
				slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
				slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
				slog.LevelError: color.New(color.FgRed, color.Bold),
			},
			LevelDefault: color.New(color.FgBlue, color.Bold),
			Time:         color.New(color.FgWhite),
			Message:      color.New(color.FgHiWhite),
			AttrKey:      color.New(color.FgHiCyan),
			AttrValue:    color.New(color.FgHiWhite),
		}),
		clog.WithAttrHook(hooks.GoErr()),
		clog.WithReplaceAttr(filter),
	)
}

// Configure replaces the default logger. logFormat is text or json, logOutput
// is stdout, stderr or a file path. A log file opened by a previous call is closed.
func Configure(logFormat, logLevel, logOutput string) error {
	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	if logFormat != "text" && logFormat != "json" {
		return goerr.Wrap(types.ErrInvalidOption, "invalid log format, should be 'json' or 'text'", goerr.V("value", logFormat))
	}

	w, closer, err := openOutput(logOutput)
	if err != nil {
		return err
	}

	filter := newFilter()
	var handler slog.Handler
	if logFormat == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource:   true,
			Level:       level,
			ReplaceAttr: filter,
		})
	} else {
		handler = textHandler(w, level, filter)
	}

	outputMutex.Lock()
	defer outputMutex.Unlock()
	if outputFile != nil {
		_ = outputFile.Close()
	}
	outputFile = closer
	defaultLogger = slog.New(handler)

	return nil
}
