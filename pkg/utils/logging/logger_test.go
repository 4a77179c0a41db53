package logging_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repovault/pkg/domain/types"
	"github.com/secmon-lab/repovault/pkg/utils/logging"
)

func TestConfigure(t *testing.T) {
	defer func() {
		gt.NoError(t, logging.Configure("text", "info", "stdout"))
	}()

	testCases := map[string]struct {
		format, level, output string
		kind                  error
	}{
		"json to stdout":  {format: "json", level: "info", output: "stdout"},
		"text to stderr":  {format: "text", level: "debug", output: "stderr"},
		"warning alias":   {format: "text", level: "WARNING", output: "-"},
		"invalid format":  {format: "xml", level: "info", output: "stdout", kind: types.ErrInvalidOption},
		"invalid level":   {format: "json", level: "trace", output: "stdout", kind: types.ErrInvalidOption},
		"missing log dir": {format: "json", level: "info", output: "/no/such/dir/out.log"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := logging.Configure(tc.format, tc.level, tc.output)
			switch {
			case tc.kind != nil:
				gt.True(t, errors.Is(err, tc.kind))
			case strings.HasPrefix(tc.output, "/no/"):
				gt.Error(t, err)
			default:
				gt.NoError(t, err)
			}
		})
	}
}

func TestConfigureFileIsAppended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	defer func() {
		gt.NoError(t, logging.Configure("text", "info", "stdout"))
	}()

	gt.NoError(t, logging.Configure("json", "info", path))
	logging.Default().Info("first")
	gt.NoError(t, logging.Configure("json", "info", path))
	logging.Default().Info("second")

	raw := gt.R1(os.ReadFile(path)).NoError(t)
	gt.True(t, strings.Contains(string(raw), "first"))
	gt.True(t, strings.Contains(string(raw), "second"))
}

func TestConfigureMasksSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	gt.NoError(t, logging.Configure("json", "info", path))
	defer func() {
		gt.NoError(t, logging.Configure("text", "info", "stdout"))
	}()

	logging.Default().Info("config",
		slog.Any("jwt", types.JWTSecret("very-secret-signing-key")),
		slog.Any("redis", types.RedisPassword("redis-pass")),
		slog.Any("input", struct{ Email, Password string }{"a@example.com", "hunter2"}),
	)

	raw := gt.R1(os.ReadFile(path)).NoError(t)
	gt.False(t, strings.Contains(string(raw), "very-secret-signing-key"))
	gt.False(t, strings.Contains(string(raw), "redis-pass"))
	gt.False(t, strings.Contains(string(raw), "hunter2"))
	gt.True(t, strings.Contains(string(raw), "a@example.com"))
}
