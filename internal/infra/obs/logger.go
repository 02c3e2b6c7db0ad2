package obs

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const serviceName = "staybeyond"

// NewLogger builds the process logger. Dev-like envs get colorized console
// output at debug level with source locations; everything else emits JSON at
// info with a service attribute for log aggregation.
func NewLogger(env string) *slog.Logger {
	if isDevEnv(env) {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler).With("service", serviceName)
}

func isDevEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test", "testing":
		return true
	default:
		return false
	}
}
