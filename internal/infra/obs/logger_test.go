package obs

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerDevEnablesDebug(t *testing.T) {
	logger := NewLogger("dev")
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLoggerProdIsInfoAndUp(t *testing.T) {
	logger := NewLogger("prod")
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
}
