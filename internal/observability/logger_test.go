package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/storm-claims-analysis/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.Same(t, logger, slog.Default())
}
