package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultsToJSONInfo(t *testing.T) {
	logger := New("", "")
	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestNew_DebugLevelEnablesDebug(t *testing.T) {
	logger := New("json", "debug")
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestNew_WarnLevelDisablesInfo(t *testing.T) {
	logger := New("text", "warn")
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))
}

func TestNew_ErrorLevelDisablesWarn(t *testing.T) {
	logger := New("json", "error")
	assert.False(t, logger.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelError))
}

func TestNew_InstallsAsSlogDefault(t *testing.T) {
	logger := New("json", "info")
	assert.Same(t, logger.Handler(), slog.Default().Handler())
}
