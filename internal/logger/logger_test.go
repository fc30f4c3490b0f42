package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{level: "debug", enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
		{level: "info", enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{level: "WARN", enabled: zapcore.WarnLevel, muted: zapcore.InfoLevel},
		{level: "error", enabled: zapcore.ErrorLevel, muted: zapcore.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := New(tt.level)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.muted))
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud")
	assert.Error(t, err)
}
