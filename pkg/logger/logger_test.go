package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_ValidLevels(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error"}

	for _, lvl := range levels {
		t.Run(lvl, func(t *testing.T) {
			log := NewLogger(lvl)
			assert.NotNil(t, log)

			assert.NotPanics(t, func() {
				log.Info("test log", "level", lvl)
				log.Debug("debug entry", "key", "value")
			})
		})
	}
}

func TestNewLogger_InvalidLevelFallsBack(t *testing.T) {
	log := NewLogger("not-a-level")
	assert.NotNil(t, log)
	assert.True(t, log.sugar.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.sugar.Desugar().Core().Enabled(zapcore.DebugLevel), "debug must be disabled at info level")
}

func TestNop(t *testing.T) {
	log := NewNop()

	assert.NotPanics(t, func() {
		log.With("component", "test").Error("nop logger test", "error", "boom")
		log.Warn("warn")
	})
}
