package authmiddleware

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// log/slog satisfies Logger directly, so WithLogger(slog.Default()) works
// without an adapter.
var _ Logger = (*slog.Logger)(nil)

func TestFieldMap(t *testing.T) {
	t.Run("pairs keys with values", func(t *testing.T) {
		fields := fieldMap([]any{"subject", "user-42", "attempts", 3})

		assert.Equal(t, map[string]any{"subject": "user-42", "attempts": 3}, fields)
	})

	t.Run("drops a trailing key without a value", func(t *testing.T) {
		fields := fieldMap([]any{"subject", "user-42", "dangling"})

		assert.Equal(t, map[string]any{"subject": "user-42"}, fields)
	})

	t.Run("skips non-string keys", func(t *testing.T) {
		fields := fieldMap([]any{42, "ignored", "subject", "user-42"})

		assert.Equal(t, map[string]any{"subject": "user-42"}, fields)
	})

	t.Run("empty arguments produce an empty map", func(t *testing.T) {
		assert.Empty(t, fieldMap(nil))
	})
}

func TestZapLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	logger := NewZapLogger(zap.New(core).Sugar())

	logger.Debug("debug message", "subject", "user-42")
	assert.Equal(t, 0, recorded.Len(), "Debug message should not be recorded at Info level")

	logger.Info("credential validated", "subject", "user-42")
	assert.Equal(t, 1, recorded.Len())
	assert.Equal(t, "credential validated", recorded.All()[0].Message)
	assert.Equal(t, "user-42", recorded.All()[0].ContextMap()["subject"])

	logger.Warn("credential rejected", "kind", "expired")
	assert.Equal(t, 2, recorded.Len())

	logger.Error("validator failed", "error", "boom")
	assert.Equal(t, 3, recorded.Len())
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(zerolog.New(&buf))

	logger.Debug("debug message", "subject", "user-42")
	logger.Info("credential validated", "subject", "user-42")
	logger.Warn("credential rejected", "kind", "expired")
	logger.Error("validator failed", "error", "boom")

	output := buf.String()
	assert.Contains(t, output, `"message":"credential validated"`)
	assert.Contains(t, output, `"subject":"user-42"`)
	assert.Contains(t, output, `"kind":"expired"`)
	assert.Contains(t, output, `"level":"error"`)
}

func TestLogrusLogger(t *testing.T) {
	var buf bytes.Buffer
	logrusLogger := logrus.New()
	logrusLogger.Out = &buf
	logrusLogger.Level = logrus.InfoLevel

	logger := NewLogrusLogger(logrusLogger)

	logger.Debug("debug message", "subject", "user-42")
	logger.Info("credential validated", "subject", "user-42")
	logger.Warn("credential rejected", "kind", "expired")
	logger.Error("validator failed", "error", "boom")

	output := buf.String()
	assert.NotContains(t, output, "debug message", "Debug messages should not be logged at Info level")
	assert.Contains(t, output, "credential validated")
	assert.Contains(t, output, "subject=user-42")
	assert.Contains(t, output, "kind=expired")
	assert.Contains(t, output, "validator failed")

	buf.Reset()
	logrusLogger.Level = logrus.DebugLevel

	logger.Debug("debug message", "subject", "user-42")
	assert.Contains(t, buf.String(), "debug message", "Debug messages should be logged at Debug level")
}
