package authmiddleware

import (
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// fieldMap converts alternating key/value arguments into a map. Keys that
// are not strings and a trailing key without a value are dropped.
func fieldMap(args []any) map[string]any {
	fields := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = args[i+1]
	}
	return fields
}

// LogrusLogger adapts a logrus logger or entry to the Logger interface.
type LogrusLogger struct {
	logger logrus.FieldLogger
}

// NewLogrusLogger wraps a logrus logger for use with WithLogger. Any
// logrus.FieldLogger works, so a pre-configured *logrus.Entry with shared
// fields can be passed as well as a *logrus.Logger.
func NewLogrusLogger(logger logrus.FieldLogger) *LogrusLogger {
	return &LogrusLogger{logger: logger}
}

func (l *LogrusLogger) Debug(msg string, args ...any) {
	l.logger.WithFields(fieldMap(args)).Debug(msg)
}

func (l *LogrusLogger) Info(msg string, args ...any) {
	l.logger.WithFields(fieldMap(args)).Info(msg)
}

func (l *LogrusLogger) Warn(msg string, args ...any) {
	l.logger.WithFields(fieldMap(args)).Warn(msg)
}

func (l *LogrusLogger) Error(msg string, args ...any) {
	l.logger.WithFields(fieldMap(args)).Error(msg)
}

// ZapLogger adapts a zap sugared logger to the Logger interface.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger wraps a zap sugared logger for use with WithLogger.
func NewZapLogger(logger *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	l.logger.Debugw(msg, args...)
}

func (l *ZapLogger) Info(msg string, args ...any) {
	l.logger.Infow(msg, args...)
}

func (l *ZapLogger) Warn(msg string, args ...any) {
	l.logger.Warnw(msg, args...)
}

func (l *ZapLogger) Error(msg string, args ...any) {
	l.logger.Errorw(msg, args...)
}

// ZerologLogger adapts a zerolog logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps a zerolog logger for use with WithLogger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

func (l *ZerologLogger) Debug(msg string, args ...any) {
	l.logger.Debug().Fields(fieldMap(args)).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, args ...any) {
	l.logger.Info().Fields(fieldMap(args)).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, args ...any) {
	l.logger.Warn().Fields(fieldMap(args)).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, args ...any) {
	l.logger.Error().Fields(fieldMap(args)).Msg(msg)
}
