package logger

import (
	"context"

	"github.com/rs/zerolog"
)

type zerologLogger struct {
	logger zerolog.Logger
	level  Level
}

// NewZerologLogger creates a Logger backed by zerolog. Format "text" selects
// the human-readable console writer.
func NewZerologLogger(cfg Config) Logger {
	w := cfg.writer()
	if cfg.Format == "text" {
		w = zerolog.ConsoleWriter{Out: w}
	}

	zl := zerolog.New(w).
		Level(toZerologLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &zerologLogger{logger: zl, level: cfg.Level}
}

func toZerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zerologLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug().Fields(fieldsToKV(fields)).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields ...Field) {
	l.logger.Info().Fields(fieldsToKV(fields)).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn().Fields(fieldsToKV(fields)).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields ...Field) {
	l.logger.Error().Fields(fieldsToKV(fields)).Msg(msg)
}

func (l *zerologLogger) With(fields ...Field) Logger {
	return &zerologLogger{
		logger: l.logger.With().Fields(fieldsToKV(fields)).Logger(),
		level:  l.level,
	}
}

func (l *zerologLogger) WithContext(ctx context.Context) Logger {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func (l *zerologLogger) Level() Level {
	return l.level
}
