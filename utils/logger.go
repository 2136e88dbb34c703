package utils

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger builds a Logger backed by zap. APP_ENV=production switches to the
// JSON production encoder; anything else gets the colored development console.
func NewLogger() *Logger {
	var cfg zap.Config
	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableCaller = true

	l, err := cfg.Build()
	if err != nil {
		// zap only fails on a malformed config; fall back to a silent logger.
		l = zap.NewNop()
	}
	return &Logger{sugar: l.Sugar()}
}

func (l *Logger) Info(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...any) { l.sugar.Errorf(format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.sugar.Debugf(format, args...) }

// Sync flushes buffered log entries. Call on shutdown.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
