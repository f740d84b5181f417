package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. It discards everything until Init runs,
// which keeps tests quiet.
var L = zap.NewNop().Sugar()

// Init builds a production zap logger at the given level ("debug", "info", ...).
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "time"

	base, err := config.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	L = base.Sugar()
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L.Sync()
}
