// Package obs contains observability utilities such as logging.
package obs

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global structured logger used by the service.
//
// It starts as a no-op logger so packages can log before Configure runs.
var Logger = zap.NewNop().Sugar()

// Configure builds the global Logger. Mode "dev" selects the console
// encoder; anything else produces JSON.
func Configure(mode, level string) error {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "dev", "development":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l.Sugar()
	return nil
}

// SetLogger swaps the global Logger, returning the previous one.
func SetLogger(l *zap.SugaredLogger) *zap.SugaredLogger {
	prev := Logger
	Logger = l
	return prev
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
