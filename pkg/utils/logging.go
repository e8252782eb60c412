package utils

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// Logger returns the process-wide JSON logger. LOG_LEVEL sets the minimum
// level (default info); LOG_FILE tees every entry to that file as well as
// stdout.
func Logger() *zap.Logger {
	once.Do(func() {
		logger = NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"))
	})
	return logger
}

// NewLogger builds a logger like Logger does, from explicit settings. An
// unusable file falls back to stdout only.
func NewLogger(level, file string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if l, err := zapcore.ParseLevel(level); err == nil {
			lvl = l
		}
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl)}
	if file != "" {
		_ = os.MkdirAll(filepath.Dir(file), 0o755)
		if f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), lvl))
		}
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// SetLogger replaces the process-wide logger, e.g. after a config file
// changed the level.
func SetLogger(l *zap.Logger) {
	once.Do(func() {})
	logger = l
}
