// Package logging wraps go.uber.org/zap with the small set of
// package-level helpers the rest of this repository calls into, so a log
// line reads the same whether it comes from the transport adapter, the
// matchmaker, or the HTTP surface.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var global atomic.Pointer[zap.Logger]

func init() {
	l, _ := zap.NewProduction()
	global.Store(l)
}

// Set installs logger as the package-level logger used by Info/Warn/Error.
func Set(logger *zap.Logger) {
	global.Store(logger)
}

// New builds a zap.Logger appropriate for env ("production" or anything
// else, which gets the human-readable development encoder).
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}

// L returns the current package-level logger.
func L() *zap.Logger {
	return global.Load()
}

func Info(msg string, fields ...zap.Field)  { global.Load().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { global.Load().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { global.Load().Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { global.Load().Debug(msg, fields...) }
