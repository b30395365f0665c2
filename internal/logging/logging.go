// Package logging hands out named zap loggers that share one process-wide
// level, so library packages can declare `var log = logging.Logger("...")`
// at init time and still honour the level chosen by the CLI later.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level = zap.NewAtomicLevelAt(zap.WarnLevel)

	mu   sync.Mutex
	root *zap.Logger
)

// Logger returns a sugared logger named after the calling subsystem.
func Logger(system string) *zap.SugaredLogger {
	return base().Named(system).Sugar()
}

// SetLevel changes the level for every logger handed out by this package.
// Accepts zap level names (debug, info, warn, error, ...).
func SetLevel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return fmt.Errorf("logging: invalid level %q: %w", name, err)
	}
	level.SetLevel(lvl)
	return nil
}

// SetProduction swaps the console encoder for JSON output. Loggers created
// before the call keep their encoder; call it early in main.
func SetProduction(production bool) {
	mu.Lock()
	defer mu.Unlock()
	root = build(production)
}

func base() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		root = build(false)
	}
	return root
}

func build(production bool) *zap.Logger {
	var encoder zapcore.Encoder
	if production {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}
