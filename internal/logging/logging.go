// Package logging builds the process logger.
//
// Output always goes to stderr: stdout carries the MCP stdio protocol.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel maps a level name to an atomic level, falling back to info
// for unknown names.
func ParseLevel(level string) zap.AtomicLevel {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.SetLevel(zap.InfoLevel)
	}
	return lvl
}

// Config returns the zap configuration for level and format. Any format
// other than console selects JSON.
func Config(level, format string) zap.Config {
	var cfg zap.Config
	if format == FormatConsole {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.Encoding = FormatConsole
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = FormatJSON
	}

	cfg.Level = ParseLevel(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}

// New builds a logger writing to stderr
func New(level, format string) (*zap.Logger, error) {
	return Config(level, format).Build()
}
