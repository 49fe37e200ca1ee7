// Package logging builds the loggers of the command line tools.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Levels lists the accepted level names.
var Levels = []string{"off", "error", "warn", "info", "debug", "trace"}

// ParseLevel converts a level name. Off is reported as ok == false.
func ParseLevel(name string) (level zapcore.Level, ok bool, err error) {
	switch strings.ToLower(name) {
	case "off":
		return zapcore.InvalidLevel, false, nil
	case "error":
		return zapcore.ErrorLevel, true, nil
	case "warn", "warning":
		return zapcore.WarnLevel, true, nil
	case "info", "":
		return zapcore.InfoLevel, true, nil
	case "debug", "trace":
		return zapcore.DebugLevel, true, nil
	}

	return zapcore.InvalidLevel, false,
		errors.Errorf("unknown log level %q, want one of %s",
			name, strings.Join(Levels, ", "))
}

// New creates a console logger writing to w.
func New(level string, w io.Writer) (*zap.Logger, error) {
	lvl, ok, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if !ok {
		return zap.NewNop(), nil
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(lvl),
	)

	return zap.New(core), nil
}
