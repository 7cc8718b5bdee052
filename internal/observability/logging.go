// Package observability builds the structured logger shared by the binaries.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/charsheet/internal/config"
)

// NewLogger returns a logger tagged with service that writes to stderr,
// leaving stdout to command output.
func NewLogger(service string, cfg config.LoggingConfig) (*zap.Logger, error) {
	return newLogger(service, cfg, zapcore.Lock(os.Stderr))
}

func newLogger(service string, cfg config.LoggingConfig, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}
	enc, err := encoderFor(cfg.Format)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	}
	if service != "" {
		opts = append(opts, zap.Fields(zap.String("service", service)))
	}
	return zap.New(zapcore.NewCore(enc, sink, level), opts...), nil
}

func encoderFor(format string) (zapcore.Encoder, error) {
	switch format {
	case "json":
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(ec), nil
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// CharacterFields identify the character a log line concerns.
func CharacterFields(id, name string) []zap.Field {
	return []zap.Field{zap.String("character_id", id), zap.String("character_name", name)}
}
