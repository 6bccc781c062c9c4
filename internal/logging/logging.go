// Package logging builds the zap logger used by the command line tool.
package logging

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported encodings.
const (
	EncodingConsole = "console"
	EncodingJSON    = "json"
)

// New creates a logger writing to stderr at level with the given encoding.
func New(level, encoding string) (*zap.Logger, error) {
	return newLogger(level, encoding, zapcore.Lock(os.Stderr))
}

func newLogger(level, encoding string, out zapcore.WriteSyncer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch encoding {
	case "", EncodingConsole:
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	case EncodingJSON:
		encoder = zapcore.NewJSONEncoder(cfg)
	default:
		return nil, errors.Errorf("unknown log encoding %q", encoding)
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}
