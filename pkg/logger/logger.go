package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Log struct {
	LogLevel zapcore.Level `yaml:"level" envconfig:"LOG_LEVEL" default:"info"`
	// Sink is a file path; stdout when empty.
	Sink string `yaml:"sink" envconfig:"LOG_SINK"`
}

var stderr io.Writer = os.Stderr

// NewLogger builds the JSON logger. An unusable sink is reported to stderr and
// stdout is used instead. The returned func flushes and closes the sink.
func NewLogger(cfg Log, name string) (*zap.Logger, func()) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var (
		ws      = zapcore.Lock(os.Stdout)
		closeWS = func() {}
		openErr error
	)
	if cfg.Sink != "" {
		sink, closeSink, err := zap.Open(cfg.Sink)
		if err != nil {
			openErr = err
			fmt.Fprintf(stderr, "logger: open sink %q: %v, writing to stdout\n", cfg.Sink, err)
		} else {
			ws, closeWS = sink, closeSink
		}
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zap.NewAtomicLevelAt(cfg.LogLevel))
	log := zap.New(core, zap.AddCaller()).Named(name)
	if openErr != nil {
		log.Warn("log sink unavailable", zap.String("sink", cfg.Sink), zap.Error(openErr))
	}
	return log, func() {
		_ = log.Sync()
		closeWS()
	}
}
