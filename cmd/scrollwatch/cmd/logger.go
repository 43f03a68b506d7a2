package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-drift/scrollwatch/cmd/scrollwatch/internal/config"
	"github.com/go-drift/scrollwatch/pkg/errors"
)

// newLogger builds the CLI logger. Errors always go to stderr; records below
// error level go to logFile when set, stderr otherwise. The returned close
// function flushes the logger and closes the file.
func newLogger(cfg config.LogConfig, logFile string) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= level
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= level
	})

	errWriter := zapcore.AddSync(stderr)
	infoWriter := errWriter
	var file *os.File
	if logFile != "" {
		file, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		infoWriter = zapcore.AddSync(file)
	}

	var encoder zapcore.Encoder
	if cfg.JSON {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.RFC3339TimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(errWriter), isErrorLevel),
		zapcore.NewCore(encoder, zapcore.Lock(infoWriter), isInfoLevel),
	)
	logger := zap.New(core, zap.AddCaller())
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: level == zapcore.DebugLevel})

	closer := func() {
		_ = logger.Sync()
		if file != nil {
			file.Close()
		}
	}
	return logger, closer, nil
}
