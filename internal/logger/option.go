package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/oshokin/usb-relay/internal/config"
)

// FileSink describes a rotating log file.
type FileSink struct {
	// Path is the log file location.
	Path string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int
}

// WithFileSink is an option that tees every entry at or above level into a rotating
// JSON log file, independently of the console level.
//
//nolint:ireturn,nolintlint // Returning zap.Option is intended for zap integration.
func WithFileSink(sink FileSink, level zapcore.LevelEnabler) zap.Option {
	option, _ := withFileSink(sink, level)

	return option
}

// withFileSink also returns the rotating writer so the caller can close it.
func withFileSink(sink FileSink, level zapcore.LevelEnabler) (zap.Option, *lumberjack.Logger) {
	writer := &lumberjack.Logger{
		Filename:   sink.Path,
		MaxSize:    sink.MaxSizeMB,
		MaxBackups: sink.MaxBackups,
		MaxAge:     sink.MaxAgeDays,
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	fileCore := zapcore.NewCore(encoder, zapcore.AddSync(writer), level)

	option := zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})

	return option, writer
}

// Configure applies the logging settings to the global logger and returns a function
// that flushes and closes the log file and restores the previous global logger.
// ok is false when the configured level could not be parsed and the default was kept.
func Configure(settings *config.LogConfig) (closeFn func() error, ok bool) {
	level, ok := ParseLogLevel(settings.Level)
	if ok {
		SetLevel(level)
	}

	if settings.File == "" {
		return func() error { return nil }, ok
	}

	sink := FileSink{
		Path:       settings.File,
		MaxSizeMB:  settings.MaxSizeMB,
		MaxBackups: settings.MaxBackups,
		MaxAgeDays: settings.MaxAgeDays,
	}

	option, writer := withFileSink(sink, zapcore.DebugLevel)
	previous := Logger()
	configured := New(defaultLevel, option)

	SetLogger(configured)

	return func() error {
		//nolint: errcheck // Syncing stderr fails on some terminals; the file is closed below.
		configured.Sync()

		SetLogger(previous)

		return writer.Close()
	}, ok
}
