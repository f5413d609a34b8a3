// Package logger builds the application zap logger from config.
package logger

import (
	"fmt"
	"os"
	"shortlink-backend/internal/config"
	"shortlink-backend/pkg/remotelog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

// New returns the logger for env. Console output is always on; a rotating
// JSON file and the remote collector are added when configured.
// The returned shipper is nil unless remote logging is enabled and must be
// stopped by the caller on shutdown.
func New(env string, cfg config.Logging) (*zap.Logger, *remotelog.Shipper, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(env), zapcore.Lock(os.Stdout), level),
	}

	if cfg.File.Path != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder(), zapcore.AddSync(rotator), level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if env == envLocal || env == envDev {
		opts = append(opts, zap.Development())
	}

	local := zap.New(zapcore.NewTee(cores...), opts...)

	if !cfg.Remote.Enabled {
		return local, nil, nil
	}
	if cfg.Remote.URL == "" {
		return nil, nil, fmt.Errorf("remote logging enabled without url")
	}

	remoteLevel, err := zapcore.ParseLevel(cfg.Remote.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid remote log level %q: %w", cfg.Remote.Level, err)
	}

	// the shipper falls back to the local-only logger so failures never loop back into it
	shipper := remotelog.New(remotelog.Config{
		URL:         cfg.Remote.URL,
		Timeout:     cfg.Remote.Timeout,
		WorkerCount: cfg.Remote.Workers,
		BufferSize:  cfg.Remote.BufferSize,
	}, local.Named("remotelog"))
	if err := shipper.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start remote log shipper: %w", err)
	}

	tee := zapcore.NewTee(local.Core(), remotelog.NewCore(shipper, cfg.Remote.Stack, remoteLevel))
	return zap.New(tee, opts...), shipper, nil
}

func consoleEncoder(env string) zapcore.Encoder {
	if env == envLocal {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encCfg)
	}
	return jsonEncoder()
}

func jsonEncoder() zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(encCfg)
}
