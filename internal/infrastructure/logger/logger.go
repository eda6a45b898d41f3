package logger

import (
	"context"

	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"

	gclog "github.com/bionicotaku/lingo-utils/gclog"
	"github.com/go-kratos/kratos/v2/log"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config captures runtime metadata used to annotate logs.
type Config struct {
	Service string
	Version string
	HostID  string
	Env     string
	File    FileConfig
}

// FileConfig 可选的滚动文件输出；Path 为空时只写 stdout。
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewLogger builds a Kratos-compatible logger with trace/span enrichment.
// The returned cleanup closes the rolling file sink when one is configured.
func NewLogger(cfg Config) (log.Logger, func(), error) {
	baseLogger, err := gclog.NewLogger(
		gclog.WithService(cfg.Service),
		gclog.WithVersion(cfg.Version),
		gclog.WithEnvironment(cfg.Env),
		gclog.WithStaticLabels(map[string]string{"service.id": cfg.HostID}),
		gclog.EnableSourceLocation(),
	)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var sink log.Logger = baseLogger
	if cfg.File.Path != "" {
		roller := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		fileLogger := log.With(log.NewStdLogger(roller),
			"ts", log.DefaultTimestamp,
			"service", cfg.Service,
		)
		sink = log.MultiLogger(baseLogger, fileLogger)
		cleanup = func() { _ = roller.Close() }
	}

	return log.With(
		sink,
		"trace_id", log.Valuer(func(ctx context.Context) interface{} {
			sc := trace.SpanContextFromContext(ctx)
			if sc.HasTraceID() {
				return sc.TraceID().String()
			}
			return ""
		}),
		"span_id", log.Valuer(func(ctx context.Context) interface{} {
			sc := trace.SpanContextFromContext(ctx)
			if sc.HasSpanID() {
				return sc.SpanID().String()
			}
			return ""
		}),
	), cleanup, nil
}

// ConfigFromRuntime derives logger settings from the loaded runtime config.
func ConfigFromRuntime(meta configloader.ServiceMetadata, lc configloader.LogConfig) Config {
	return Config{
		Service: meta.Name,
		Version: meta.Version,
		HostID:  meta.InstanceID,
		Env:     meta.Environment,
		File: FileConfig{
			Path:       lc.FilePath,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAgeDays: lc.MaxAgeDays,
			Compress:   lc.Compress,
		},
	}
}

// ProvideLogger 供 Wire 使用。
func ProvideLogger(rc *configloader.RuntimeConfig) (log.Logger, func(), error) {
	return NewLogger(ConfigFromRuntime(rc.Service, rc.Log))
}
