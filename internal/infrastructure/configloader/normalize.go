package configloader

import (
	"fmt"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-utils/observability"
)

// durationParser 逐个解析时长字段，保留第一个错误及其字段路径。
type durationParser struct {
	err error
}

func (p *durationParser) parse(field, raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" || p.err != nil {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", field, err)
		return 0
	}
	if d < 0 {
		p.err = fmt.Errorf("%s: must not be negative", field)
		return 0
	}
	return d
}

// normalize 将文件结构转换为 RuntimeConfig，并填充默认值。
func normalize(fc *fileConfig) (RuntimeConfig, error) {
	var p durationParser
	rc := RuntimeConfig{}

	rc.Server = ServerConfig{
		Address: firstNonEmpty(fc.Server.HTTP.Addr, defaultHTTPAddr),
		Timeout: p.parse("server.http.timeout", fc.Server.HTTP.Timeout),
		Handlers: HandlerTimeouts{
			Default: p.parse("server.handlers.default_timeout", fc.Server.Handlers.DefaultTimeout),
			Command: p.parse("server.handlers.command_timeout", fc.Server.Handlers.CommandTimeout),
			Query:   p.parse("server.handlers.query_timeout", fc.Server.Handlers.QueryTimeout),
		},
		RateLimit: fc.Server.RateLimit,
	}

	rc.Auth = AuthConfig{
		JWTSecret: fc.Server.Auth.JWTSecret,
		TokenTTL:  p.parse("server.auth.token_ttl", fc.Server.Auth.TokenTTL),
		Issuer:    fc.Server.Auth.Issuer,
	}
	if rc.Auth.TokenTTL == 0 {
		rc.Auth.TokenTTL = defaultTokenTTL
	}

	pg := fc.Data.Postgres
	rc.Database = DatabaseConfig{
		DSN:               pg.DSN,
		MaxOpenConns:      pg.MaxOpenConns,
		MinOpenConns:      pg.MinOpenConns,
		MaxConnLifetime:   p.parse("data.postgres.max_conn_lifetime", pg.MaxConnLifetime),
		MaxConnIdleTime:   p.parse("data.postgres.max_conn_idle_time", pg.MaxConnIdleTime),
		HealthCheckPeriod: p.parse("data.postgres.health_check_period", pg.HealthCheckPeriod),
		Schema:            pg.Schema,
		PreparedStmts:     pg.EnablePreparedStatements,
		Transaction: TransactionConfig{
			DefaultIsolation: pg.Transaction.DefaultIsolation,
			DefaultTimeout:   p.parse("data.postgres.transaction.default_timeout", pg.Transaction.DefaultTimeout),
			LockTimeout:      p.parse("data.postgres.transaction.lock_timeout", pg.Transaction.LockTimeout),
			MaxRetries:       pg.Transaction.MaxRetries,
			MetricsEnabled:   pg.Transaction.MetricsEnabled,
		},
	}

	rc.Observability = observability.ObservabilityConfig{
		GlobalAttributes: mapCopy(fc.Observability.GlobalAttributes),
	}
	if tr := fc.Observability.Tracing; tr != nil {
		rc.Observability.Tracing = &observability.TracingConfig{
			Enabled:       tr.Enabled,
			Exporter:      tr.Exporter,
			Endpoint:      tr.Endpoint,
			Headers:       mapCopy(tr.Headers),
			Insecure:      tr.Insecure,
			SamplingRatio: tr.SamplingRatio,
			BatchTimeout:  p.parse("observability.tracing.batch_timeout", tr.BatchTimeout),
			ExportTimeout: p.parse("observability.tracing.export_timeout", tr.ExportTimeout),
			Required:      tr.Required,
		}
	}
	if mt := fc.Observability.Metrics; mt != nil {
		rc.Observability.Metrics = &observability.MetricsConfig{
			Enabled:             mt.Enabled,
			Exporter:            mt.Exporter,
			Endpoint:            mt.Endpoint,
			Headers:             mapCopy(mt.Headers),
			Insecure:            mt.Insecure,
			Interval:            p.parse("observability.metrics.interval", mt.Interval),
			DisableRuntimeStats: mt.DisableRuntimeStats,
			Required:            mt.Required,
		}
	}

	ps := fc.Messaging.PubSub
	ob := fc.Messaging.Outbox
	rc.Messaging = MessagingConfig{
		PubSub: PubSubConfig{
			ProjectID:          ps.ProjectID,
			TopicID:            ps.TopicID,
			EmulatorEndpoint:   ps.EmulatorEndpoint,
			OrderingKeyEnabled: ps.OrderingKeyEnabled,
			LoggingEnabled:     ps.LoggingEnabled,
			MetricsEnabled:     ps.MetricsEnabled,
		},
		Outbox: OutboxConfig{
			Enabled:        ob.Enabled,
			BatchSize:      ob.BatchSize,
			TickInterval:   p.parse("messaging.outbox.tick_interval", ob.TickInterval),
			InitialBackoff: p.parse("messaging.outbox.initial_backoff", ob.InitialBackoff),
			MaxBackoff:     p.parse("messaging.outbox.max_backoff", ob.MaxBackoff),
			MaxAttempts:    ob.MaxAttempts,
			PublishTimeout: p.parse("messaging.outbox.publish_timeout", ob.PublishTimeout),
			Workers:        ob.Workers,
			LockTTL:        p.parse("messaging.outbox.lock_ttl", ob.LockTTL),
		},
	}

	gcs := fc.Storage.GCS
	rc.Storage = GCSConfig{
		PosterBucket:         gcs.PosterBucket,
		SignerServiceAccount: gcs.SignerServiceAccount,
		UploadURLTTL:         p.parse("storage.gcs.upload_url_ttl", gcs.UploadURLTTL),
		PublicBaseURL:        strings.TrimSuffix(gcs.PublicBaseURL, "/"),
	}
	if rc.Storage.UploadURLTTL == 0 {
		rc.Storage.UploadURLTTL = defaultPosterUploadTTL
	}

	rc.Log = LogConfig{
		FilePath:   fc.Log.File.Path,
		MaxSizeMB:  fc.Log.File.MaxSizeMB,
		MaxBackups: fc.Log.File.MaxBackups,
		MaxAgeDays: fc.Log.File.MaxAgeDays,
		Compress:   fc.Log.File.Compress,
	}

	if p.err != nil {
		return RuntimeConfig{}, p.err
	}
	return rc, nil
}

func mapCopy(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
