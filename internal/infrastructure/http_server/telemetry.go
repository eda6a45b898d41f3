package httpserver

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	kmetrics "github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexp "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	defaultMeterName      = "hidescore-catalog"
	meterShutdownTimeout  = 5 * time.Second
	metricsEndpointPrefix = "/metrics"
)

// Telemetry 持有 HTTP 请求指标与 /metrics 使用的 Prometheus registry。
// MeterProvider 同时被设为全局 provider，评分聚合与 outbox 任务的计数器都汇入同一 registry。
type Telemetry struct {
	MeterProvider      *sdkmetric.MeterProvider
	RequestCounter     metric.Int64Counter
	SecondsHistogram   metric.Float64Histogram
	PrometheusRegistry *prometheus.Registry
}

// NewTelemetry 按服务元信息构建指标管线：Prometheus registry ← OTel exporter ← MeterProvider。
func NewTelemetry(meta configloader.ServiceMetadata, logger log.Logger) (*Telemetry, func(), error) {
	registry := newRegistry()
	exporter, err := promexp.New(
		promexp.WithRegisterer(registry),
		promexp.WithoutUnits(),
	)
	if err != nil {
		return nil, nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(serviceResource(meta)),
		sdkmetric.WithView(kmetrics.DefaultSecondsHistogramView(kmetrics.DefaultServerSecondsHistogramName)),
	)
	otel.SetMeterProvider(mp)

	meterName := meta.Name
	if meterName == "" {
		meterName = defaultMeterName
	}
	meter := mp.Meter(meterName)

	requests, err := kmetrics.DefaultRequestsCounter(meter, kmetrics.DefaultServerRequestsCounterName)
	if err != nil {
		return nil, nil, err
	}
	seconds, err := kmetrics.DefaultSecondsHistogram(meter, kmetrics.DefaultServerSecondsHistogramName)
	if err != nil {
		return nil, nil, err
	}

	helper := log.NewHelper(logger)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), meterShutdownTimeout)
		defer cancel()
		if err := mp.Shutdown(ctx); err != nil {
			helper.Warnf("shutdown meter provider: %v", err)
		}
	}

	return &Telemetry{
		MeterProvider:      mp,
		RequestCounter:     requests,
		SecondsHistogram:   seconds,
		PrometheusRegistry: registry,
	}, cleanup, nil
}

// MetricsHandler 返回 /metrics 的抓取 Handler；未启用 registry 时返回 nil。
func (t *Telemetry) MetricsHandler() stdhttp.Handler {
	if t == nil || t.PrometheusRegistry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.PrometheusRegistry, promhttp.HandlerOpts{})
}

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return registry
}

// serviceResource 把服务名、版本与环境挂到每条指标的 target_info 上。
func serviceResource(meta configloader.ServiceMetadata) *resource.Resource {
	attrs := []attribute.KeyValue{attribute.String("service.name", defaultMeterName)}
	if meta.Name != "" {
		attrs[0] = attribute.String("service.name", meta.Name)
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("service.version", meta.Version))
	}
	if meta.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", meta.Environment))
	}
	if meta.InstanceID != "" {
		attrs = append(attrs, attribute.String("service.instance.id", meta.InstanceID))
	}
	return resource.NewSchemaless(attrs...)
}
