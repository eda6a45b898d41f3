package outbox

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"go.opentelemetry.io/otel"
)

const meterName = "hidescore-catalog.outbox"

// ProviderSet 暴露 Outbox 发布任务及其 kratos Server 包装。
var ProviderSet = wire.NewSet(ProvidePublisherTask, ProvideServer)

// ConfigFrom 将运行时配置映射为任务配置。
// 启用 ordering key 时同一聚合的事件必须按领取顺序发布，因此只保留一个 worker。
func ConfigFrom(msg configloader.MessagingConfig) Config {
	ob := msg.Outbox
	cfg := Config{
		BatchSize:      ob.BatchSize,
		TickInterval:   ob.TickInterval,
		InitialBackoff: ob.InitialBackoff,
		MaxBackoff:     ob.MaxBackoff,
		MaxAttempts:    ob.MaxAttempts,
		PublishTimeout: ob.PublishTimeout,
		Workers:        ob.Workers,
		LockTTL:        ob.LockTTL,
	}
	if msg.PubSub.OrderingKeyEnabled {
		cfg.Workers = 1
	}
	return cfg
}

// ProvidePublisherTask 构造 Pub/Sub 发布器与任务；未启用 outbox 或缺少 topic 时返回 nil。
func ProvidePublisherTask(
	ctx context.Context,
	repo *repositories.OutboxRepository,
	msg configloader.MessagingConfig,
	pubCfg gcpubsub.Config,
	logger log.Logger,
) (*PublisherTask, func(), error) {
	noop := func() {}
	if repo == nil || logger == nil || !msg.Outbox.Enabled {
		return nil, noop, nil
	}
	if pubCfg.TopicID == "" || !msg.Enabled() {
		log.NewHelper(logger).Warn("outbox enabled but messaging.pubsub topic is not configured; publisher disabled")
		return nil, noop, nil
	}

	component, cleanup, err := gcpubsub.NewComponent(ctx, pubCfg, gcpubsub.Dependencies{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	meter := otel.GetMeterProvider().Meter(meterName)
	return NewPublisherTask(repo, gcpubsub.ProvidePublisher(component), ConfigFrom(msg), logger, meter), cleanup, nil
}

// ProvideServer 将发布任务接入 kratos App；任务未启用时返回 nil。
func ProvideServer(task *PublisherTask, logger log.Logger) *Server {
	if task == nil {
		return nil
	}
	return NewServer(task, logger)
}
