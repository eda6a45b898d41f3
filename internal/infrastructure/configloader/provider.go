package configloader

import (
	"github.com/bionicotaku/lingo-utils/gcpubsub"
	"github.com/bionicotaku/lingo-utils/observability"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/wire"
)

// ProviderSet exposes configuration-derived dependencies for Wire graphs.
var ProviderSet = wire.NewSet(
	ProvideServiceMetadata,
	ProvideServerConfig,
	ProvideAuthConfig,
	ProvideDatabaseConfig,
	ProvideTxManagerConfig,
	ProvideObservabilityConfig,
	ProvideMessagingConfig,
	ProvidePubSubConfig,
	ProvideOutboxConfig,
	ProvideGCSConfig,
)

// ProvideServiceMetadata returns the resolved ServiceMetadata.
func ProvideServiceMetadata(rc *RuntimeConfig) ServiceMetadata {
	if rc == nil {
		return ServiceMetadata{}
	}
	return rc.Service
}

// ProvideServerConfig returns the HTTP server section.
func ProvideServerConfig(rc *RuntimeConfig) ServerConfig {
	if rc == nil {
		return ServerConfig{}
	}
	return rc.Server
}

// ProvideAuthConfig returns the token configuration.
func ProvideAuthConfig(rc *RuntimeConfig) AuthConfig {
	if rc == nil {
		return AuthConfig{}
	}
	return rc.Auth
}

// ProvideDatabaseConfig returns the postgres section.
func ProvideDatabaseConfig(rc *RuntimeConfig) DatabaseConfig {
	if rc == nil {
		return DatabaseConfig{}
	}
	return rc.Database
}

// ProvideTxManagerConfig maps the transaction section onto txmanager.Config.
func ProvideTxManagerConfig(rc *RuntimeConfig) txmanager.Config {
	if rc == nil {
		return txmanager.Config{}
	}
	tx := rc.Database.Transaction
	return txmanager.Config{
		DefaultIsolation: tx.DefaultIsolation,
		DefaultTimeout:   tx.DefaultTimeout,
		LockTimeout:      tx.LockTimeout,
		MaxRetries:       tx.MaxRetries,
		MetricsEnabled:   tx.MetricsEnabled,
	}
}

// ProvideObservabilityConfig exposes the normalized observability configuration.
func ProvideObservabilityConfig(rc *RuntimeConfig) observability.ObservabilityConfig {
	if rc == nil {
		return observability.ObservabilityConfig{}
	}
	return rc.Observability
}

// ProvideMessagingConfig returns the messaging section.
func ProvideMessagingConfig(rc *RuntimeConfig) MessagingConfig {
	if rc == nil {
		return MessagingConfig{}
	}
	return rc.Messaging
}

// ProvidePubSubConfig maps the pubsub section onto gcpubsub.Config.
func ProvidePubSubConfig(rc *RuntimeConfig) gcpubsub.Config {
	if rc == nil {
		return gcpubsub.Config{}
	}
	ps := rc.Messaging.PubSub
	return gcpubsub.Config{
		ProjectID:          ps.ProjectID,
		TopicID:            ps.TopicID,
		EmulatorEndpoint:   ps.EmulatorEndpoint,
		OrderingKeyEnabled: &ps.OrderingKeyEnabled,
		EnableLogging:      ps.LoggingEnabled,
		EnableMetrics:      ps.MetricsEnabled,
	}
}

// ProvideOutboxConfig returns the outbox publisher section.
func ProvideOutboxConfig(rc *RuntimeConfig) OutboxConfig {
	if rc == nil {
		return OutboxConfig{}
	}
	return rc.Messaging.Outbox
}

// ProvideGCSConfig returns the poster storage section.
func ProvideGCSConfig(rc *RuntimeConfig) GCSConfig {
	if rc == nil {
		return GCSConfig{}
	}
	return rc.Storage
}
