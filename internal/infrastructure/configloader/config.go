package configloader

import (
	"time"

	"github.com/bionicotaku/lingo-utils/observability"
)

// RuntimeConfig 是规范化后的运行时配置，供 Wire 各 Provider 拆分注入。
type RuntimeConfig struct {
	Service       ServiceMetadata
	Server        ServerConfig
	Auth          AuthConfig
	Database      DatabaseConfig
	Observability observability.ObservabilityConfig
	Messaging     MessagingConfig
	Storage       GCSConfig
	Log           LogConfig
}

// ServerConfig HTTP 服务配置。
type ServerConfig struct {
	Address   string `validate:"required"`
	Timeout   time.Duration
	Handlers  HandlerTimeouts
	RateLimit bool
}

// HandlerTimeouts 按 Handler 语义区分的超时。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

// AuthConfig 令牌签发配置。
type AuthConfig struct {
	JWTSecret string `validate:"required,min=16"`
	TokenTTL  time.Duration
	Issuer    string
}

// DatabaseConfig PostgreSQL 连接池配置。
type DatabaseConfig struct {
	DSN               string `validate:"required"`
	MaxOpenConns      int32  `validate:"gte=0"`
	MinOpenConns      int32  `validate:"gte=0"`
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	Schema            string
	PreparedStmts     bool
	Transaction       TransactionConfig
}

// TransactionConfig TxManager 默认参数。
type TransactionConfig struct {
	DefaultIsolation string `validate:"omitempty,oneof=read_committed repeatable_read serializable"`
	DefaultTimeout   time.Duration
	LockTimeout      time.Duration
	MaxRetries       int `validate:"gte=0"`
	MetricsEnabled   *bool
}

// MessagingConfig 消息投递配置。
type MessagingConfig struct {
	PubSub PubSubConfig
	Outbox OutboxConfig
}

// Enabled 判断是否配置了发布目标。
func (m MessagingConfig) Enabled() bool {
	return m.PubSub.ProjectID != "" && m.PubSub.TopicID != ""
}

// PubSubConfig Cloud Pub/Sub 发布配置。
type PubSubConfig struct {
	ProjectID          string
	TopicID            string
	EmulatorEndpoint   string
	OrderingKeyEnabled bool
	LoggingEnabled     *bool
	MetricsEnabled     *bool
}

// OutboxConfig Outbox 发布任务参数，零值由任务自身回退到默认值。
type OutboxConfig struct {
	Enabled        bool
	BatchSize      int `validate:"gte=0"`
	TickInterval   time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int `validate:"gte=0"`
	PublishTimeout time.Duration
	Workers        int `validate:"gte=0"`
	LockTTL        time.Duration
}

// GCSConfig 海报上传所需的 GCS 配置；PosterBucket 为空表示未启用。
type GCSConfig struct {
	PosterBucket         string
	SignerServiceAccount string
	UploadURLTTL         time.Duration
	PublicBaseURL        string
}

// Enabled 判断海报直传是否可用。
func (g GCSConfig) Enabled() bool {
	return g.PosterBucket != ""
}

// LogConfig 可选的滚动文件日志。
type LogConfig struct {
	FilePath   string
	MaxSizeMB  int `validate:"gte=0"`
	MaxBackups int `validate:"gte=0"`
	MaxAgeDays int `validate:"gte=0"`
	Compress   bool
}
