package configloader

// fileConfig 映射 YAML 配置文件结构，时长字段为字符串（如 "5s"），由 normalize 解析。
type fileConfig struct {
	Server        fileServer        `json:"server"`
	Data          fileData          `json:"data"`
	Observability fileObservability `json:"observability"`
	Messaging     fileMessaging     `json:"messaging"`
	Storage       fileStorage       `json:"storage"`
	Log           fileLog           `json:"log"`
}

type fileServer struct {
	HTTP struct {
		Addr    string `json:"addr"`
		Timeout string `json:"timeout"`
	} `json:"http"`
	Handlers struct {
		DefaultTimeout string `json:"default_timeout"`
		CommandTimeout string `json:"command_timeout"`
		QueryTimeout   string `json:"query_timeout"`
	} `json:"handlers"`
	Auth struct {
		JWTSecret string `json:"jwt_secret"`
		TokenTTL  string `json:"token_ttl"`
		Issuer    string `json:"issuer"`
	} `json:"auth"`
	RateLimit bool `json:"rate_limit"`
}

type fileData struct {
	Postgres struct {
		DSN                      string `json:"dsn"`
		MaxOpenConns             int32  `json:"max_open_conns"`
		MinOpenConns             int32  `json:"min_open_conns"`
		MaxConnLifetime          string `json:"max_conn_lifetime"`
		MaxConnIdleTime          string `json:"max_conn_idle_time"`
		HealthCheckPeriod        string `json:"health_check_period"`
		Schema                   string `json:"schema"`
		EnablePreparedStatements bool   `json:"enable_prepared_statements"`
		Transaction              struct {
			DefaultIsolation string `json:"default_isolation"`
			DefaultTimeout   string `json:"default_timeout"`
			LockTimeout      string `json:"lock_timeout"`
			MaxRetries       int    `json:"max_retries"`
			MetricsEnabled   *bool  `json:"metrics_enabled"`
		} `json:"transaction"`
	} `json:"postgres"`
}

type fileObservability struct {
	GlobalAttributes map[string]string `json:"global_attributes"`
	Tracing          *struct {
		Enabled       bool              `json:"enabled"`
		Exporter      string            `json:"exporter"`
		Endpoint      string            `json:"endpoint"`
		Headers       map[string]string `json:"headers"`
		Insecure      bool              `json:"insecure"`
		SamplingRatio float64           `json:"sampling_ratio"`
		BatchTimeout  string            `json:"batch_timeout"`
		ExportTimeout string            `json:"export_timeout"`
		Required      bool              `json:"required"`
	} `json:"tracing"`
	Metrics *struct {
		Enabled             bool              `json:"enabled"`
		Exporter            string            `json:"exporter"`
		Endpoint            string            `json:"endpoint"`
		Headers             map[string]string `json:"headers"`
		Insecure            bool              `json:"insecure"`
		Interval            string            `json:"interval"`
		DisableRuntimeStats bool              `json:"disable_runtime_stats"`
		Required            bool              `json:"required"`
	} `json:"metrics"`
}

type fileMessaging struct {
	PubSub struct {
		ProjectID          string `json:"project_id"`
		TopicID            string `json:"topic_id"`
		EmulatorEndpoint   string `json:"emulator_endpoint"`
		OrderingKeyEnabled bool   `json:"ordering_key_enabled"`
		LoggingEnabled     *bool  `json:"logging_enabled"`
		MetricsEnabled     *bool  `json:"metrics_enabled"`
	} `json:"pubsub"`
	Outbox struct {
		Enabled        bool   `json:"enabled"`
		BatchSize      int    `json:"batch_size"`
		TickInterval   string `json:"tick_interval"`
		InitialBackoff string `json:"initial_backoff"`
		MaxBackoff     string `json:"max_backoff"`
		MaxAttempts    int    `json:"max_attempts"`
		PublishTimeout string `json:"publish_timeout"`
		Workers        int    `json:"workers"`
		LockTTL        string `json:"lock_ttl"`
	} `json:"outbox"`
}

type fileStorage struct {
	GCS struct {
		PosterBucket         string `json:"poster_bucket"`
		SignerServiceAccount string `json:"signer_service_account"`
		UploadURLTTL         string `json:"upload_url_ttl"`
		PublicBaseURL        string `json:"public_base_url"`
	} `json:"gcs"`
}

type fileLog struct {
	File struct {
		Path       string `json:"path"`
		MaxSizeMB  int    `json:"max_size_mb"`
		MaxBackups int    `json:"max_backups"`
		MaxAgeDays int    `json:"max_age_days"`
		Compress   bool   `json:"compress"`
	} `json:"file"`
}
