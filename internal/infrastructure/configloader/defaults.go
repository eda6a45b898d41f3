package configloader

import "time"

const (
	// defaultConfPath is the fallback configuration directory when no overrides are provided.
	defaultConfPath = "configs"
	// defaultServiceName is used when SERVICE_NAME is missing.
	defaultServiceName = "hidescore-catalog"
	// defaultServiceVersion is used when SERVICE_VERSION is missing.
	defaultServiceVersion = "dev"
	// defaultEnvironment is used when APP_ENV is missing.
	defaultEnvironment = "development"
	// defaultHTTPAddr is the listen address when server.http.addr is empty.
	defaultHTTPAddr = "0.0.0.0:8080"
	// defaultTokenTTL bounds issued session tokens.
	defaultTokenTTL = 24 * time.Hour
	// defaultPosterUploadTTL is the lifetime of poster upload signed URLs.
	defaultPosterUploadTTL = 15 * time.Minute
)
