package auth

import (
	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	"github.com/google/wire"
)

// ProviderSet 暴露认证与授权组件。
var ProviderSet = wire.NewSet(
	ProvideTokenManager,
	NewEnforcer,
)

// ProvideTokenManager 从运行时配置构造 TokenManager。
func ProvideTokenManager(cfg configloader.AuthConfig) (*TokenManager, error) {
	return NewTokenManager(TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.TokenTTL,
		Issuer: cfg.Issuer,
	})
}
