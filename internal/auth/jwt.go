// Package auth 负责调用方认证（JWT + bcrypt）与基于 casbin 的路由授权。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/metadata"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultTokenTTL = 24 * time.Hour
	minSecretLength = 16
)

// Claims 为签发令牌携带的声明；Subject 为用户 ID。
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity 将声明转换为调用方身份。
func (c *Claims) Identity() (metadata.Identity, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return metadata.Identity{}, fmt.Errorf("invalid subject: %w", err)
	}
	role := metadata.Role(c.Role)
	if role != metadata.RoleUser && role != metadata.RoleAdmin {
		return metadata.Identity{}, fmt.Errorf("invalid role %q", c.Role)
	}
	return metadata.Identity{UserID: userID, Email: c.Email, Role: role}, nil
}

// TokenConfig 令牌签发参数。
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// TokenManager 负责 HS256 令牌的签发与校验。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenOption 定义可选配置。
type TokenOption func(*TokenManager)

// WithTokenClock 覆盖时间获取函数，便于测试。
func WithTokenClock(clock func() time.Time) TokenOption {
	return func(m *TokenManager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// NewTokenManager 构造 TokenManager，secret 过短时拒绝启动。
func NewTokenManager(cfg TokenConfig, opts ...TokenOption) (*TokenManager, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	m := &TokenManager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue 为用户签发令牌，返回令牌与过期时间。
func (m *TokenManager) Issue(id metadata.Identity) (string, time.Time, error) {
	if id.UserID == uuid.Nil {
		return "", time.Time{}, errors.New("issue token: user id is required")
	}
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := &Claims{
		Email: id.Email,
		Role:  string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate 校验签名、算法与有效期，返回声明。
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(m.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
