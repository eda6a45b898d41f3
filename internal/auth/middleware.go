package auth

import (
	"context"
	"strings"

	"github.com/bionicotaku/hidescore-services-catalog/internal/metadata"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "bearer "
)

var (
	// ErrInvalidToken 令牌格式错误、签名不符或已过期。
	ErrInvalidToken = errors.Unauthorized("TOKEN_INVALID", "invalid or expired token")
	// ErrAuthRequired 匿名访问受保护路由。
	ErrAuthRequired = errors.Unauthorized("AUTH_REQUIRED", "authentication required")
	// ErrForbidden 已登录但权限不足。
	ErrForbidden = errors.Forbidden("FORBIDDEN", "insufficient permissions")
)

// Authenticate 解析 Authorization: Bearer 令牌并注入调用方身份；缺失令牌视为匿名。
func Authenticate(tokens *TokenManager, logger log.Logger) middleware.Middleware {
	helper := log.NewHelper(logger)
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			id := metadata.Anonymous()
			if tr, ok := transport.FromServerContext(ctx); ok {
				if raw := strings.TrimSpace(tr.RequestHeader().Get(authorizationHeader)); raw != "" {
					token, ok := bearerToken(raw)
					if !ok {
						return nil, ErrInvalidToken
					}
					claims, err := tokens.Validate(token)
					if err != nil {
						helper.WithContext(ctx).Debugf("reject token: %v", err)
						return nil, ErrInvalidToken
					}
					id, err = claims.Identity()
					if err != nil {
						helper.WithContext(ctx).Warnf("reject token claims: %v", err)
						return nil, ErrInvalidToken
					}
				}
			}
			return next(metadata.Inject(ctx, id), req)
		}
	}
}

// Authorize 按 casbin 策略校验当前路由；匿名被拒返回 401，已登录被拒返回 403。
func Authorize(enforcer *Enforcer, logger log.Logger) middleware.Middleware {
	helper := log.NewHelper(logger)
	return func(next middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return next(ctx, req)
			}
			ht, ok := tr.(khttp.Transporter)
			if !ok {
				return next(ctx, req)
			}
			path := ht.PathTemplate()
			if path == "" {
				path = ht.Request().URL.Path
			}
			method := ht.Request().Method

			id := metadata.FromContext(ctx)
			allowed, err := enforcer.Allow(id.Role, path, method)
			if err != nil {
				helper.WithContext(ctx).Errorf("authorize failed: role=%s path=%s method=%s err=%v", id.Role, path, method, err)
				return nil, errors.InternalServer("AUTHZ_FAILED", "authorization check failed").WithCause(err)
			}
			if !allowed {
				if !id.Authenticated() {
					return nil, ErrAuthRequired
				}
				return nil, ErrForbidden
			}
			return next(ctx, req)
		}
	}
}

func bearerToken(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
