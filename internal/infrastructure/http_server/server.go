// Package httpserver wires the inbound REST server and its middleware stack.
package httpserver

import (
	"context"
	stdhttp "net/http"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/auth"
	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers"
	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"

	obsTrace "github.com/bionicotaku/lingo-utils/observability/tracing"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metrics"
	"github.com/go-kratos/kratos/v2/middleware/ratelimit"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	apiPrefix    = "/api"
	readyTimeout = 2 * time.Second
)

// Pinger 用于 readiness 检查，*pgxpool.Pool 满足该接口。
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHTTPServer 构造 REST Server：中间件顺序为 tracing → recovery → logging → metrics → ratelimit → 认证 → 授权。
func NewHTTPServer(
	cfg configloader.ServerConfig,
	telemetry *Telemetry,
	pool *pgxpool.Pool,
	tokens *auth.TokenManager,
	enforcer *auth.Enforcer,
	routes *controllers.Routes,
	logger log.Logger,
) *khttp.Server {
	var pinger Pinger
	if pool != nil {
		pinger = pool
	}
	return newServer(cfg, telemetry, pinger, tokens, enforcer, routes, logger)
}

func newServer(
	cfg configloader.ServerConfig,
	telemetry *Telemetry,
	pinger Pinger,
	tokens *auth.TokenManager,
	enforcer *auth.Enforcer,
	routes *controllers.Routes,
	logger log.Logger,
) *khttp.Server {
	chain := []middleware.Middleware{
		obsTrace.Server(),
		recovery.Recovery(),
		logging.Server(logger),
	}
	if telemetry != nil {
		chain = append(chain, metrics.Server(
			metrics.WithRequests(telemetry.RequestCounter),
			metrics.WithSeconds(telemetry.SecondsHistogram),
		))
	}
	if cfg.RateLimit {
		chain = append(chain, ratelimit.Server())
	}
	chain = append(chain,
		auth.Authenticate(tokens, logger),
		auth.Authorize(enforcer, logger),
	)

	opts := []khttp.ServerOption{
		khttp.Middleware(chain...),
		khttp.ErrorEncoder(ErrorEncoder),
		khttp.NotFoundHandler(stdhttp.HandlerFunc(notFound)),
		khttp.MethodNotAllowedHandler(stdhttp.HandlerFunc(methodNotAllowed)),
	}
	if cfg.Address != "" {
		opts = append(opts, khttp.Address(cfg.Address))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, khttp.Timeout(cfg.Timeout))
	}

	srv := khttp.NewServer(opts...)

	srv.Handle("/healthz", stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
	}))
	srv.Handle("/readyz", readinessHandler(pinger, logger))
	if handler := telemetry.MetricsHandler(); handler != nil {
		srv.Handle(metricsEndpointPrefix, handler)
	}

	routes.Register(srv.Route(apiPrefix))
	return srv
}

func readinessHandler(pinger Pinger, logger log.Logger) stdhttp.Handler {
	helper := log.NewHelper(logger)
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if pinger == nil {
			w.WriteHeader(stdhttp.StatusOK)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			helper.WithContext(ctx).Warnf("readiness check failed: %v", err)
			w.WriteHeader(stdhttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(stdhttp.StatusOK)
	})
}
