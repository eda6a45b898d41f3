package controllers

import (
	"context"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
)

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写模型命令 Handler。
	HandlerTypeCommand
	// HandlerTypeQuery 表示读模型查询 Handler。
	HandlerTypeQuery
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

const (
	fallbackDefaultTimeout = 5 * time.Second
	fallbackQueryTimeout   = 3 * time.Second
)

// BaseHandler 提供公共的超时与参数解析能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(timeouts HandlerTimeouts) *BaseHandler {
	if timeouts.Default <= 0 {
		if timeouts.Command > 0 {
			timeouts.Default = timeouts.Command
		} else if timeouts.Query > 0 {
			timeouts.Default = timeouts.Query
		} else {
			timeouts.Default = fallbackDefaultTimeout
		}
	}
	if timeouts.Command <= 0 {
		timeouts.Command = timeouts.Default
	}
	if timeouts.Query <= 0 {
		if timeouts.Default > 0 {
			timeouts.Query = timeouts.Default
		} else {
			timeouts.Query = fallbackQueryTimeout
		}
	}
	return &BaseHandler{timeouts: timeouts}
}

// ProvideBaseHandler 从服务配置构造 BaseHandler。
func ProvideBaseHandler(cfg configloader.ServerConfig) *BaseHandler {
	return NewBaseHandler(HandlerTimeouts{
		Default: cfg.Handlers.Default,
		Command: cfg.Handlers.Command,
		Query:   cfg.Handlers.Query,
	})
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	if h == nil {
		return context.WithTimeout(ctx, fallbackDefaultTimeout)
	}
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Timeouts 返回生效的超时配置。
func (h *BaseHandler) Timeouts() HandlerTimeouts {
	if h == nil {
		return HandlerTimeouts{}
	}
	return h.timeouts
}

// binder 将请求体或查询串解码到目标结构，通常是 ctx.Bind 或 ctx.BindQuery。
type binder func(any) error

// serve 是各路由共用的执行骨架：请求先经过服务端中间件链（鉴权、授权），
// 链内再解码参数并按类型施加超时，因此匿名请求携带畸形参数时仍先得到 401/403。
func serve[T any](base *BaseHandler, ctx khttp.Context, kind HandlerType, operation string, bind binder, in *T, call func(context.Context, *T) (any, error)) error {
	khttp.SetOperation(ctx, operation)
	h := ctx.Middleware(func(c context.Context, req any) (any, error) {
		typed := req.(*T)
		if bind != nil {
			if err := bind(typed); err != nil {
				return nil, err
			}
		}
		timeoutCtx, cancel := base.WithTimeout(c, kind)
		defer cancel()
		return call(timeoutCtx, typed)
	})
	out, err := h(ctx, in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// pathID 解析路径中的 {id}；无法解析的 ID 不可能存在，直接按 notFound 返回。
func pathID(ctx khttp.Context, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Vars().Get("id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// bodyID 解析请求体中的 ID 字段。
func bodyID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.BadRequest(services.ReasonValidation, "invalid "+field)
	}
	return id, nil
}
