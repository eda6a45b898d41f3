package controllers

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers/dto"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// UserHandler 处理注册、登录与用户公开资料。
type UserHandler struct {
	base     *BaseHandler
	users    *services.UserService
	ratings  *services.RatingService
	comments *services.CommentService
}

// NewUserHandler 构造用户 Handler。
func NewUserHandler(base *BaseHandler, users *services.UserService, ratings *services.RatingService, comments *services.CommentService) *UserHandler {
	return &UserHandler{
		base:     base,
		users:    users,
		ratings:  ratings,
		comments: comments,
	}
}

// Register 挂载认证与用户路由。
func (h *UserHandler) Register(r *khttp.Router) {
	r.POST("/auth/register", h.register)
	r.POST("/auth/login", h.login)
	r.GET("/auth/me", h.me)
	r.GET("/users/{id}/ratings", h.userRatings)
	r.GET("/users/{id}/comments", h.userComments)
}

func (h *UserHandler) register(ctx khttp.Context) error {
	var in dto.RegisterRequest
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Auth/Register", ctx.Bind, &in, func(c context.Context, req *dto.RegisterRequest) (any, error) {
		input, err := req.ToInput()
		if err != nil {
			return nil, err
		}
		return h.users.Register(c, input)
	})
}

func (h *UserHandler) login(ctx khttp.Context) error {
	var in dto.LoginRequest
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Auth/Login", ctx.Bind, &in, func(c context.Context, req *dto.LoginRequest) (any, error) {
		if err := dto.Validate(req); err != nil {
			return nil, err
		}
		return h.users.Login(c, req.Email, req.Password)
	})
}

func (h *UserHandler) me(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeQuery, "/hidescore.catalog.v1.Auth/Me", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		return h.users.Me(c)
	})
}

func (h *UserHandler) userRatings(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeQuery, "/hidescore.catalog.v1.User/ListRatings", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		id, err := pathID(ctx, services.ErrUserNotFound)
		if err != nil {
			return nil, err
		}
		return h.ratings.ListByUser(c, id)
	})
}

func (h *UserHandler) userComments(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeQuery, "/hidescore.catalog.v1.User/ListComments", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		id, err := pathID(ctx, services.ErrUserNotFound)
		if err != nil {
			return nil, err
		}
		return h.comments.ListByUser(c, id)
	})
}
