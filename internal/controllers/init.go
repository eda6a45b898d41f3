package controllers

import (
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"
)

// ProviderSet exposes controller/handler constructors for DI.
var ProviderSet = wire.NewSet(
	ProvideBaseHandler,
	NewContentHandler,
	NewRatingHandler,
	NewCommentHandler,
	NewUserHandler,
	NewAdminHandler,
	NewRoutes,
)

// RouteRegistrar 由各 Handler 实现，向 /api 路由组挂载自身路由。
type RouteRegistrar interface {
	Register(r *khttp.Router)
}

// Routes 汇总全部 Handler，由 HTTP Server 统一挂载。
type Routes struct {
	registrars []RouteRegistrar
}

// NewRoutes 聚合 Handler；注册顺序即路由匹配顺序。
func NewRoutes(content *ContentHandler, ratings *RatingHandler, comments *CommentHandler, users *UserHandler, admin *AdminHandler) *Routes {
	return &Routes{registrars: []RouteRegistrar{content, ratings, comments, users, admin}}
}

// Register 将全部路由挂载到给定前缀下。
func (r *Routes) Register(router *khttp.Router) {
	if r == nil {
		return
	}
	for _, registrar := range r.registrars {
		registrar.Register(router)
	}
}
