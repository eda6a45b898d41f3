package controllers

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers/dto"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// AdminHandler 管理后台路由，访问控制由 casbin 中间件在进入 Handler 前完成。
type AdminHandler struct {
	base     *BaseHandler
	query    *services.ContentQueryService
	commands *services.ContentCommandService
	users    *services.UserService
	admin    *services.AdminService
}

// NewAdminHandler 构造管理后台 Handler。
func NewAdminHandler(base *BaseHandler, query *services.ContentQueryService, commands *services.ContentCommandService, users *services.UserService, admin *services.AdminService) *AdminHandler {
	return &AdminHandler{
		base:     base,
		query:    query,
		commands: commands,
		users:    users,
		admin:    admin,
	}
}

// Register 挂载 /admin 下的路由。
func (h *AdminHandler) Register(r *khttp.Router) {
	for _, kind := range []po.ContentKind{po.ContentKindMovie, po.ContentKindSeries} {
		prefix := "/admin" + collectionPath(kind)
		r.GET(prefix, h.listContent(kind))
		r.POST(prefix, h.createContent(kind))
		r.PUT(prefix+"/{id}", h.updateContent(kind))
		r.DELETE(prefix+"/{id}", h.deleteContent(kind))
	}
	r.GET("/admin/users", h.listUsers)
	r.POST("/admin/users", h.createUser)
	r.PUT("/admin/users/{id}", h.updateUser)
	r.DELETE("/admin/users/{id}", h.deleteUser)
	r.GET("/admin/stats", h.stats)
	r.POST("/admin/posters/upload-url", h.posterUploadURL)
}

func (h *AdminHandler) listContent(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in dto.ContentListQuery
		return serve(h.base, ctx, HandlerTypeQuery, contentOperation(kind, "AdminList"), ctx.BindQuery, &in, func(c context.Context, q *dto.ContentListQuery) (any, error) {
			filter, err := q.ToFilter()
			if err != nil {
				return nil, err
			}
			return h.query.ListContent(c, kind, filter)
		})
	}
}

func (h *AdminHandler) createContent(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in dto.ContentRequest
		return serve(h.base, ctx, HandlerTypeCommand, contentOperation(kind, "Create"), ctx.Bind, &in, func(c context.Context, req *dto.ContentRequest) (any, error) {
			input, err := req.ToInput()
			if err != nil {
				return nil, err
			}
			return h.commands.CreateContent(c, kind, input)
		})
	}
}

func (h *AdminHandler) updateContent(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in dto.ContentRequest
		return serve(h.base, ctx, HandlerTypeCommand, contentOperation(kind, "Update"), ctx.Bind, &in, func(c context.Context, req *dto.ContentRequest) (any, error) {
			id, err := pathID(ctx, services.ErrContentNotFound)
			if err != nil {
				return nil, err
			}
			input, err := req.ToInput()
			if err != nil {
				return nil, err
			}
			return h.commands.UpdateContent(c, services.ContentRef{Kind: kind, ID: id}, input)
		})
	}
}

func (h *AdminHandler) deleteContent(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		return serve(h.base, ctx, HandlerTypeCommand, contentOperation(kind, "Delete"), nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
			id, err := pathID(ctx, services.ErrContentNotFound)
			if err != nil {
				return nil, err
			}
			if err := h.commands.DeleteContent(c, services.ContentRef{Kind: kind, ID: id}); err != nil {
				return nil, err
			}
			return &vo.DeleteResult{Success: true}, nil
		})
	}
}

func (h *AdminHandler) listUsers(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeQuery, "/hidescore.catalog.v1.Admin/ListUsers", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		return h.users.ListUsers(c)
	})
}

func (h *AdminHandler) createUser(ctx khttp.Context) error {
	var in dto.CreateUserRequest
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Admin/CreateUser", ctx.Bind, &in, func(c context.Context, req *dto.CreateUserRequest) (any, error) {
		input, err := req.ToInput()
		if err != nil {
			return nil, err
		}
		return h.users.CreateUser(c, input)
	})
}

func (h *AdminHandler) updateUser(ctx khttp.Context) error {
	var in dto.UpdateUserRequest
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Admin/UpdateUser", ctx.Bind, &in, func(c context.Context, req *dto.UpdateUserRequest) (any, error) {
		id, err := pathID(ctx, services.ErrUserNotFound)
		if err != nil {
			return nil, err
		}
		if err := dto.Validate(req); err != nil {
			return nil, err
		}
		return h.users.UpdateUser(c, services.UpdateUserInput{
			UserID:      id,
			DisplayName: req.DisplayName,
			PhotoURL:    req.PhotoURL,
			IsAdmin:     req.IsAdmin,
		})
	})
}

func (h *AdminHandler) deleteUser(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Admin/DeleteUser", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		id, err := pathID(ctx, services.ErrUserNotFound)
		if err != nil {
			return nil, err
		}
		if err := h.users.DeleteUser(c, id); err != nil {
			return nil, err
		}
		return &vo.DeleteResult{Success: true}, nil
	})
}

func (h *AdminHandler) stats(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeQuery, "/hidescore.catalog.v1.Admin/Stats", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		return h.admin.Stats(c)
	})
}

func (h *AdminHandler) posterUploadURL(ctx khttp.Context) error {
	var in dto.PosterUploadRequest
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Admin/PosterUploadURL", ctx.Bind, &in, func(c context.Context, req *dto.PosterUploadRequest) (any, error) {
		if err := dto.Validate(req); err != nil {
			return nil, err
		}
		return h.admin.PosterUploadURL(c, services.PosterUploadInput{
			Kind:        po.ContentKind(req.Type),
			ContentType: req.ContentType,
			FileName:    req.FileName,
		})
	})
}
