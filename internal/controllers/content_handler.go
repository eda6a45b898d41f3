package controllers

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers/dto"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// emptyRequest 用于没有请求体与查询参数的路由。
type emptyRequest struct{}

// ContentHandler 暴露电影/剧集的公开读接口。
type ContentHandler struct {
	base     *BaseHandler
	query    *services.ContentQueryService
	ratings  *services.RatingService
	comments *services.CommentService
}

// NewContentHandler 构造内容读 Handler。
func NewContentHandler(base *BaseHandler, query *services.ContentQueryService, ratings *services.RatingService, comments *services.CommentService) *ContentHandler {
	return &ContentHandler{
		base:     base,
		query:    query,
		ratings:  ratings,
		comments: comments,
	}
}

// Register 挂载路由；/trending 必须先于 /{id} 注册。
func (h *ContentHandler) Register(r *khttp.Router) {
	for _, kind := range []po.ContentKind{po.ContentKindMovie, po.ContentKindSeries} {
		prefix := collectionPath(kind)
		r.GET(prefix, h.list(kind))
		r.GET(prefix+"/trending", h.trending(kind))
		r.GET(prefix+"/{id}", h.get(kind))
		r.GET(prefix+"/{id}/similar", h.similar(kind))
		r.GET(prefix+"/{id}/ratings", h.listRatings(kind))
		r.GET(prefix+"/{id}/comments", h.listComments(kind))
	}
	r.GET("/recommendations", h.recommendations())
}

func (h *ContentHandler) list(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		var in dto.ContentListQuery
		return serve(h.base, ctx, HandlerTypeQuery, contentOperation(kind, "List"), ctx.BindQuery, &in, func(c context.Context, q *dto.ContentListQuery) (any, error) {
			filter, err := q.ToFilter()
			if err != nil {
				return nil, err
			}
			return h.query.ListContent(c, kind, filter)
		})
	}
}

func (h *ContentHandler) trending(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		return serve(h.base, ctx, HandlerTypeQuery, contentOperation(kind, "Trending"), nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
			return h.query.Trending(c, kind)
		})
	}
}

func (h *ContentHandler) get(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		return serve(h.base, ctx, HandlerTypeQuery, contentOperation(kind, "Get"), nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
			id, err := pathID(ctx, services.ErrContentNotFound)
			if err != nil {
				return nil, err
			}
			return h.query.GetContent(c, services.ContentRef{Kind: kind, ID: id})
		})
	}
}

func (h *ContentHandler) similar(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		return serve(h.base, ctx, HandlerTypeQuery, contentOperation(kind, "Similar"), nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
			id, err := pathID(ctx, services.ErrContentNotFound)
			if err != nil {
				return nil, err
			}
			return h.query.SimilarContent(c, services.ContentRef{Kind: kind, ID: id})
		})
	}
}

func (h *ContentHandler) listRatings(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		return serve(h.base, ctx, HandlerTypeQuery, contentOperation(kind, "ListRatings"), nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
			id, err := pathID(ctx, services.ErrContentNotFound)
			if err != nil {
				return nil, err
			}
			return h.ratings.ListByContent(c, services.ContentRef{Kind: kind, ID: id})
		})
	}
}

func (h *ContentHandler) listComments(kind po.ContentKind) khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		return serve(h.base, ctx, HandlerTypeQuery, contentOperation(kind, "ListComments"), nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
			id, err := pathID(ctx, services.ErrContentNotFound)
			if err != nil {
				return nil, err
			}
			return h.comments.ListByContent(c, services.ContentRef{Kind: kind, ID: id})
		})
	}
}

func (h *ContentHandler) recommendations() khttp.HandlerFunc {
	return func(ctx khttp.Context) error {
		return serve(h.base, ctx, HandlerTypeQuery, "/hidescore.catalog.v1.Content/Recommendations", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
			return h.query.Recommendations(c)
		})
	}
}

func collectionPath(kind po.ContentKind) string {
	if kind == po.ContentKindSeries {
		return "/series"
	}
	return "/movies"
}

func contentOperation(kind po.ContentKind, method string) string {
	if kind == po.ContentKindSeries {
		return "/hidescore.catalog.v1.Series/" + method
	}
	return "/hidescore.catalog.v1.Movie/" + method
}
