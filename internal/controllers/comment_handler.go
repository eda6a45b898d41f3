package controllers

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers/dto"
	"github.com/bionicotaku/hidescore-services-catalog/internal/metadata"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// CommentHandler 处理评论发表与删除。
type CommentHandler struct {
	base     *BaseHandler
	comments *services.CommentService
}

// NewCommentHandler 构造评论 Handler。
func NewCommentHandler(base *BaseHandler, comments *services.CommentService) *CommentHandler {
	return &CommentHandler{base: base, comments: comments}
}

// Register 挂载评论路由。
func (h *CommentHandler) Register(r *khttp.Router) {
	r.POST("/comments", h.create)
	r.DELETE("/comments/{id}", h.delete)
}

func (h *CommentHandler) create(ctx khttp.Context) error {
	var in dto.CreateCommentRequest
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Comment/Create", ctx.Bind, &in, func(c context.Context, req *dto.CreateCommentRequest) (any, error) {
		caller, ok := metadata.CurrentUser(c)
		if !ok {
			return nil, services.ErrAuthRequired
		}
		input, err := req.ToInput(caller.UserID, caller.IsAdmin())
		if err != nil {
			return nil, err
		}
		return h.comments.CreateComment(c, input)
	})
}

func (h *CommentHandler) delete(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeCommand, "/hidescore.catalog.v1.Comment/Delete", nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		id, err := pathID(ctx, services.ErrCommentNotFound)
		if err != nil {
			return nil, err
		}
		caller := metadata.FromContext(c)
		if err := h.comments.DeleteComment(c, services.DeleteCommentInput{
			CommentID: id,
			ActorID:   caller.UserID,
			IsAdmin:   caller.IsAdmin(),
		}); err != nil {
			return nil, err
		}
		return &vo.DeleteResult{Success: true}, nil
	})
}
