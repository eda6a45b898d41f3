package controllers

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/controllers/dto"
	"github.com/bionicotaku/hidescore-services-catalog/internal/metadata"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

const (
	operationRatingCreate = "/hidescore.catalog.v1.Rating/Create"
	operationRatingUpdate = "/hidescore.catalog.v1.Rating/Update"
	operationRatingDelete = "/hidescore.catalog.v1.Rating/Delete"
)

// RatingHandler 处理评分写入；聚合重算由 RatingService 在同一事务内完成。
type RatingHandler struct {
	base    *BaseHandler
	ratings *services.RatingService
}

// NewRatingHandler 构造评分 Handler。
func NewRatingHandler(base *BaseHandler, ratings *services.RatingService) *RatingHandler {
	return &RatingHandler{base: base, ratings: ratings}
}

// Register 挂载评分路由。
func (h *RatingHandler) Register(r *khttp.Router) {
	r.POST("/ratings", h.create)
	r.PUT("/ratings/{id}", h.update)
	r.DELETE("/ratings/{id}", h.delete)
}

func (h *RatingHandler) create(ctx khttp.Context) error {
	var in dto.CreateRatingRequest
	return serve(h.base, ctx, HandlerTypeCommand, operationRatingCreate, ctx.Bind, &in, func(c context.Context, req *dto.CreateRatingRequest) (any, error) {
		caller, ok := metadata.CurrentUser(c)
		if !ok {
			return nil, services.ErrAuthRequired
		}
		input, err := req.ToInput(caller.UserID, caller.IsAdmin())
		if err != nil {
			return nil, err
		}
		return h.ratings.RecordRating(c, input)
	})
}

func (h *RatingHandler) update(ctx khttp.Context) error {
	var in dto.UpdateRatingRequest
	return serve(h.base, ctx, HandlerTypeCommand, operationRatingUpdate, ctx.Bind, &in, func(c context.Context, req *dto.UpdateRatingRequest) (any, error) {
		id, err := pathID(ctx, services.ErrRatingNotFound)
		if err != nil {
			return nil, err
		}
		if err := dto.Validate(req); err != nil {
			return nil, err
		}
		caller := metadata.FromContext(c)
		return h.ratings.UpdateRating(c, services.UpdateRatingInput{
			RatingID: id,
			ActorID:  caller.UserID,
			IsAdmin:  caller.IsAdmin(),
			Value:    req.Rating,
			Review:   req.Review,
		})
	})
}

func (h *RatingHandler) delete(ctx khttp.Context) error {
	return serve(h.base, ctx, HandlerTypeCommand, operationRatingDelete, nil, &emptyRequest{}, func(c context.Context, _ *emptyRequest) (any, error) {
		id, err := pathID(ctx, services.ErrRatingNotFound)
		if err != nil {
			return nil, err
		}
		caller := metadata.FromContext(c)
		receipt, err := h.ratings.DeleteRating(c, services.DeleteRatingInput{
			RatingID: id,
			ActorID:  caller.UserID,
			IsAdmin:  caller.IsAdmin(),
		})
		if err != nil {
			return nil, err
		}
		return &deleteRatingResponse{Success: true, Aggregate: receipt.Aggregate}, nil
	})
}

type deleteRatingResponse struct {
	Success   bool                `json:"success"`
	Aggregate *vo.RatingAggregate `json:"aggregate"`
}
