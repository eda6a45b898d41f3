package dto

import (
	"strings"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/google/uuid"
)

// ContentTarget 是评分与评论请求共用的目标字段，movieId 与 seriesId 必须恰好给出一个。
type ContentTarget struct {
	MovieID  string `json:"movieId"`
	SeriesID string `json:"seriesId"`
}

// Ref 解析目标内容引用。
func (t ContentTarget) Ref() (services.ContentRef, error) {
	movie := strings.TrimSpace(t.MovieID)
	series := strings.TrimSpace(t.SeriesID)
	switch {
	case movie != "" && series != "":
		return services.ContentRef{}, errors.BadRequest(services.ReasonValidation, "provide either movieId or seriesId, not both")
	case movie != "":
		return parseRef(po.ContentKindMovie, movie, "movieId")
	case series != "":
		return parseRef(po.ContentKindSeries, series, "seriesId")
	default:
		return services.ContentRef{}, errors.BadRequest(services.ReasonValidation, "movieId or seriesId is required")
	}
}

func parseRef(kind po.ContentKind, raw, field string) (services.ContentRef, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return services.ContentRef{}, errors.BadRequest(services.ReasonValidation, "invalid "+field)
	}
	return services.ContentRef{Kind: kind, ID: id}, nil
}

// ResolveSubject 校验请求体中的 userId：缺省时取调用方，给出时必须与调用方一致（管理员除外）。
func ResolveSubject(raw string, caller uuid.UUID, isAdmin bool) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return caller, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.BadRequest(services.ReasonValidation, "invalid userId")
	}
	if id != caller && !isAdmin {
		return uuid.Nil, errors.Forbidden(services.ReasonForbidden, "userId does not match the authenticated user")
	}
	return id, nil
}

// CreateRatingRequest 对应 POST /api/ratings。
type CreateRatingRequest struct {
	UserID string `json:"userId"`
	ContentTarget
	Rating *float64 `json:"rating" validate:"required,gte=0,lte=5"`
	Review *string  `json:"review" validate:"omitempty,max=5000"`
}

// ToInput 转换为服务层输入。
func (r *CreateRatingRequest) ToInput(caller uuid.UUID, isAdmin bool) (services.RecordRatingInput, error) {
	if err := Validate(r); err != nil {
		return services.RecordRatingInput{}, err
	}
	ref, err := r.Ref()
	if err != nil {
		return services.RecordRatingInput{}, err
	}
	userID, err := ResolveSubject(r.UserID, caller, isAdmin)
	if err != nil {
		return services.RecordRatingInput{}, err
	}
	return services.RecordRatingInput{UserID: userID, Ref: ref, Value: *r.Rating, Review: r.Review}, nil
}

// UpdateRatingRequest 对应 PUT /api/ratings/{id}。
type UpdateRatingRequest struct {
	Rating *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Review *string  `json:"review" validate:"omitempty,max=5000"`
}
