package vo

import (
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/google/uuid"
)

// Rating 评分视图；movieId 与 seriesId 恰有一个非空。
type Rating struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	MovieID      *uuid.UUID `json:"movieId"`
	SeriesID     *uuid.UUID `json:"seriesId"`
	Rating       float64    `json:"rating"`
	Review       *string    `json:"review"`
	ContentTitle string     `json:"contentTitle,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// RatingAggregate 评分变更后的内容派生字段。
type RatingAggregate struct {
	ContentID     uuid.UUID `json:"contentId"`
	AverageRating float64   `json:"averageRating"`
	RatingCount   int32     `json:"ratingCount"`
}

// RatingReceipt 是评分写操作的返回：评分本身与重算后的聚合。
type RatingReceipt struct {
	Rating    *Rating          `json:"rating,omitempty"`
	Aggregate *RatingAggregate `json:"aggregate"`
}

// NewRating 根据内容类型填充 movieId/seriesId。
func NewRating(r *po.Rating, kind po.ContentKind) *Rating {
	if r == nil {
		return nil
	}
	view := &Rating{
		ID:        r.ID,
		UserID:    r.UserID,
		Rating:    r.Value,
		Review:    r.Review,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	contentID := r.ContentID
	if kind == po.ContentKindSeries {
		view.SeriesID = &contentID
	} else {
		view.MovieID = &contentID
	}
	return view
}

// NewRatingList 转换某一内容下的评分。
func NewRatingList(ratings []*po.Rating, kind po.ContentKind) []*Rating {
	out := make([]*Rating, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, NewRating(r, kind))
	}
	return out
}

// NewUserRatingList 转换用户评分列表，每条自带内容类型。
func NewUserRatingList(ratings []*po.RatingWithContent) []*Rating {
	out := make([]*Rating, 0, len(ratings))
	for _, r := range ratings {
		if r == nil {
			continue
		}
		view := NewRating(&r.Rating, r.ContentKind)
		view.ContentTitle = r.ContentTitle
		out = append(out, view)
	}
	return out
}

// NewRatingAggregate 转换聚合快照。
func NewRatingAggregate(agg *po.RatingAggregate) *RatingAggregate {
	if agg == nil {
		return nil
	}
	return &RatingAggregate{
		ContentID:     agg.ContentID,
		AverageRating: agg.AverageRating,
		RatingCount:   agg.RatingCount,
	}
}
