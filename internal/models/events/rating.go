package events

import (
	"errors"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/google/uuid"
)

var (
	// ErrNilEvent 表示事件信封为空。
	ErrNilEvent = errors.New("event builder: event is nil")
	// ErrNilRating 在构建事件时评分实体为空。
	ErrNilRating = errors.New("event builder: rating is nil")
	// ErrNilAggregate 在构建评分事件时缺少聚合快照。
	ErrNilAggregate = errors.New("event builder: rating aggregate is nil")
	// ErrNilContent 在构建事件时内容实体为空。
	ErrNilContent = errors.New("event builder: content is nil")
	// ErrInvalidEventID 表示未提供合法的事件 ID。
	ErrInvalidEventID = errors.New("event builder: event id is required")
	// ErrUnsupportedKind 表示事件类型与构造函数不匹配。
	ErrUnsupportedKind = errors.New("event builder: unsupported event kind")
)

// RatingChanged 描述一次评分变更及变更后的聚合结果。
type RatingChanged struct {
	RatingID      uuid.UUID      `json:"ratingId"`
	UserID        uuid.UUID      `json:"userId"`
	ContentID     uuid.UUID      `json:"contentId"`
	ContentKind   po.ContentKind `json:"contentKind"`
	Rating        *float64       `json:"rating,omitempty"` // 删除事件为空
	AverageRating float64        `json:"averageRating"`
	RatingCount   int32          `json:"ratingCount"`
}

// NewRatingEvent 基于评分与重算后的聚合构建 rating.* 事件。
func NewRatingEvent(kind Kind, rating *po.Rating, contentKind po.ContentKind, agg *po.RatingAggregate, eventID uuid.UUID, occurredAt time.Time) (*DomainEvent, error) {
	switch kind {
	case KindRatingRecorded, KindRatingUpdated, KindRatingDeleted:
	default:
		return nil, ErrUnsupportedKind
	}
	if rating == nil {
		return nil, ErrNilRating
	}
	if agg == nil {
		return nil, ErrNilAggregate
	}
	if eventID == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	payload := &RatingChanged{
		RatingID:      rating.ID,
		UserID:        rating.UserID,
		ContentID:     rating.ContentID,
		ContentKind:   contentKind,
		AverageRating: agg.AverageRating,
		RatingCount:   agg.RatingCount,
	}
	if kind != KindRatingDeleted {
		value := rating.Value
		payload.Rating = &value
	}

	return &DomainEvent{
		EventID:       eventID,
		Kind:          kind,
		AggregateID:   rating.ContentID,
		AggregateType: AggregateTypeContent,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt.UTC(),
		Payload:       payload,
	}, nil
}
