package events

import (
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/google/uuid"
)

// ContentChanged 描述内容的创建、更新或删除。
type ContentChanged struct {
	ContentID   uuid.UUID      `json:"contentId"`
	Kind        po.ContentKind `json:"kind"`
	Title       string         `json:"title,omitempty"`
	ReleaseYear int32          `json:"releaseYear,omitempty"`
	Genres      []string       `json:"genres,omitempty"`
	Platforms   []string       `json:"platforms,omitempty"`
}

// NewContentEvent 基于内容实体构建 content.* 事件。
func NewContentEvent(kind Kind, item *po.ContentItem, eventID uuid.UUID, occurredAt time.Time) (*DomainEvent, error) {
	switch kind {
	case KindContentCreated, KindContentUpdated, KindContentDeleted:
	default:
		return nil, ErrUnsupportedKind
	}
	if item == nil {
		return nil, ErrNilContent
	}
	if eventID == uuid.Nil {
		return nil, ErrInvalidEventID
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	payload := &ContentChanged{
		ContentID: item.ID,
		Kind:      item.Kind,
	}
	if kind != KindContentDeleted {
		payload.Title = item.Title
		payload.ReleaseYear = item.ReleaseYear
		payload.Genres = append([]string(nil), item.Genres...)
		payload.Platforms = append([]string(nil), item.Platforms...)
	}

	return &DomainEvent{
		EventID:       eventID,
		Kind:          kind,
		AggregateID:   item.ID,
		AggregateType: AggregateTypeContent,
		Version:       VersionFromTime(occurredAt),
		OccurredAt:    occurredAt.UTC(),
		Payload:       payload,
	}, nil
}
