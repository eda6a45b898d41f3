// Package events 提供领域事件构造与元数据辅助函数，统一事件命名与属性。
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	// AggregateTypeContent 标识内容聚合类型，评分事件同样挂在内容聚合上。
	AggregateTypeContent = "content"
	// SchemaVersionV1 描述事件载荷的当前 schema 版本。
	SchemaVersionV1 = "v1"
)

// Kind 为语义化事件类型（如 rating.recorded）。
type Kind string

// 事件类型常量
const (
	KindRatingRecorded Kind = "rating.recorded"
	KindRatingUpdated  Kind = "rating.updated"
	KindRatingDeleted  Kind = "rating.deleted"
	KindContentCreated Kind = "content.created"
	KindContentUpdated Kind = "content.updated"
	KindContentDeleted Kind = "content.deleted"
)

// DomainEvent 是写入 Outbox 的事件信封。
type DomainEvent struct {
	EventID       uuid.UUID `json:"eventId"`
	Kind          Kind      `json:"eventType"`
	AggregateID   uuid.UUID `json:"aggregateId"`
	AggregateType string    `json:"aggregateType"`
	Version       int64     `json:"version"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       any       `json:"payload"`
}

// Marshal 将事件信封编码为 JSON，作为 outbox.payload 与 Pub/Sub 消息体。
func Marshal(evt *DomainEvent) ([]byte, error) {
	if evt == nil {
		return nil, ErrNilEvent
	}
	return json.Marshal(evt)
}

// BuildAttributes 构造符合 Pub/Sub 约定的 message attributes。
func BuildAttributes(evt *DomainEvent, schemaVersion string, traceID string) map[string]string {
	if schemaVersion == "" {
		schemaVersion = SchemaVersionV1
	}
	attrs := map[string]string{
		"event_id":       evt.EventID.String(),
		"event_type":     string(evt.Kind),
		"aggregate_id":   evt.AggregateID.String(),
		"aggregate_type": evt.AggregateType,
		"version":        strconv.FormatInt(evt.Version, 10),
		"occurred_at":    evt.OccurredAt.UTC().Format(time.RFC3339),
		"schema_version": schemaVersion,
	}
	if traceID != "" {
		attrs["trace_id"] = traceID
	}
	return attrs
}

// TraceIDFromContext 提取 OTel Trace ID，若不存在返回空字符串。
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() || !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// VersionFromTime 根据时间戳计算聚合版本号，采用 UTC 微秒时间，保证单调递增。
func VersionFromTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixMicro()
}
