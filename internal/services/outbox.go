package services

import (
	"context"
	"fmt"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/events"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
)

// OutboxWriter 定义 Outbox 写入行为，须与业务写入处于同一事务。
type OutboxWriter interface {
	Enqueue(ctx context.Context, sess txmanager.Session, msg repositories.OutboxMessage) error
}

// enqueueEvent 编码领域事件并写入 Outbox，属性中携带 trace_id 便于链路追踪。
func enqueueEvent(ctx context.Context, sess txmanager.Session, outbox OutboxWriter, evt *events.DomainEvent) error {
	if outbox == nil {
		return nil
	}
	payload, err := events.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.Kind, err)
	}
	headers := events.BuildAttributes(evt, events.SchemaVersionV1, events.TraceIDFromContext(ctx))
	msg := repositories.OutboxMessage{
		EventID:       evt.EventID,
		AggregateType: evt.AggregateType,
		AggregateID:   evt.AggregateID,
		EventType:     string(evt.Kind),
		Payload:       payload,
		Headers:       headers,
		AvailableAt:   evt.OccurredAt,
	}
	if err := outbox.Enqueue(ctx, sess, msg); err != nil {
		return fmt.Errorf("enqueue %s event: %w", evt.Kind, err)
	}
	return nil
}
