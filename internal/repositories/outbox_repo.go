package repositories

import (
	"context"
	"fmt"
	"time"

	outboxpkg "github.com/bionicotaku/lingo-utils/outbox"
	"github.com/bionicotaku/lingo-utils/outbox/store"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxSchema 是 outbox_events 所在的 schema。
const OutboxSchema = "catalog"

// OutboxMessage 描述需要写入 outbox_events 的事件数据，Headers 即 Pub/Sub attributes。
type OutboxMessage = store.Message

// OutboxRepository 提供写入 Outbox 表的能力，确保与 TxManager Session 协作。
// 领取、发布与重试由共享 store 承担，经 Shared 交给发布任务。
type OutboxRepository struct {
	delegate *store.Repository
	log      *log.Helper
}

// NewOutboxRepository 构造 Repository。
func NewOutboxRepository(db *pgxpool.Pool, logger log.Logger) *OutboxRepository {
	helper := log.NewHelper(logger)
	storeRepo, err := outboxpkg.NewRepository(db, logger, outboxpkg.RepositoryOptions{Schema: OutboxSchema})
	if err != nil {
		helper.Errorw("msg", "init outbox repository failed", "error", err)
		storeRepo = store.NewRepository(db, logger)
	}
	return &OutboxRepository{
		delegate: storeRepo,
		log:      helper,
	}
}

// Enqueue 在指定事务内插入 Outbox 事件。
func (r *OutboxRepository) Enqueue(ctx context.Context, sess txmanager.Session, msg OutboxMessage) error {
	// 统一 AvailableAt 为 UTC，缺省时自动填当前时间，方便调度器排序。
	if msg.AvailableAt.IsZero() {
		msg.AvailableAt = time.Now()
	}
	msg.AvailableAt = msg.AvailableAt.UTC()
	if msg.Headers == nil {
		msg.Headers = map[string]string{}
	}

	if err := r.delegate.Enqueue(ctx, sess, msg); err != nil {
		r.log.WithContext(ctx).Errorf("insert outbox event failed: event_id=%s err=%v", msg.EventID, err)
		return fmt.Errorf("insert outbox event: %w", err)
	}

	r.log.WithContext(ctx).Debugf("outbox event enqueued: aggregate=%s id=%s type=%s", msg.AggregateType, msg.AggregateID, msg.EventType)
	return nil
}

// Shared 暴露底层共享仓储，供发布任务领取与回写事件状态。
func (r *OutboxRepository) Shared() *store.Repository {
	return r.delegate
}
