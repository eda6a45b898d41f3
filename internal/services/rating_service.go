package services

import (
	"context"
	"math"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/events"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 评分取值范围（含端点）。
const (
	MinRatingValue = 0.0
	MaxRatingValue = 5.0
)

// RatingContentStore 评分聚合所需的内容行操作。
type RatingContentStore interface {
	FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error)
	LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error)
	RecomputeRatingAggregate(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.RatingAggregate, error)
}

// RatingStore 评分行的持久化行为。
type RatingStore interface {
	Upsert(ctx context.Context, sess txmanager.Session, rating *po.Rating) (*repositories.UpsertResult, error)
	FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.Rating, error)
	Update(ctx context.Context, sess txmanager.Session, id uuid.UUID, value *float64, review *string) (*po.Rating, error)
	Delete(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.Rating, error)
	ListByContent(ctx context.Context, sess txmanager.Session, contentID uuid.UUID) ([]*po.Rating, error)
	ListByUser(ctx context.Context, sess txmanager.Session, userID uuid.UUID) ([]*po.RatingWithContent, error)
}

// ContentRef 指向一条电影或剧集。
type ContentRef struct {
	Kind po.ContentKind
	ID   uuid.UUID
}

// RecordRatingInput 提交评分的输入。
type RecordRatingInput struct {
	UserID uuid.UUID
	Ref    ContentRef
	Value  float64
	Review *string
}

// UpdateRatingInput 修改评分的输入，Value/Review 至少提供一个。
type UpdateRatingInput struct {
	RatingID uuid.UUID
	ActorID  uuid.UUID
	IsAdmin  bool
	Value    *float64
	Review   *string
}

// DeleteRatingInput 删除评分的输入。
type DeleteRatingInput struct {
	RatingID uuid.UUID
	ActorID  uuid.UUID
	IsAdmin  bool
}

// RatingService 维护评分行与内容派生字段（averageRating/ratingCount）的一致性。
//
// 每次写操作都在单个事务内完成：
//  1. 对内容行加 FOR UPDATE 锁，串行化同一内容的并发评分，不同内容互不阻塞
//  2. 写入/修改/删除评分行
//  3. 依据当前全部评分重算派生字段并写回
//  4. 写入 rating.* Outbox 事件
//
// 任一步失败整体回滚，读者不会观察到计数与均值不匹配的中间状态。
type RatingService struct {
	contents  RatingContentStore
	ratings   RatingStore
	outbox    OutboxWriter
	txManager txmanager.Manager
	log       *log.Helper

	mutations        metric.Int64Counter
	recomputeFailure metric.Int64Counter
}

// NewRatingService 构造评分服务。
func NewRatingService(contents RatingContentStore, ratings RatingStore, outbox OutboxWriter, tx txmanager.Manager, logger log.Logger) *RatingService {
	meter := otel.GetMeterProvider().Meter("hidescore-catalog.ratings")
	mutations, _ := meter.Int64Counter("catalog_rating_mutations_total",
		metric.WithDescription("Rating writes committed, labelled by operation"))
	failures, _ := meter.Int64Counter("catalog_rating_recompute_failures_total",
		metric.WithDescription("Rating aggregate recomputations that failed and rolled back the write"))
	return &RatingService{
		contents:         contents,
		ratings:          ratings,
		outbox:           outbox,
		txManager:        tx,
		log:              log.NewHelper(logger),
		mutations:        mutations,
		recomputeFailure: failures,
	}
}

// RecordRating 提交评分；同一用户对同一内容重复评分时覆盖旧值。
func (s *RatingService) RecordRating(ctx context.Context, input RecordRatingInput) (*vo.RatingReceipt, error) {
	if err := validateRatingValue(input.Value); err != nil {
		return nil, err
	}
	if !input.Ref.Kind.Valid() {
		return nil, validationError("content type must be movie or series")
	}
	if input.UserID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	var (
		rating *po.Rating
		agg    *po.RatingAggregate
		kind   events.Kind
	)
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if _, err := s.lockContent(txCtx, sess, input.Ref); err != nil {
			return err
		}

		result, err := s.ratings.Upsert(txCtx, sess, &po.Rating{
			UserID:    input.UserID,
			ContentID: input.Ref.ID,
			Value:     input.Value,
			Review:    input.Review,
		})
		if err != nil {
			if errorsIs(err, repositories.ErrReferenceNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		kind = events.KindRatingUpdated
		if result.Inserted {
			kind = events.KindRatingRecorded
		}
		rating = result.Rating
		agg, err = s.recomputeAndPublish(txCtx, sess, kind, rating, input.Ref.Kind)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "record rating", err)
	}

	s.countMutation(ctx, kind, input.Ref.Kind)
	s.log.WithContext(ctx).Infof("RecordRating: rating_id=%s content=%s avg=%.4f count=%d",
		rating.ID, input.Ref.ID, agg.AverageRating, agg.RatingCount)
	return &vo.RatingReceipt{
		Rating:    vo.NewRating(rating, input.Ref.Kind),
		Aggregate: vo.NewRatingAggregate(agg),
	}, nil
}

// UpdateRating 修改评分值或评语，仅限评分作者或管理员。
func (s *RatingService) UpdateRating(ctx context.Context, input UpdateRatingInput) (*vo.RatingReceipt, error) {
	if input.Value == nil && input.Review == nil {
		return nil, validationError("no fields to update")
	}
	if input.Value != nil {
		if err := validateRatingValue(*input.Value); err != nil {
			return nil, err
		}
	}

	var (
		rating      *po.Rating
		agg         *po.RatingAggregate
		contentKind po.ContentKind
	)
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		existing, err := s.ownedRating(txCtx, sess, input.RatingID, input.ActorID, input.IsAdmin)
		if err != nil {
			return err
		}
		item, err := s.contents.LockByID(txCtx, sess, existing.ContentID)
		if err != nil {
			return err
		}
		contentKind = item.Kind

		rating, err = s.ratings.Update(txCtx, sess, existing.ID, input.Value, input.Review)
		if err != nil {
			return err
		}
		agg, err = s.recomputeAndPublish(txCtx, sess, events.KindRatingUpdated, rating, item.Kind)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "update rating", err)
	}

	s.countMutation(ctx, events.KindRatingUpdated, contentKind)
	s.log.WithContext(ctx).Infof("UpdateRating: rating_id=%s content=%s avg=%.4f count=%d",
		rating.ID, rating.ContentID, agg.AverageRating, agg.RatingCount)
	return &vo.RatingReceipt{
		Rating:    vo.NewRating(rating, contentKind),
		Aggregate: vo.NewRatingAggregate(agg),
	}, nil
}

// DeleteRating 删除评分并重算聚合，仅限评分作者或管理员。
func (s *RatingService) DeleteRating(ctx context.Context, input DeleteRatingInput) (*vo.RatingReceipt, error) {
	var (
		agg         *po.RatingAggregate
		contentKind po.ContentKind
	)
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		existing, err := s.ownedRating(txCtx, sess, input.RatingID, input.ActorID, input.IsAdmin)
		if err != nil {
			return err
		}
		item, err := s.contents.LockByID(txCtx, sess, existing.ContentID)
		if err != nil {
			return err
		}
		contentKind = item.Kind

		deleted, err := s.ratings.Delete(txCtx, sess, existing.ID)
		if err != nil {
			return err
		}
		agg, err = s.recomputeAndPublish(txCtx, sess, events.KindRatingDeleted, deleted, item.Kind)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "delete rating", err)
	}

	s.countMutation(ctx, events.KindRatingDeleted, contentKind)
	s.log.WithContext(ctx).Infof("DeleteRating: rating_id=%s content=%s avg=%.4f count=%d",
		input.RatingID, agg.ContentID, agg.AverageRating, agg.RatingCount)
	return &vo.RatingReceipt{Aggregate: vo.NewRatingAggregate(agg)}, nil
}

// ListByContent 返回某内容的全部评分，内容不存在或类型不符返回 404。
func (s *RatingService) ListByContent(ctx context.Context, ref ContentRef) ([]*vo.Rating, error) {
	var ratings []*po.Rating
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		item, err := s.contents.FindByID(txCtx, sess, ref.ID)
		if err != nil {
			return err
		}
		if item.Kind != ref.Kind {
			return ErrContentNotFound
		}
		ratings, err = s.ratings.ListByContent(txCtx, sess, ref.ID)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "list ratings", err)
	}
	return vo.NewRatingList(ratings, ref.Kind), nil
}

// ListByUser 返回用户的全部评分。
func (s *RatingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*vo.Rating, error) {
	var ratings []*po.RatingWithContent
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		ratings, err = s.ratings.ListByUser(txCtx, sess, userID)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "list user ratings", err)
	}
	return vo.NewUserRatingList(ratings), nil
}

// lockContent 锁定目标内容行；类型不符视同不存在。
func (s *RatingService) lockContent(ctx context.Context, sess txmanager.Session, ref ContentRef) (*po.ContentItem, error) {
	item, err := s.contents.LockByID(ctx, sess, ref.ID)
	if err != nil {
		return nil, err
	}
	if item.Kind != ref.Kind {
		return nil, ErrContentNotFound
	}
	return item, nil
}

// ownedRating 读取评分并校验操作者权限。
func (s *RatingService) ownedRating(ctx context.Context, sess txmanager.Session, ratingID, actorID uuid.UUID, isAdmin bool) (*po.Rating, error) {
	rating, err := s.ratings.FindByID(ctx, sess, ratingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && rating.UserID != actorID {
		return nil, ErrForbidden
	}
	return rating, nil
}

// recomputeAndPublish 重算聚合并写入事件；重算失败会让整个事务回滚。
func (s *RatingService) recomputeAndPublish(ctx context.Context, sess txmanager.Session, kind events.Kind, rating *po.Rating, contentKind po.ContentKind) (*po.RatingAggregate, error) {
	agg, err := s.contents.RecomputeRatingAggregate(ctx, sess, rating.ContentID)
	if err != nil {
		s.log.WithContext(ctx).Errorf("rating aggregate recompute failed, rolling back: content=%s rating=%s err=%v",
			rating.ContentID, rating.ID, err)
		if s.recomputeFailure != nil {
			s.recomputeFailure.Add(ctx, 1, metric.WithAttributes(attribute.String("content_kind", string(contentKind))))
		}
		return nil, err
	}

	evt, err := events.NewRatingEvent(kind, rating, contentKind, agg, uuid.New(), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := enqueueEvent(ctx, sess, s.outbox, evt); err != nil {
		return nil, err
	}
	return agg, nil
}

func (s *RatingService) countMutation(ctx context.Context, kind events.Kind, contentKind po.ContentKind) {
	if s.mutations == nil {
		return
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", mutationOperation(kind)),
		attribute.String("content_kind", string(contentKind)),
	))
}

// mutationOperation 将事件类型映射为指标上的 operation 标签。
func mutationOperation(kind events.Kind) string {
	switch kind {
	case events.KindRatingRecorded:
		return "record"
	case events.KindRatingUpdated:
		return "update"
	case events.KindRatingDeleted:
		return "delete"
	default:
		return string(kind)
	}
}

func validateRatingValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < MinRatingValue || value > MaxRatingValue {
		return validationError("rating must be between 0 and 5")
	}
	return nil
}
