package services

import (
	"context"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// SimilarLimit 相似内容最多返回条数。
	SimilarLimit = 4
	// TrendingLimit 热门列表条数。
	TrendingLimit = 12
	// RecommendationLimit 推荐位每种类型条数。
	RecommendationLimit = 4
)

// ContentReader 内容读模型依赖。
type ContentReader interface {
	List(ctx context.Context, sess txmanager.Session, kind po.ContentKind, filter repositories.ContentFilter) ([]*po.ContentItem, error)
	FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error)
	Similar(ctx context.Context, sess txmanager.Session, item *po.ContentItem, limit int) ([]*po.ContentItem, error)
}

// ContentQueryService 封装电影/剧集的只读用例。
type ContentQueryService struct {
	repo      ContentReader
	txManager txmanager.Manager
	log       *log.Helper
}

// NewContentQueryService 构造内容查询服务。
func NewContentQueryService(repo ContentReader, tx txmanager.Manager, logger log.Logger) *ContentQueryService {
	return &ContentQueryService{
		repo:      repo,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// ListContent 按过滤与排序条件返回列表。
func (s *ContentQueryService) ListContent(ctx context.Context, kind po.ContentKind, filter repositories.ContentFilter) ([]*vo.Content, error) {
	if !kind.Valid() {
		return nil, validationError("content type must be movie or series")
	}
	if filter.YearFrom != nil && filter.YearTo != nil && *filter.YearFrom > *filter.YearTo {
		return nil, validationError("yearFrom must not be greater than yearTo")
	}
	if filter.RatingFrom != nil && filter.RatingTo != nil && *filter.RatingFrom > *filter.RatingTo {
		return nil, validationError("ratingFrom must not be greater than ratingTo")
	}

	var items []*po.ContentItem
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		items, err = s.repo.List(txCtx, sess, kind, filter)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "list "+string(kind), err)
	}
	return vo.NewContentList(items), nil
}

// GetContent 按 ID 返回单条内容，类型不符视为不存在。
func (s *ContentQueryService) GetContent(ctx context.Context, ref ContentRef) (*vo.Content, error) {
	var item *po.ContentItem
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		item, err = s.findTyped(txCtx, sess, ref)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "get "+string(ref.Kind), err)
	}
	return vo.NewContent(item), nil
}

// SimilarContent 返回至多 4 条同类型、共享至少一个 genre 的其他内容。
func (s *ContentQueryService) SimilarContent(ctx context.Context, ref ContentRef) ([]*vo.Content, error) {
	var items []*po.ContentItem
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		item, err := s.findTyped(txCtx, sess, ref)
		if err != nil {
			return err
		}
		items, err = s.repo.Similar(txCtx, sess, item, SimilarLimit)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "similar "+string(ref.Kind), err)
	}
	return vo.NewContentList(items), nil
}

// Trending 返回评分人数最多的内容。
func (s *ContentQueryService) Trending(ctx context.Context, kind po.ContentKind) ([]*vo.Content, error) {
	return s.ListContent(ctx, kind, repositories.ContentFilter{Sort: repositories.SortPopularity, Limit: TrendingLimit})
}

// Recommendations 返回评分最高的电影与剧集各 4 条，作为推荐位占位实现。
func (s *ContentQueryService) Recommendations(ctx context.Context) (*vo.Recommendations, error) {
	out := &vo.Recommendations{}
	filter := repositories.ContentFilter{Sort: repositories.SortRating, Limit: RecommendationLimit}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies, err := s.ListContent(gctx, po.ContentKindMovie, filter)
		out.Movies = movies
		return err
	})
	g.Go(func() error {
		series, err := s.ListContent(gctx, po.ContentKindSeries, filter)
		out.Series = series
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ContentQueryService) findTyped(ctx context.Context, sess txmanager.Session, ref ContentRef) (*po.ContentItem, error) {
	item, err := s.repo.FindByID(ctx, sess, ref.ID)
	if err != nil {
		return nil, err
	}
	if item.Kind != ref.Kind {
		return nil, ErrContentNotFound
	}
	return item, nil
}
