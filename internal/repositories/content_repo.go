package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContentRepository 负责 catalog.content_items 的读写，电影与剧集共用。
type ContentRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewContentRepository 构造内容仓储。
func NewContentRepository(db *pgxpool.Pool, logger log.Logger) *ContentRepository {
	return &ContentRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// List 按过滤条件与排序键返回内容列表。
func (r *ContentRepository) List(ctx context.Context, sess txmanager.Session, kind po.ContentKind, filter ContentFilter) ([]*po.ContentItem, error) {
	query, args := BuildListQuery(kind, filter)
	rows, err := pick(r.db, sess).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[po.ContentItem])
	if err != nil {
		return nil, fmt.Errorf("scan content list: %w", err)
	}
	return items, nil
}

// FindByID 按主键查询，类型校验交给调用方。
func (r *ContentRepository) FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error) {
	return r.findOne(ctx, sess, "SELECT "+contentColumns+" FROM catalog.content_items WHERE id = $1", id)
}

// LockByID 在当前事务内对内容行加 FOR UPDATE 锁，串行化同一内容的评分聚合。
func (r *ContentRepository) LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error) {
	return r.findOne(ctx, sess, "SELECT "+contentColumns+" FROM catalog.content_items WHERE id = $1 FOR UPDATE", id)
}

func (r *ContentRepository) findOne(ctx context.Context, sess txmanager.Session, query string, id uuid.UUID) (*po.ContentItem, error) {
	rows, err := pick(r.db, sess).Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.ContentItem])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("scan content: %w", err)
	}
	return item, nil
}

// Similar 返回同类型、至少共享一个 genre 的其他内容。
func (r *ContentRepository) Similar(ctx context.Context, sess txmanager.Session, item *po.ContentItem, limit int) ([]*po.ContentItem, error) {
	if item == nil || len(item.Genres) == 0 || limit <= 0 {
		return []*po.ContentItem{}, nil
	}
	query := "SELECT " + contentColumns + ` FROM catalog.content_items
	WHERE kind = $1 AND id <> $2 AND genres && $3::text[]
	ORDER BY ` + orderByClause(SortPopularity) + ` LIMIT $4`
	rows, err := pick(r.db, sess).Query(ctx, query, string(item.Kind), item.ID, item.Genres, limit)
	if err != nil {
		return nil, fmt.Errorf("list similar content: %w", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[po.ContentItem])
	if err != nil {
		return nil, fmt.Errorf("scan similar content: %w", err)
	}
	return items, nil
}

// Create 插入新内容；派生字段由数据库默认值初始化为 0。
func (r *ContentRepository) Create(ctx context.Context, sess txmanager.Session, item *po.ContentItem) (*po.ContentItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	query := `INSERT INTO catalog.content_items (
		id, kind, title, description, poster_url, release_year, genres, platforms, cast_members,
		language, country, director, runtime_minutes, budget, revenue, end_year, creator, seasons, episodes
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	RETURNING ` + contentColumns
	rows, err := pick(r.db, sess).Query(ctx, query,
		item.ID, string(item.Kind), item.Title, item.Description, item.PosterURL, item.ReleaseYear,
		nonNilStrings(item.Genres), nonNilStrings(item.Platforms), nonNilStrings(item.Cast),
		item.Language, item.Country, item.Director, item.RuntimeMinutes, item.Budget, item.Revenue,
		item.EndYear, item.Creator, item.Seasons, item.Episodes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.ContentItem])
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert content failed: id=%s kind=%s err=%v", item.ID, item.Kind, err)
		return nil, fmt.Errorf("insert content: %w", err)
	}
	return created, nil
}

// Update 覆盖可编辑字段，不触碰 average_rating 与 rating_count。
func (r *ContentRepository) Update(ctx context.Context, sess txmanager.Session, item *po.ContentItem) (*po.ContentItem, error) {
	query := `UPDATE catalog.content_items SET
		title = $3, description = $4, poster_url = $5, release_year = $6, genres = $7, platforms = $8,
		cast_members = $9, language = $10, country = $11, director = $12, runtime_minutes = $13,
		budget = $14, revenue = $15, end_year = $16, creator = $17, seasons = $18, episodes = $19
	WHERE id = $1 AND kind = $2
	RETURNING ` + contentColumns
	rows, err := pick(r.db, sess).Query(ctx, query,
		item.ID, string(item.Kind), item.Title, item.Description, item.PosterURL, item.ReleaseYear,
		nonNilStrings(item.Genres), nonNilStrings(item.Platforms), nonNilStrings(item.Cast),
		item.Language, item.Country, item.Director, item.RuntimeMinutes, item.Budget, item.Revenue,
		item.EndYear, item.Creator, item.Seasons, item.Episodes,
	)
	if err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.ContentItem])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("update content: %w", err)
	}
	return updated, nil
}

// Delete 删除内容，评分与评论随外键级联删除。
func (r *ContentRepository) Delete(ctx context.Context, sess txmanager.Session, kind po.ContentKind, id uuid.UUID) error {
	tag, err := pick(r.db, sess).Exec(ctx, "DELETE FROM catalog.content_items WHERE id = $1 AND kind = $2", id, string(kind))
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContentNotFound
	}
	return nil
}

// RecomputeRatingAggregate 依据当前全部评分重算均值与条数，并在同一语句内写回。
func (r *ContentRepository) RecomputeRatingAggregate(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.RatingAggregate, error) {
	const query = `UPDATE catalog.content_items AS c
	SET average_rating = agg.avg_rating, rating_count = agg.cnt
	FROM (
		SELECT COALESCE(AVG(rating), 0)::double precision AS avg_rating, COUNT(*)::integer AS cnt
		FROM catalog.ratings
		WHERE content_id = $1
	) AS agg
	WHERE c.id = $1
	RETURNING c.id, c.average_rating, c.rating_count`

	var agg po.RatingAggregate
	err := pick(r.db, sess).QueryRow(ctx, query, id).Scan(&agg.ContentID, &agg.AverageRating, &agg.RatingCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("recompute rating aggregate: %w", err)
	}
	return &agg, nil
}

// CountByKind 统计某类型内容条数。
func (r *ContentRepository) CountByKind(ctx context.Context, kind po.ContentKind) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM catalog.content_items WHERE kind = $1", string(kind)).Scan(&total); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return total, nil
}
