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

const ratingColumns = `id, user_id, content_id, rating, review, created_at, updated_at`

// RatingRepository 负责 catalog.ratings 的读写。
// 写方法应在持有内容行锁的事务中调用，随后由调用方触发聚合重算。
type RatingRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewRatingRepository 构造评分仓储。
func NewRatingRepository(db *pgxpool.Pool, logger log.Logger) *RatingRepository {
	return &RatingRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// UpsertResult 包含写入后的评分以及是否为首次评分。
type UpsertResult struct {
	Rating   *po.Rating
	Inserted bool
}

// Upsert 以 (user_id, content_id) 为键写入评分，重复评分覆盖旧值。
func (r *RatingRepository) Upsert(ctx context.Context, sess txmanager.Session, rating *po.Rating) (*UpsertResult, error) {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	const query = `INSERT INTO catalog.ratings (id, user_id, content_id, rating, review)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, content_id) DO UPDATE
		SET rating = EXCLUDED.rating, review = EXCLUDED.review
	RETURNING ` + ratingColumns + `, (xmax = 0) AS inserted`

	var (
		out      po.Rating
		inserted bool
	)
	err := pick(r.db, sess).QueryRow(ctx, query, rating.ID, rating.UserID, rating.ContentID, rating.Value, rating.Review).
		Scan(&out.ID, &out.UserID, &out.ContentID, &out.Value, &out.Review, &out.CreatedAt, &out.UpdatedAt, &inserted)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, ErrReferenceNotFound
		}
		r.log.WithContext(ctx).Errorf("upsert rating failed: user=%s content=%s err=%v", rating.UserID, rating.ContentID, err)
		return nil, fmt.Errorf("upsert rating: %w", err)
	}
	return &UpsertResult{Rating: &out, Inserted: inserted}, nil
}

// FindByID 按主键查询评分。
func (r *RatingRepository) FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.Rating, error) {
	rows, err := pick(r.db, sess).Query(ctx, "SELECT "+ratingColumns+" FROM catalog.ratings WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("find rating: %w", err)
	}
	rating, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.Rating])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("scan rating: %w", err)
	}
	return rating, nil
}

// Update 修改评分值与评语；value 为 nil 时保持原值。
func (r *RatingRepository) Update(ctx context.Context, sess txmanager.Session, id uuid.UUID, value *float64, review *string) (*po.Rating, error) {
	const query = `UPDATE catalog.ratings
	SET rating = COALESCE($2, rating), review = COALESCE($3, review)
	WHERE id = $1
	RETURNING ` + ratingColumns
	rows, err := pick(r.db, sess).Query(ctx, query, id, value, review)
	if err != nil {
		return nil, fmt.Errorf("update rating: %w", err)
	}
	rating, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.Rating])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("update rating: %w", err)
	}
	return rating, nil
}

// Delete 删除评分并返回被删除的记录。
func (r *RatingRepository) Delete(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.Rating, error) {
	rows, err := pick(r.db, sess).Query(ctx, "DELETE FROM catalog.ratings WHERE id = $1 RETURNING "+ratingColumns, id)
	if err != nil {
		return nil, fmt.Errorf("delete rating: %w", err)
	}
	rating, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.Rating])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("delete rating: %w", err)
	}
	return rating, nil
}

// ListByContent 返回某内容下的全部评分，最新在前。
func (r *RatingRepository) ListByContent(ctx context.Context, sess txmanager.Session, contentID uuid.UUID) ([]*po.Rating, error) {
	rows, err := pick(r.db, sess).Query(ctx,
		"SELECT "+ratingColumns+" FROM catalog.ratings WHERE content_id = $1 ORDER BY created_at DESC, id ASC", contentID)
	if err != nil {
		return nil, fmt.Errorf("list ratings by content: %w", err)
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[po.Rating])
	if err != nil {
		return nil, fmt.Errorf("scan ratings: %w", err)
	}
	return ratings, nil
}

// ListByUser 返回用户的全部评分，附带内容类型与标题。
func (r *RatingRepository) ListByUser(ctx context.Context, sess txmanager.Session, userID uuid.UUID) ([]*po.RatingWithContent, error) {
	const query = `SELECT r.id, r.user_id, r.content_id, r.rating, r.review, r.created_at, r.updated_at,
		c.kind AS content_kind, c.title AS content_title
	FROM catalog.ratings r
	JOIN catalog.content_items c ON c.id = r.content_id
	WHERE r.user_id = $1
	ORDER BY r.created_at DESC, r.id ASC`
	rows, err := pick(r.db, sess).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list ratings by user: %w", err)
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[po.RatingWithContent])
	if err != nil {
		return nil, fmt.Errorf("scan user ratings: %w", err)
	}
	return ratings, nil
}

// ContentIDsByUser 返回用户评过分的内容 ID，删除用户前用于确定需要重算的内容。
func (r *RatingRepository) ContentIDsByUser(ctx context.Context, sess txmanager.Session, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := pick(r.db, sess).Query(ctx,
		"SELECT DISTINCT content_id FROM catalog.ratings WHERE user_id = $1 ORDER BY content_id", userID)
	if err != nil {
		return nil, fmt.Errorf("list rated content ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("scan rated content ids: %w", err)
	}
	return ids, nil
}

// Count 返回评分总条数。
func (r *RatingRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM catalog.ratings").Scan(&total); err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return total, nil
}
