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

const commentWithAuthorSelect = `SELECT cm.id, cm.user_id, cm.content_id, cm.content, cm.created_at, cm.updated_at,
	u.display_name AS author_name, c.kind AS content_kind
FROM catalog.comments cm
JOIN catalog.users u ON u.id = cm.user_id
JOIN catalog.content_items c ON c.id = cm.content_id`

// CommentRepository 负责 catalog.comments 的读写。
type CommentRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewCommentRepository 构造评论仓储。
func NewCommentRepository(db *pgxpool.Pool, logger log.Logger) *CommentRepository {
	return &CommentRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// Create 写入评论。
func (r *CommentRepository) Create(ctx context.Context, sess txmanager.Session, comment *po.Comment) (*po.Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	const query = `INSERT INTO catalog.comments (id, user_id, content_id, content)
	VALUES ($1, $2, $3, $4)
	RETURNING id, user_id, content_id, content, created_at, updated_at`
	rows, err := pick(r.db, sess).Query(ctx, query, comment.ID, comment.UserID, comment.ContentID, comment.Content)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.Comment])
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, ErrReferenceNotFound
		}
		r.log.WithContext(ctx).Errorf("insert comment failed: user=%s content=%s err=%v", comment.UserID, comment.ContentID, err)
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return created, nil
}

// FindByID 按主键查询评论。
func (r *CommentRepository) FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.Comment, error) {
	rows, err := pick(r.db, sess).Query(ctx,
		"SELECT id, user_id, content_id, content, created_at, updated_at FROM catalog.comments WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	comment, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[po.Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return comment, nil
}

// Delete 删除评论。
func (r *CommentRepository) Delete(ctx context.Context, sess txmanager.Session, id uuid.UUID) error {
	tag, err := pick(r.db, sess).Exec(ctx, "DELETE FROM catalog.comments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListByContent 返回内容下的评论，最新在前。
func (r *CommentRepository) ListByContent(ctx context.Context, sess txmanager.Session, contentID uuid.UUID) ([]*po.CommentWithAuthor, error) {
	return r.list(ctx, sess, commentWithAuthorSelect+" WHERE cm.content_id = $1 ORDER BY cm.created_at DESC, cm.id ASC", contentID)
}

// ListByUser 返回用户发表的评论，最新在前。
func (r *CommentRepository) ListByUser(ctx context.Context, sess txmanager.Session, userID uuid.UUID) ([]*po.CommentWithAuthor, error) {
	return r.list(ctx, sess, commentWithAuthorSelect+" WHERE cm.user_id = $1 ORDER BY cm.created_at DESC, cm.id ASC", userID)
}

func (r *CommentRepository) list(ctx context.Context, sess txmanager.Session, query string, id uuid.UUID) ([]*po.CommentWithAuthor, error) {
	rows, err := pick(r.db, sess).Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[po.CommentWithAuthor])
	if err != nil {
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	return comments, nil
}
