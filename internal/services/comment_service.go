package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// MaxCommentLength 评论正文最大字符数。
const MaxCommentLength = 2000

// CommentStore 评论持久化行为。
type CommentStore interface {
	Create(ctx context.Context, sess txmanager.Session, comment *po.Comment) (*po.Comment, error)
	FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.Comment, error)
	Delete(ctx context.Context, sess txmanager.Session, id uuid.UUID) error
	ListByContent(ctx context.Context, sess txmanager.Session, contentID uuid.UUID) ([]*po.CommentWithAuthor, error)
	ListByUser(ctx context.Context, sess txmanager.Session, userID uuid.UUID) ([]*po.CommentWithAuthor, error)
}

// CommentContentLookup 评论写入前校验目标内容。
type CommentContentLookup interface {
	FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error)
}

// CommentAuthorLookup 读取作者展示名。
type CommentAuthorLookup interface {
	FindByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.User, error)
}

// CreateCommentInput 发表评论的输入。
type CreateCommentInput struct {
	UserID  uuid.UUID
	Ref     ContentRef
	Content string
}

// DeleteCommentInput 删除评论的输入。
type DeleteCommentInput struct {
	CommentID uuid.UUID
	ActorID   uuid.UUID
	IsAdmin   bool
}

// CommentService 评论用例，评论不影响评分聚合。
type CommentService struct {
	comments  CommentStore
	contents  CommentContentLookup
	users     CommentAuthorLookup
	txManager txmanager.Manager
	log       *log.Helper
}

// NewCommentService 构造评论服务。
func NewCommentService(comments CommentStore, contents CommentContentLookup, users CommentAuthorLookup, tx txmanager.Manager, logger log.Logger) *CommentService {
	return &CommentService{
		comments:  comments,
		contents:  contents,
		users:     users,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// CreateComment 发表评论。
func (s *CommentService) CreateComment(ctx context.Context, input CreateCommentInput) (*vo.Comment, error) {
	body := strings.TrimSpace(input.Content)
	if body == "" {
		return nil, validationError("comment content is required")
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return nil, validationError("comment content is too long")
	}
	if !input.Ref.Kind.Valid() {
		return nil, validationError("content type must be movie or series")
	}
	if input.UserID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	var (
		created *po.Comment
		author  string
	)
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		item, err := s.contents.FindByID(txCtx, sess, input.Ref.ID)
		if err != nil {
			return err
		}
		if item.Kind != input.Ref.Kind {
			return ErrContentNotFound
		}
		user, err := s.users.FindByID(txCtx, sess, input.UserID)
		if err != nil {
			return err
		}
		author = user.DisplayName

		created, err = s.comments.Create(txCtx, sess, &po.Comment{
			UserID:    input.UserID,
			ContentID: input.Ref.ID,
			Content:   body,
		})
		if errorsIs(err, repositories.ErrReferenceNotFound) {
			return ErrContentNotFound
		}
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "create comment", err)
	}

	s.log.WithContext(ctx).Infof("CreateComment: comment_id=%s content=%s user=%s", created.ID, created.ContentID, created.UserID)
	return vo.NewComment(created, input.Ref.Kind, author), nil
}

// DeleteComment 删除评论，仅限作者或管理员。
func (s *CommentService) DeleteComment(ctx context.Context, input DeleteCommentInput) error {
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		comment, err := s.comments.FindByID(txCtx, sess, input.CommentID)
		if err != nil {
			return err
		}
		if !input.IsAdmin && comment.UserID != input.ActorID {
			return ErrForbidden
		}
		return s.comments.Delete(txCtx, sess, comment.ID)
	})
	if err != nil {
		return mapRepoError(ctx, s.log, "delete comment", err)
	}
	s.log.WithContext(ctx).Infof("DeleteComment: comment_id=%s actor=%s", input.CommentID, input.ActorID)
	return nil
}

// ListByContent 返回内容下的评论，最新在前。
func (s *CommentService) ListByContent(ctx context.Context, ref ContentRef) ([]*vo.Comment, error) {
	var comments []*po.CommentWithAuthor
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		item, err := s.contents.FindByID(txCtx, sess, ref.ID)
		if err != nil {
			return err
		}
		if item.Kind != ref.Kind {
			return ErrContentNotFound
		}
		comments, err = s.comments.ListByContent(txCtx, sess, ref.ID)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "list comments", err)
	}
	return vo.NewCommentList(comments), nil
}

// ListByUser 返回用户发表的评论。
func (s *CommentService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*vo.Comment, error) {
	var comments []*po.CommentWithAuthor
	err := s.txManager.WithinReadOnlyTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		comments, err = s.comments.ListByUser(txCtx, sess, userID)
		return err
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "list user comments", err)
	}
	return vo.NewCommentList(comments), nil
}
