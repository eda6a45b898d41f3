package services

import (
	"context"
	"strings"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/events"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const (
	minReleaseYear = 1870
	maxReleaseYear = 2100
)

// ContentWriter 内容写模型依赖。
type ContentWriter interface {
	LockByID(ctx context.Context, sess txmanager.Session, id uuid.UUID) (*po.ContentItem, error)
	Create(ctx context.Context, sess txmanager.Session, item *po.ContentItem) (*po.ContentItem, error)
	Update(ctx context.Context, sess txmanager.Session, item *po.ContentItem) (*po.ContentItem, error)
	Delete(ctx context.Context, sess txmanager.Session, kind po.ContentKind, id uuid.UUID) error
}

// ContentInput 管理后台提交的内容字段；派生评分字段不可写。
type ContentInput struct {
	Title       string
	Description string
	PosterURL   *string
	ReleaseYear int32
	Genres      []string
	Platforms   []string
	Cast        []string
	Language    *string
	Country     *string

	Director       *string
	RuntimeMinutes *int32
	Budget         *float64
	Revenue        *float64

	EndYear  *int32
	Creator  *string
	Seasons  *int32
	Episodes *int32
}

// ContentCommandService 封装管理员对电影/剧集的增删改。
type ContentCommandService struct {
	repo      ContentWriter
	outbox    OutboxWriter
	txManager txmanager.Manager
	log       *log.Helper
}

// NewContentCommandService 构造内容写服务。
func NewContentCommandService(repo ContentWriter, outbox OutboxWriter, tx txmanager.Manager, logger log.Logger) *ContentCommandService {
	return &ContentCommandService{
		repo:      repo,
		outbox:    outbox,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// CreateContent 新建内容并写入 content.created 事件。
func (s *ContentCommandService) CreateContent(ctx context.Context, kind po.ContentKind, input ContentInput) (*vo.Content, error) {
	item, err := buildContentItem(kind, uuid.Nil, input)
	if err != nil {
		return nil, err
	}

	var created *po.ContentItem
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		created, err = s.repo.Create(txCtx, sess, item)
		if err != nil {
			return err
		}
		return s.publish(txCtx, sess, events.KindContentCreated, created)
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "create "+string(kind), err)
	}

	s.log.WithContext(ctx).Infof("CreateContent: id=%s kind=%s title=%s", created.ID, created.Kind, created.Title)
	return vo.NewContent(created), nil
}

// UpdateContent 覆盖内容的可编辑字段，averageRating/ratingCount 保持不变。
func (s *ContentCommandService) UpdateContent(ctx context.Context, ref ContentRef, input ContentInput) (*vo.Content, error) {
	item, err := buildContentItem(ref.Kind, ref.ID, input)
	if err != nil {
		return nil, err
	}

	var updated *po.ContentItem
	err = s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		var err error
		updated, err = s.repo.Update(txCtx, sess, item)
		if err != nil {
			return err
		}
		return s.publish(txCtx, sess, events.KindContentUpdated, updated)
	})
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "update "+string(ref.Kind), err)
	}

	s.log.WithContext(ctx).Infof("UpdateContent: id=%s kind=%s", updated.ID, updated.Kind)
	return vo.NewContent(updated), nil
}

// DeleteContent 删除内容，其评分与评论随之级联删除。
func (s *ContentCommandService) DeleteContent(ctx context.Context, ref ContentRef) error {
	if !ref.Kind.Valid() {
		return validationError("content type must be movie or series")
	}
	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		item, err := s.repo.LockByID(txCtx, sess, ref.ID)
		if err != nil {
			return err
		}
		if item.Kind != ref.Kind {
			return ErrContentNotFound
		}
		if err := s.repo.Delete(txCtx, sess, ref.Kind, ref.ID); err != nil {
			return err
		}
		return s.publish(txCtx, sess, events.KindContentDeleted, item)
	})
	if err != nil {
		return mapRepoError(ctx, s.log, "delete "+string(ref.Kind), err)
	}

	s.log.WithContext(ctx).Infof("DeleteContent: id=%s kind=%s", ref.ID, ref.Kind)
	return nil
}

func (s *ContentCommandService) publish(ctx context.Context, sess txmanager.Session, kind events.Kind, item *po.ContentItem) error {
	evt, err := events.NewContentEvent(kind, item, uuid.New(), time.Now().UTC())
	if err != nil {
		return err
	}
	return enqueueEvent(ctx, sess, s.outbox, evt)
}

// buildContentItem 校验输入并按类型裁剪专属字段。
func buildContentItem(kind po.ContentKind, id uuid.UUID, input ContentInput) (*po.ContentItem, error) {
	if !kind.Valid() {
		return nil, validationError("content type must be movie or series")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, validationError("description is required")
	}
	if input.ReleaseYear < minReleaseYear || input.ReleaseYear > maxReleaseYear {
		return nil, validationError("releaseYear must be between 1870 and 2100")
	}

	item := &po.ContentItem{
		ID:          id,
		Kind:        kind,
		Title:       title,
		Description: description,
		PosterURL:   trimmedOrNil(input.PosterURL),
		ReleaseYear: input.ReleaseYear,
		Genres:      cleanList(input.Genres),
		Platforms:   cleanList(input.Platforms),
		Cast:        cleanList(input.Cast),
		Language:    trimmedOrNil(input.Language),
		Country:     trimmedOrNil(input.Country),
	}

	switch kind {
	case po.ContentKindMovie:
		if input.RuntimeMinutes != nil && *input.RuntimeMinutes <= 0 {
			return nil, validationError("runtime must be positive")
		}
		if (input.Budget != nil && *input.Budget < 0) || (input.Revenue != nil && *input.Revenue < 0) {
			return nil, validationError("budget and revenue must not be negative")
		}
		item.Director = trimmedOrNil(input.Director)
		item.RuntimeMinutes = input.RuntimeMinutes
		item.Budget = input.Budget
		item.Revenue = input.Revenue
	case po.ContentKindSeries:
		if input.EndYear != nil && *input.EndYear < input.ReleaseYear {
			return nil, validationError("endYear must not be before releaseYear")
		}
		if (input.Seasons != nil && *input.Seasons < 1) || (input.Episodes != nil && *input.Episodes < 1) {
			return nil, validationError("seasons and episodes must be at least 1")
		}
		item.EndYear = input.EndYear
		item.Creator = trimmedOrNil(input.Creator)
		item.Seasons = input.Seasons
		item.Episodes = input.Episodes
	}
	return item, nil
}

// cleanList 去除空白项；重复值按原样保留。
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
