package vo

import (
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/google/uuid"
)

// Comment 评论视图。
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	MovieID    *uuid.UUID `json:"movieId"`
	SeriesID   *uuid.UUID `json:"seriesId"`
	Content    string     `json:"content"`
	AuthorName string     `json:"authorName,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewComment 根据内容类型填充 movieId/seriesId。
func NewComment(c *po.Comment, kind po.ContentKind, author string) *Comment {
	if c == nil {
		return nil
	}
	view := &Comment{
		ID:         c.ID,
		UserID:     c.UserID,
		Content:    c.Content,
		AuthorName: author,
		CreatedAt:  c.CreatedAt,
	}
	contentID := c.ContentID
	if kind == po.ContentKindSeries {
		view.SeriesID = &contentID
	} else {
		view.MovieID = &contentID
	}
	return view
}

// NewCommentList 转换带作者信息的评论列表。
func NewCommentList(comments []*po.CommentWithAuthor) []*Comment {
	out := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		if c == nil {
			continue
		}
		out = append(out, NewComment(&c.Comment, c.ContentKind, c.AuthorName))
	}
	return out
}
