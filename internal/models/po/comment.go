package po

import (
	"time"

	"github.com/google/uuid"
)

// Comment 表示 catalog.comments 表的数据库实体。
type Comment struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ContentID uuid.UUID `db:"content_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CommentWithAuthor 附带作者展示名与内容类型，供列表展示。
type CommentWithAuthor struct {
	Comment
	AuthorName  string      `db:"author_name"`
	ContentKind ContentKind `db:"content_kind"`
}
