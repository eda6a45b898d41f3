package po

import (
	"time"

	"github.com/google/uuid"
)

// Rating 表示 catalog.ratings 表的数据库实体，每个用户对同一内容至多一条。
type Rating struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ContentID uuid.UUID `db:"content_id"`
	Value     float64   `db:"rating"` // 0..5
	Review    *string   `db:"review"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RatingWithContent 附带内容类型，用于按用户列出评分时区分 movieId/seriesId。
type RatingWithContent struct {
	Rating
	ContentKind  ContentKind `db:"content_kind"`
	ContentTitle string      `db:"content_title"`
}
