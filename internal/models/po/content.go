// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
package po

import (
	"time"

	"github.com/google/uuid"
)

// ContentKind 区分电影与剧集。
type ContentKind string

// 内容类型常量定义
const (
	ContentKindMovie  ContentKind = "movie"  // 电影
	ContentKindSeries ContentKind = "series" // 剧集
)

// Valid 判断类型是否为已知取值。
func (k ContentKind) Valid() bool {
	return k == ContentKindMovie || k == ContentKindSeries
}

// ContentItem 表示 catalog.content_items 表的数据库实体。
// 电影与剧集共享主体字段，类型专属字段按 Kind 可空。
type ContentItem struct {
	ID          uuid.UUID   `db:"id"`
	Kind        ContentKind `db:"kind"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	PosterURL   *string     `db:"poster_url"`
	ReleaseYear int32       `db:"release_year"`
	Genres      []string    `db:"genres"`
	Platforms   []string    `db:"platforms"`
	Cast        []string    `db:"cast_members"`
	Language    *string     `db:"language"`
	Country     *string     `db:"country"`

	// 电影专属
	Director       *string  `db:"director"`
	RuntimeMinutes *int32   `db:"runtime_minutes"`
	Budget         *float64 `db:"budget"`
	Revenue        *float64 `db:"revenue"`

	// 剧集专属
	EndYear  *int32  `db:"end_year"`
	Creator  *string `db:"creator"`
	Seasons  *int32  `db:"seasons"`
	Episodes *int32  `db:"episodes"`

	// 派生字段：仅由评分聚合写入
	AverageRating float64 `db:"average_rating"` // 全部评分均值，无评分时为 0
	RatingCount   int32   `db:"rating_count"`   // 评分条数

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// RatingAggregate 是一次重算后的派生字段快照。
type RatingAggregate struct {
	ContentID     uuid.UUID `db:"id"`
	AverageRating float64   `db:"average_rating"`
	RatingCount   int32     `db:"rating_count"`
}
