package repositories

import (
	"fmt"
	"strings"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
)

// ContentSort 列表排序键。
type ContentSort string

// 支持的排序键；未知取值按 popularity 处理。
const (
	SortPopularity ContentSort = "popularity" // rating_count DESC
	SortRating     ContentSort = "rating"     // average_rating DESC
	SortYearDesc   ContentSort = "year-desc"  // release_year DESC
	SortYearAsc    ContentSort = "year-asc"   // release_year ASC
	SortRecent     ContentSort = "recent"     // created_at DESC
)

// filterAll 表示不过滤的占位取值。
const filterAll = "all"

// ContentFilter 描述列表查询条件，所有条件按 AND 组合。
type ContentFilter struct {
	Genre      string
	Platform   string
	YearFrom   *int32
	YearTo     *int32
	RatingFrom *float64
	RatingTo   *float64
	Sort       ContentSort
	Limit      int
}

const contentColumns = `id, kind, title, description, poster_url, release_year, genres, platforms, cast_members,
	language, country, director, runtime_minutes, budget, revenue, end_year, creator, seasons, episodes,
	average_rating, rating_count, created_at, updated_at`

// orderByClause 返回排序片段，统一以 id ASC 兜底保证结果确定。
func orderByClause(sort ContentSort) string {
	switch sort {
	case SortRating:
		return "average_rating DESC, id ASC"
	case SortYearDesc:
		return "release_year DESC, id ASC"
	case SortYearAsc:
		return "release_year ASC, id ASC"
	case SortRecent:
		return "created_at DESC, id ASC"
	default:
		return "rating_count DESC, id ASC"
	}
}

// activeTerm 判断 genre/platform 过滤值是否生效；只有小写 "all" 是占位值，"All" 按普通类型匹配。
func activeTerm(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == filterAll {
		return "", false
	}
	return trimmed, true
}

// BuildListQuery 根据过滤条件拼装参数化 SQL。
func BuildListQuery(kind po.ContentKind, filter ContentFilter) (string, []any) {
	args := []any{string(kind)}
	conds := []string{"kind = $1"}
	next := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if genre, ok := activeTerm(filter.Genre); ok {
		conds = append(conds, "genres @> ARRAY["+next(genre)+"]::text[]")
	}
	if platform, ok := activeTerm(filter.Platform); ok {
		conds = append(conds, "platforms @> ARRAY["+next(platform)+"]::text[]")
	}
	if filter.YearFrom != nil {
		conds = append(conds, "release_year >= "+next(*filter.YearFrom))
	}
	if filter.YearTo != nil {
		conds = append(conds, "release_year <= "+next(*filter.YearTo))
	}
	if filter.RatingFrom != nil {
		conds = append(conds, "average_rating >= "+next(*filter.RatingFrom))
	}
	if filter.RatingTo != nil {
		conds = append(conds, "average_rating <= "+next(*filter.RatingTo))
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(contentColumns)
	sb.WriteString(" FROM catalog.content_items WHERE ")
	sb.WriteString(strings.Join(conds, " AND "))
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderByClause(filter.Sort))
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(next(filter.Limit))
	}
	return sb.String(), args
}
