// Package vo 定义视图对象（View Objects），用于向上层传递业务数据。
// VO 对象由 Service 层返回，经 Controller 直接编码为 JSON 响应，隔离内部数据结构。
package vo

import (
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/google/uuid"
)

// Content 是电影/剧集的对外视图，字段命名沿用前端约定。
type Content struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"` // movie | series
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PosterURL   *string   `json:"posterUrl"`
	ReleaseYear int32     `json:"releaseYear"`
	Genre       []string  `json:"genre"`
	Platform    []string  `json:"platform"`
	Cast        []string  `json:"cast"`
	Language    *string   `json:"language"`
	Country     *string   `json:"country"`

	// 电影
	Director *string  `json:"director,omitempty"`
	Runtime  *int32   `json:"runtime,omitempty"`
	Budget   *float64 `json:"budget,omitempty"`
	Revenue  *float64 `json:"revenue,omitempty"`

	// 剧集
	EndYear  *int32  `json:"endYear,omitempty"`
	Creator  *string `json:"creator,omitempty"`
	Seasons  *int32  `json:"seasons,omitempty"`
	Episodes *int32  `json:"episodes,omitempty"`

	// 派生字段
	AverageRating float64 `json:"averageRating"`
	RatingCount   int32   `json:"ratingCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewContent 从持久化实体构造对外视图。
func NewContent(item *po.ContentItem) *Content {
	if item == nil {
		return nil
	}
	return &Content{
		ID:          item.ID,
		Type:        string(item.Kind),
		Title:       item.Title,
		Description: item.Description,
		PosterURL:   item.PosterURL,
		ReleaseYear: item.ReleaseYear,
		Genre:       cloneStrings(item.Genres), // 防御性拷贝
		Platform:    cloneStrings(item.Platforms),
		Cast:        cloneStrings(item.Cast),
		Language:    item.Language,
		Country:     item.Country,

		Director: item.Director,
		Runtime:  item.RuntimeMinutes,
		Budget:   item.Budget,
		Revenue:  item.Revenue,

		EndYear:  item.EndYear,
		Creator:  item.Creator,
		Seasons:  item.Seasons,
		Episodes: item.Episodes,

		AverageRating: item.AverageRating,
		RatingCount:   item.RatingCount,

		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// NewContentList 批量转换，空输入返回空切片以便编码为 []。
func NewContentList(items []*po.ContentItem) []*Content {
	out := make([]*Content, 0, len(items))
	for _, item := range items {
		if v := NewContent(item); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Recommendations 首页推荐位。
type Recommendations struct {
	Movies []*Content `json:"movies"`
	Series []*Content `json:"series"`
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}
