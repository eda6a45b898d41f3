package dto

import (
	"strings"

	"github.com/bionicotaku/hidescore-services-catalog/internal/repositories"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"
)

// ContentListQuery 对应 /api/movies 与 /api/series 的查询参数。
type ContentListQuery struct {
	Genre      string   `json:"genre"`
	Platform   string   `json:"platform"`
	YearFrom   *int32   `json:"yearFrom"`
	YearTo     *int32   `json:"yearTo"`
	RatingFrom *float64 `json:"ratingFrom" validate:"omitempty,gte=0,lte=5"`
	RatingTo   *float64 `json:"ratingTo" validate:"omitempty,gte=0,lte=5"`
	SortBy     string   `json:"sortBy"`
}

// ToFilter 转换为仓储过滤条件；未知排序键交由仓储回退到 popularity。
func (q *ContentListQuery) ToFilter() (repositories.ContentFilter, error) {
	if err := Validate(q); err != nil {
		return repositories.ContentFilter{}, err
	}
	return repositories.ContentFilter{
		Genre:      q.Genre,
		Platform:   q.Platform,
		YearFrom:   q.YearFrom,
		YearTo:     q.YearTo,
		RatingFrom: q.RatingFrom,
		RatingTo:   q.RatingTo,
		Sort:       repositories.ContentSort(strings.ToLower(strings.TrimSpace(q.SortBy))),
	}, nil
}

// ContentRequest 管理后台创建/更新电影或剧集的请求体。
// averageRating 与 ratingCount 不在此列，客户端提交的同名字段会被忽略。
type ContentRequest struct {
	Title       string   `json:"title" validate:"required,max=300"`
	Description string   `json:"description" validate:"required,max=5000"`
	PosterURL   *string  `json:"posterUrl" validate:"omitempty,url"`
	ReleaseYear int32    `json:"releaseYear" validate:"required"`
	Genre       []string `json:"genre" validate:"max=20,dive,max=64"`
	Platform    []string `json:"platform" validate:"max=20,dive,max=64"`
	Cast        []string `json:"cast" validate:"max=100,dive,max=128"`
	Language    *string  `json:"language"`
	Country     *string  `json:"country"`

	Director *string  `json:"director"`
	Runtime  *int32   `json:"runtime"`
	Budget   *float64 `json:"budget"`
	Revenue  *float64 `json:"revenue"`

	EndYear  *int32  `json:"endYear"`
	Creator  *string `json:"creator"`
	Seasons  *int32  `json:"seasons"`
	Episodes *int32  `json:"episodes"`
}

// ToInput 校验并转换为服务层输入。
func (r *ContentRequest) ToInput() (services.ContentInput, error) {
	if err := Validate(r); err != nil {
		return services.ContentInput{}, err
	}
	return services.ContentInput{
		Title:          r.Title,
		Description:    r.Description,
		PosterURL:      r.PosterURL,
		ReleaseYear:    r.ReleaseYear,
		Genres:         r.Genre,
		Platforms:      r.Platform,
		Cast:           r.Cast,
		Language:       r.Language,
		Country:        r.Country,
		Director:       r.Director,
		RuntimeMinutes: r.Runtime,
		Budget:         r.Budget,
		Revenue:        r.Revenue,
		EndYear:        r.EndYear,
		Creator:        r.Creator,
		Seasons:        r.Seasons,
		Episodes:       r.Episodes,
	}, nil
}
