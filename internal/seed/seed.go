// Package seed 向空库写入示例片单与初始管理员账号。
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"
	"github.com/bionicotaku/hidescore-services-catalog/internal/services"

	"github.com/go-kratos/kratos/v2/encoding"
	"github.com/go-kratos/kratos/v2/encoding/yaml"
	"github.com/go-kratos/kratos/v2/log"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Item 是示例片单中的一条内容。
type Item struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	PosterURL   string   `yaml:"posterUrl"`
	ReleaseYear int32    `yaml:"releaseYear"`
	Genres      []string `yaml:"genre"`
	Platforms   []string `yaml:"platform"`
	Cast        []string `yaml:"cast"`
	Language    string   `yaml:"language"`
	Country     string   `yaml:"country"`

	Director string `yaml:"director"`
	Runtime  int32  `yaml:"runtime"`

	EndYear  int32  `yaml:"endYear"`
	Creator  string `yaml:"creator"`
	Seasons  int32  `yaml:"seasons"`
	Episodes int32  `yaml:"episodes"`
}

// Catalog 示例片单。
type Catalog struct {
	Movies []Item `yaml:"movies"`
	Series []Item `yaml:"series"`
}

// LoadCatalog 解析内嵌的示例片单。
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := encoding.GetCodec(yaml.Name).Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return &c, nil
}

// ToInput 转换为内容写入输入，零值字段保持为空。
func (it Item) ToInput() services.ContentInput {
	return services.ContentInput{
		Title:          it.Title,
		Description:    it.Description,
		PosterURL:      optString(it.PosterURL),
		ReleaseYear:    it.ReleaseYear,
		Genres:         it.Genres,
		Platforms:      it.Platforms,
		Cast:           it.Cast,
		Language:       optString(it.Language),
		Country:        optString(it.Country),
		Director:       optString(it.Director),
		RuntimeMinutes: optInt32(it.Runtime),
		EndYear:        optInt32(it.EndYear),
		Creator:        optString(it.Creator),
		Seasons:        optInt32(it.Seasons),
		Episodes:       optInt32(it.Episodes),
	}
}

// ContentCreator 写入内容。
type ContentCreator interface {
	CreateContent(ctx context.Context, kind po.ContentKind, input services.ContentInput) (*vo.Content, error)
}

// ContentCounter 统计已有内容。
type ContentCounter interface {
	CountByKind(ctx context.Context, kind po.ContentKind) (int64, error)
}

// UserCreator 创建管理员账号。
type UserCreator interface {
	CreateUser(ctx context.Context, input services.CreateUserInput) (*vo.User, error)
}

// Admin 初始管理员账号；Email 为空表示不创建。
type Admin struct {
	Email       string
	DisplayName string
	Password    string
}

// Result 汇总一次 seed 的写入情况。
type Result struct {
	Movies       int
	Series       int
	AdminCreated bool
	Skipped      bool
}

// Seeder 幂等地写入示例数据：库中已有任意内容时跳过片单，管理员邮箱已存在时跳过账号。
type Seeder struct {
	contents ContentCreator
	counter  ContentCounter
	users    UserCreator
	log      *log.Helper
}

// NewSeeder 构造 Seeder。
func NewSeeder(contents ContentCreator, counter ContentCounter, users UserCreator, logger log.Logger) *Seeder {
	return &Seeder{
		contents: contents,
		counter:  counter,
		users:    users,
		log:      log.NewHelper(log.With(logger, "component", "seed")),
	}
}

// Run 写入片单与管理员。
func (s *Seeder) Run(ctx context.Context, catalog *Catalog, admin Admin) (Result, error) {
	var res Result

	empty, err := s.catalogEmpty(ctx)
	if err != nil {
		return res, err
	}
	if !empty {
		res.Skipped = true
		s.log.WithContext(ctx).Info("catalog already has content; skipping sample catalog")
	} else {
		for _, it := range catalog.Movies {
			if _, err := s.contents.CreateContent(ctx, po.ContentKindMovie, it.ToInput()); err != nil {
				return res, fmt.Errorf("seed movie %q: %w", it.Title, err)
			}
			res.Movies++
		}
		for _, it := range catalog.Series {
			if _, err := s.contents.CreateContent(ctx, po.ContentKindSeries, it.ToInput()); err != nil {
				return res, fmt.Errorf("seed series %q: %w", it.Title, err)
			}
			res.Series++
		}
		s.log.WithContext(ctx).Infof("sample catalog created: movies=%d series=%d", res.Movies, res.Series)
	}

	if admin.Email == "" {
		return res, nil
	}
	_, err = s.users.CreateUser(ctx, services.CreateUserInput{
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
		Password:    admin.Password,
		IsAdmin:     true,
	})
	switch {
	case err == nil:
		res.AdminCreated = true
		s.log.WithContext(ctx).Infof("admin account created: %s", admin.Email)
	case errors.Is(err, services.ErrEmailTaken):
		s.log.WithContext(ctx).Infof("admin account %s already exists", admin.Email)
	default:
		return res, fmt.Errorf("seed admin: %w", err)
	}
	return res, nil
}

func (s *Seeder) catalogEmpty(ctx context.Context) (bool, error) {
	for _, kind := range []po.ContentKind{po.ContentKindMovie, po.ContentKindSeries} {
		n, err := s.counter.CountByKind(ctx, kind)
		if err != nil {
			return false, fmt.Errorf("count %s: %w", kind, err)
		}
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optInt32(v int32) *int32 {
	if v == 0 {
		return nil
	}
	return &v
}
