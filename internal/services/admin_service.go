package services

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	"github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/gcs"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/po"
	"github.com/bionicotaku/hidescore-services-catalog/internal/models/vo"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ContentCounter 统计内容条数。
type ContentCounter interface {
	CountByKind(ctx context.Context, kind po.ContentKind) (int64, error)
}

// UserCounter 统计用户数。
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// RatingCounter 统计评分条数。
type RatingCounter interface {
	Count(ctx context.Context) (int64, error)
}

// PosterURLSigner 生成海报直传签名。
type PosterURLSigner interface {
	SignedPosterUploadURL(ctx context.Context, bucket, objectName, contentType string, ttl time.Duration) (*gcs.SignedUpload, error)
}

// PosterUploadInput 申请海报上传地址的输入。
type PosterUploadInput struct {
	Kind        po.ContentKind
	ContentType string
	FileName    string
}

var posterExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AdminService 管理后台概览与海报上传。
type AdminService struct {
	contents ContentCounter
	users    UserCounter
	ratings  RatingCounter
	signer   PosterURLSigner
	storage  configloader.GCSConfig
	log      *log.Helper
}

// NewAdminService 构造管理后台服务；signer 为 nil 时海报上传不可用。
func NewAdminService(contents ContentCounter, users UserCounter, ratings RatingCounter, signer PosterURLSigner, storage configloader.GCSConfig, logger log.Logger) *AdminService {
	return &AdminService{
		contents: contents,
		users:    users,
		ratings:  ratings,
		signer:   signer,
		storage:  storage,
		log:      log.NewHelper(logger),
	}
}

// Stats 并发统计电影、剧集、用户与评分总数。
func (s *AdminService) Stats(ctx context.Context) (*vo.AdminStats, error) {
	var stats vo.AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.contents.CountByKind(gctx, po.ContentKindMovie)
		stats.TotalMovies = n
		return err
	})
	g.Go(func() error {
		n, err := s.contents.CountByKind(gctx, po.ContentKindSeries)
		stats.TotalSeries = n
		return err
	})
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.ratings.Count(gctx)
		stats.TotalRatings = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mapRepoError(ctx, s.log, "admin stats", err)
	}
	return &stats, nil
}

// PosterUploadURL 签发一次性的海报直传地址，对象名由服务端生成。
func (s *AdminService) PosterUploadURL(ctx context.Context, input PosterUploadInput) (*vo.PosterUpload, error) {
	if s.signer == nil || !s.storage.Enabled() {
		return nil, ErrUploadUnavailable
	}
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	ext, ok := posterExtensions[contentType]
	if !ok {
		return nil, validationError("contentType must be image/jpeg, image/png or image/webp")
	}
	folder := "posters"
	if input.Kind.Valid() {
		folder = path.Join(folder, string(input.Kind))
	}
	objectName := path.Join(folder, uuid.NewString()+ext)

	upload, err := s.signer.SignedPosterUploadURL(ctx, s.storage.PosterBucket, objectName, contentType, s.storage.UploadURLTTL)
	if err != nil {
		return nil, mapRepoError(ctx, s.log, "sign poster upload", err)
	}

	s.log.WithContext(ctx).Infof("PosterUploadURL: object=%s file=%s", objectName, input.FileName)
	return &vo.PosterUpload{
		UploadURL:  upload.URL,
		Method:     upload.Method,
		Headers:    upload.Headers,
		ObjectName: objectName,
		PublicURL:  s.publicURL(objectName),
		ExpiresAt:  upload.ExpiresAt,
	}, nil
}

func (s *AdminService) publicURL(objectName string) string {
	base := s.storage.PublicBaseURL
	if base == "" {
		base = "https://storage.googleapis.com/" + s.storage.PosterBucket
	}
	return base + "/" + objectName
}
