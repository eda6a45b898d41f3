// Package gcs 提供与 Google Cloud Storage 交互的基础设施封装。
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2/google"

	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
)

// PosterSigner 负责生成海报直传所需的 V4 Signed URL（HTTP PUT）。
type PosterSigner struct {
	googleAccessID string
	privateKey     []byte
	now            func() time.Time
	log            *log.Helper
}

// SignedUpload 描述一次直传授权：客户端需携带 Headers 以 Method 请求 URL。
type SignedUpload struct {
	URL       string
	Method    string
	Headers   map[string]string
	ExpiresAt time.Time
}

// Option 定义可选配置。
type Option func(*PosterSigner)

// WithClock 覆盖时间获取函数，便于测试。
func WithClock(clock func() time.Time) Option {
	return func(s *PosterSigner) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithServiceAccountKey 允许直接注入访问 ID 与私钥（测试友好）。
func WithServiceAccountKey(accessID string, privateKey []byte) Option {
	return func(s *PosterSigner) {
		if accessID != "" {
			s.googleAccessID = accessID
		}
		if len(privateKey) > 0 {
			s.privateKey = append([]byte(nil), privateKey...)
		}
	}
}

// NewPosterSigner 创建 PosterSigner，要求默认凭据中包含 service account 私钥。
func NewPosterSigner(ctx context.Context, accessID string, logger log.Logger, opts ...Option) (*PosterSigner, error) {
	signer := &PosterSigner{
		googleAccessID: accessID,
		now:            time.Now,
		log:            log.NewHelper(logger),
	}

	for _, opt := range opts {
		opt(signer)
	}

	if len(signer.privateKey) == 0 {
		privKey, detectedAccessID, err := loadServiceAccountKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs signer: %w", err)
		}
		signer.privateKey = privKey
		if signer.googleAccessID == "" {
			signer.googleAccessID = detectedAccessID
		} else if detectedAccessID != "" && detectedAccessID != signer.googleAccessID {
			signer.log.WithContext(ctx).Warnf("gcs signer access id mismatch: config=%s credentials=%s", signer.googleAccessID, detectedAccessID)
		}
	}

	if signer.googleAccessID == "" {
		return nil, errors.New("gcs signer: google access id is required")
	}
	if len(signer.privateKey) == 0 {
		return nil, errors.New("gcs signer: private key is required")
	}

	return signer, nil
}

// SignedPosterUploadURL 生成单次 PUT 上传的 Signed URL。
// 签名包含 x-goog-if-generation-match:0，已存在的对象不会被覆盖。
func (s *PosterSigner) SignedPosterUploadURL(ctx context.Context, bucket, objectName, contentType string, ttl time.Duration) (*SignedUpload, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if objectName == "" {
		return nil, errors.New("object name is required")
	}
	if contentType == "" {
		return nil, errors.New("content type is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}

	expires := s.now().Add(ttl)
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodPut,
		Expires:        expires,
		ContentType:    contentType,
		Headers:        []string{"x-goog-if-generation-match:0"},
		GoogleAccessID: s.googleAccessID,
		PrivateKey:     s.privateKey,
	}

	url, err := storage.SignedURL(bucket, objectName, opts)
	if err != nil {
		s.log.WithContext(ctx).Errorf("generate poster signed url failed: bucket=%s object=%s err=%v", bucket, objectName, err)
		return nil, fmt.Errorf("signed url: %w", err)
	}
	return &SignedUpload{
		URL:    url,
		Method: http.MethodPut,
		Headers: map[string]string{
			"Content-Type":               contentType,
			"x-goog-if-generation-match": "0",
		},
		ExpiresAt: expires,
	}, nil
}

type serviceAccountKey struct {
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

func loadServiceAccountKey(ctx context.Context) ([]byte, string, error) {
	creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, "", fmt.Errorf("find default credentials: %w", err)
	}
	if len(creds.JSON) == 0 {
		return nil, "", errors.New("service account JSON not found in default credentials")
	}

	var key serviceAccountKey
	if err := json.Unmarshal(creds.JSON, &key); err != nil {
		return nil, "", fmt.Errorf("parse service account json: %w", err)
	}
	if key.PrivateKey == "" {
		return nil, "", errors.New("service account private key is empty; use a service account JSON credential")
	}
	return []byte(key.PrivateKey), key.ClientEmail, nil
}

// ProvidePosterSigner 供 Wire 注入使用；未配置海报 bucket 时返回 nil，上传接口随之不可用。
func ProvidePosterSigner(ctx context.Context, cfg configloader.GCSConfig, logger log.Logger) (*PosterSigner, error) {
	if !cfg.Enabled() {
		log.NewHelper(logger).Info("poster bucket not configured; upload url endpoint disabled")
		return nil, nil
	}
	return NewPosterSigner(ctx, cfg.SignerServiceAccount, logger)
}
