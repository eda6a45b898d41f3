package gcs_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	configloader "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/configloader"
	gcs "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/gcs"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

func TestSignedPosterUploadURL(t *testing.T) {
	ctx := context.Background()
	keyPEM, accessID := generateTestKey(t)
	fixed := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	signer, err := gcs.NewPosterSigner(ctx, accessID, log.NewStdLogger(io.Discard),
		gcs.WithServiceAccountKey(accessID, keyPEM),
		gcs.WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, err)

	ttl := 10 * time.Minute
	upload, err := signer.SignedPosterUploadURL(ctx, "posters", "movies/abc/poster.jpg", "image/jpeg", ttl)
	require.NoError(t, err)
	require.True(t, upload.ExpiresAt.Equal(fixed.Add(ttl)))
	require.Equal(t, http.MethodPut, upload.Method)
	require.Equal(t, "image/jpeg", upload.Headers["Content-Type"])
	require.Equal(t, "0", upload.Headers["x-goog-if-generation-match"])

	parsed, err := url.Parse(upload.URL)
	require.NoError(t, err)
	require.NotEmpty(t, parsed.Host)
	require.Contains(t, parsed.Path, "movies/abc/poster.jpg")

	query := parsed.Query()
	require.NotEmpty(t, query.Get("X-Goog-Expires"))
	headers := strings.ToLower(query.Get("X-Goog-SignedHeaders"))
	require.Contains(t, headers, "content-type")
	require.Contains(t, headers, "x-goog-if-generation-match")
}

func TestSignedPosterUploadURLValidatesInput(t *testing.T) {
	ctx := context.Background()
	keyPEM, accessID := generateTestKey(t)
	signer, err := gcs.NewPosterSigner(ctx, accessID, log.NewStdLogger(io.Discard),
		gcs.WithServiceAccountKey(accessID, keyPEM))
	require.NoError(t, err)

	_, err = signer.SignedPosterUploadURL(ctx, "", "obj", "image/png", time.Minute)
	require.Error(t, err)
	_, err = signer.SignedPosterUploadURL(ctx, "posters", "obj", "", time.Minute)
	require.Error(t, err)
	_, err = signer.SignedPosterUploadURL(ctx, "posters", "obj", "image/png", 0)
	require.Error(t, err)
}

func TestProvidePosterSignerDisabled(t *testing.T) {
	signer, err := gcs.ProvidePosterSigner(context.Background(), configloader.GCSConfig{}, log.NewStdLogger(io.Discard))
	require.NoError(t, err)
	require.Nil(t, signer)
}

func generateTestKey(t *testing.T) ([]byte, string) {
	t.Helper()
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pkcs8, err := x509.MarshalPKCS8PrivateKey(rsaKey)
	require.NoError(t, err)
	block := &pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}
	accessID := "test-signer@unit-test.iam.gserviceaccount.com"
	return pem.EncodeToMemory(block), accessID
}
