package httpserver_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	httpserver "github.com/bionicotaku/hidescore-services-catalog/internal/infrastructure/http_server"

	"github.com/go-kratos/kratos/v2/errors"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestErrorEncoder(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", errors.NotFound("CONTENT_NOT_FOUND", "movie not found"), http.StatusNotFound, "movie not found"},
		{"validation", errors.BadRequest("VALIDATION_FAILED", "title is required"), http.StatusBadRequest, "title is required"},
		{"internal hides cause", errors.InternalServer("INTERNAL", "pq: relation does not exist"), http.StatusInternalServerError, "internal server error"},
		{"plain error", errors.New(503, "UPLOAD_UNAVAILABLE", "poster uploads are not configured"), http.StatusServiceUnavailable, "poster uploads are not configured"},
		{"non kratos error", http.ErrHandlerTimeout, http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
			rec := httptest.NewRecorder()
			httpserver.ErrorEncoder(rec, req, tc.err)

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.Equal(t, tc.message, decodeError(t, rec))
		})
	}
}
