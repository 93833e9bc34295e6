package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaginify/backend/internal/core/domain"
)

func postUpload(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUploadSuccess(t *testing.T) {
	store := &stubMediaStore{asset: &domain.MediaAsset{
		PublicID:  "x",
		SecureURL: "https://res.example.com/x.png",
		Width:     10,
		Height:    10,
	}}
	router := newTestRouter(&mockUserRepo{}, store, &recordingVerifier{})

	rr := postUpload(router, `{"path":"data:image/png;base64,AAAA"}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "x", resp["public_id"])
	assert.Equal(t, "https://res.example.com/x.png", resp["secure_url"])
	assert.Equal(t, float64(10), resp["width"])
	assert.Equal(t, float64(10), resp["height"])
	assert.Len(t, resp, 4, "response carries exactly the asset fields")
}

func TestUploadMissingPath(t *testing.T) {
	router := newTestRouter(&mockUserRepo{}, &stubMediaStore{}, &recordingVerifier{})

	rr := postUpload(router, `{}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Path is required")
}

func TestUploadUpstreamFailure(t *testing.T) {
	store := &stubMediaStore{err: fmt.Errorf("Invalid image file: %w", domain.ErrUpstream)}
	router := newTestRouter(&mockUserRepo{}, store, &recordingVerifier{})

	rr := postUpload(router, `{"path":"https://example.com/not-an-image"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	// The upstream message is surfaced for diagnostics.
	assert.Contains(t, rr.Body.String(), "Invalid image file")
}

func TestUploadRemoteURLPassedThrough(t *testing.T) {
	var gotPath string
	store := &pathRecordingStore{paths: &gotPath}
	router := newTestRouter(&mockUserRepo{}, store, &recordingVerifier{})

	rr := postUpload(router, `{"path":"https://example.com/cat.jpg"}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "https://example.com/cat.jpg", gotPath)
}

type pathRecordingStore struct {
	paths *string
}

func (s *pathRecordingStore) Upload(ctx context.Context, path string) (*domain.MediaAsset, error) {
	*s.paths = path
	return &domain.MediaAsset{PublicID: "x", SecureURL: "https://res.example.com/x.jpg", Width: 1, Height: 1}, nil
}
