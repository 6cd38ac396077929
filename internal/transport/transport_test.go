package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortnr/urlshort/internal/domain"
	"github.com/shortnr/urlshort/internal/logging"
	"github.com/shortnr/urlshort/internal/qr"
	"github.com/shortnr/urlshort/internal/writesvc"
)

type stubShortener struct {
	result writesvc.Result
	err    error
}

func (s stubShortener) Shorten(context.Context, string, string, string) (writesvc.Result, error) {
	return s.result, s.err
}

type stubResolver struct {
	url string
	err error
}

func (s stubResolver) Resolve(context.Context, string) (string, error) {
	return s.url, s.err
}

type stubQR struct{ bytes []byte }

func (s stubQR) Render(context.Context, string, qr.Format, int) ([]byte, error) {
	return s.bytes, nil
}

func TestWriteRouter_Shorten_Success(t *testing.T) {
	router := NewWriteRouter(stubShortener{result: writesvc.Result{Slug: "abc123", URL: "https://ex.com"}}, logging.New("test"), nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/shorten", bytes.NewBufferString(`{"url":"https://ex.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alias":"abc123"`)
}

func TestWriteRouter_Shorten_ValidationError(t *testing.T) {
	router := NewWriteRouter(stubShortener{err: domain.New(domain.KindValidation, "url is required")}, logging.New("test"), nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/shorten", bytes.NewBufferString(`{"url":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteRouter_Healthz(t *testing.T) {
	router := NewWriteRouter(stubShortener{}, logging.New("test"), nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRedirectRouter_Redirect_Success(t *testing.T) {
	router := NewRedirectRouter(stubResolver{url: "https://ex.com"}, stubQR{}, logging.New("test"), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://ex.com", rec.Header().Get("Location"))
}

func TestRedirectRouter_NotFound(t *testing.T) {
	router := NewRedirectRouter(stubResolver{err: domain.ErrNotFound}, stubQR{}, logging.New("test"), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedirectRouter_HealthzNotShadowedBySlugRoute(t *testing.T) {
	router := NewRedirectRouter(stubResolver{err: domain.ErrNotFound}, stubQR{}, logging.New("test"), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "/healthz must not be matched as a slug")
}

func TestRedirectRouter_QR_Success(t *testing.T) {
	router := NewRedirectRouter(stubResolver{url: "https://ex.com"}, stubQR{bytes: []byte{0x89, 0x50}}, logging.New("test"), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/abc123/qr?format=png&size=128", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
