package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ledgerly/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingOpener struct{}

func (failingOpener) Open(context.Context, string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("disk on fire")
}

func TestFileHandler_Serve(t *testing.T) {
	store := storage.NewMemoryObjectStorage("http://localhost:8080/files")
	logo := "\x89PNG\r\n\x1a\nfake"
	require.NoError(t, store.Upload(context.Background(), "accounts/acme/logo.png",
		strings.NewReader(logo), int64(len(logo)), "image/png"))

	r := gin.New()
	r.GET("/files/*key", NewFileHandler(store).Serve)

	t.Run("existing object", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/accounts/acme/logo.png", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "private, max-age=300", w.Header().Get("Cache-Control"))
		assert.Equal(t, logo, w.Body.String())
	})

	t.Run("missing object", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/accounts/acme/other.png", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty key", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFileHandler_Serve_StorageError(t *testing.T) {
	r := gin.New()
	r.GET("/files/*key", NewFileHandler(failingOpener{}).Serve)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/a.png", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERR_INTERNAL", decodeResponse(t, w).Error.Code)
}
