package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	identityapp "github.com/ledgerly/backend/internal/application/identity"
	"github.com/ledgerly/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeS3 answers just enough of the S3 REST API for the client calls we make
type fakeS3 struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
	_, _ = io.Copy(io.Discard, r.Body)

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/missing.png"):
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
	case r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "png-bytes")
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (f *fakeS3) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newTestS3(t *testing.T) (*S3ObjectStorage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{
		Bucket:          "logos",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignExpiry:   10 * time.Minute,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s, fake
}

func TestNewS3ObjectStorage_RequiresBucket(t *testing.T) {
	_, err := NewS3ObjectStorage(context.Background(), config.StorageConfig{Region: "us-east-1"}, nil)
	assert.ErrorContains(t, err, "bucket is required")
}

func TestS3ObjectStorage_UploadOpenDelete(t *testing.T) {
	s, fake := newTestS3(t)
	ctx := context.Background()
	key := "tenants/abc/branding/logo-1.png"

	require.NoError(t, s.Upload(ctx, key, strings.NewReader("png-bytes"), 9, "image/png"))

	rc, contentType, err := s.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png-bytes", string(body))
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, s.Delete(ctx, key))

	assert.Equal(t, []string{
		"PUT /logos/" + key,
		"GET /logos/" + key,
		"DELETE /logos/" + key,
	}, fake.seen())
}

func TestS3ObjectStorage_OpenMissing(t *testing.T) {
	s, _ := newTestS3(t)
	_, _, err := s.Open(context.Background(), "missing.png")
	assert.ErrorIs(t, err, identityapp.ErrObjectNotFound)
}

func TestS3ObjectStorage_DownloadURL(t *testing.T) {
	s, fake := newTestS3(t)

	u, expiresAt, err := s.DownloadURL(context.Background(), "tenants/abc/logo.png", 0)
	require.NoError(t, err)
	assert.Contains(t, u, "/logos/tenants/abc/logo.png")
	assert.Contains(t, u, "X-Amz-Expires=600")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
	assert.Empty(t, fake.seen(), "presigning must not call the server")
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, _ := newTestS3(t)
	ctx := context.Background()
	assert.ErrorIs(t, s.Upload(ctx, "", strings.NewReader(""), 0, "image/png"), errEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), errEmptyKey)
	_, _, err := s.DownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestMemoryObjectStorage(t *testing.T) {
	m := NewMemoryObjectStorage("http://localhost:8080/api/v1/files")
	ctx := context.Background()

	require.NoError(t, m.Upload(ctx, "a/logo.svg", strings.NewReader("<svg/>"), 6, "image/svg+xml"))
	assert.Equal(t, 1, m.Len())

	u, _, err := m.DownloadURL(ctx, "a/logo.svg", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/files/a%2Flogo.svg", u)

	rc, ct, err := m.Open(ctx, "a/logo.svg")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "<svg/>", string(data))
	assert.Equal(t, "image/svg+xml", ct)

	t.Run("size mismatch", func(t *testing.T) {
		err := m.Upload(ctx, "b", strings.NewReader("toolong"), 3, "image/png")
		assert.Error(t, err)
	})

	require.NoError(t, m.Delete(ctx, "a/logo.svg"))
	_, _, err = m.DownloadURL(ctx, "a/logo.svg", time.Minute)
	assert.ErrorIs(t, err, identityapp.ErrObjectNotFound)
}
