package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	identityapp "github.com/ledgerly/backend/internal/application/identity"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryObjectStorage keeps objects in process memory. Download URLs point at
// BaseURL, which the HTTP layer serves from Open. Development and tests only.
type MemoryObjectStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryObjectStorage creates an empty store
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: baseURL,
		objects: make(map[string]memoryObject),
	}
}

// Upload implements identityapp.ObjectStorage
func (m *MemoryObjectStorage) Upload(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	if key == "" {
		return errEmptyKey
	}
	data, err := io.ReadAll(io.LimitReader(body, size+1))
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("upload %s: expected %d bytes, got %d", key, size, len(data))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// Delete implements identityapp.ObjectStorage
func (m *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// DownloadURL implements identityapp.ObjectStorage
func (m *MemoryObjectStorage) DownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, identityapp.ErrObjectNotFound
	}
	return m.BaseURL + "/" + url.PathEscape(key), time.Now().Add(expiresIn), nil
}

// Open implements identityapp.ObjectStorage
func (m *MemoryObjectStorage) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", identityapp.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ identityapp.ObjectStorage = (*MemoryObjectStorage)(nil)
