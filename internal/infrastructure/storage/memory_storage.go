package storage

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/url"
	"sync"
	"time"

	recruitingapp "github.com/hireflow/backend/internal/application/recruiting"
)

var _ recruitingapp.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage is an in-process object store for local development and tests.
// A presigned upload is treated as completed with exactly the declared content,
// so the confirm flow works without a real bucket.
type MemoryObjectStorage struct {
	baseURL string
	mu      sync.RWMutex
	objects map[string]recruitingapp.ObjectInfo
	now     func() time.Time
}

// NewMemoryObjectStorage creates an empty store whose URLs start with baseURL
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/dev-bucket"
	}
	return &MemoryObjectStorage{
		baseURL: baseURL,
		objects: make(map[string]recruitingapp.ObjectInfo),
		now:     time.Now,
	}
}

// Put stores object metadata directly
func (m *MemoryObjectStorage) Put(key string, info recruitingapp.ObjectInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = info
}

// PresignUpload implements recruitingapp.ObjectStorage
func (m *MemoryObjectStorage) PresignUpload(_ context.Context, key, contentType, contentMD5 string, size int64, expiresIn time.Duration) (*recruitingapp.PresignedRequest, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	raw, err := base64.StdEncoding.DecodeString(contentMD5)
	if err != nil {
		return nil, errors.New("content md5 must be base64")
	}
	m.Put(key, recruitingapp.ObjectInfo{Size: size, ETag: hex.EncodeToString(raw), ContentType: contentType})

	expiresAt := m.now().Add(expiresIn)
	return &recruitingapp.PresignedRequest{
		URL:    m.url(key, expiresAt),
		Method: "PUT",
		Headers: map[string]string{
			"Content-Type": contentType,
			"Content-Md5":  contentMD5,
		},
		ExpiresAt: expiresAt,
	}, nil
}

// PresignDownload implements recruitingapp.ObjectStorage
func (m *MemoryObjectStorage) PresignDownload(_ context.Context, key, fileName string, expiresIn time.Duration) (*recruitingapp.PresignedRequest, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	expiresAt := m.now().Add(expiresIn)
	u := m.url(key, expiresAt)
	if fileName != "" {
		u += "&filename=" + url.QueryEscape(fileName)
	}
	return &recruitingapp.PresignedRequest{URL: u, Method: "GET", Headers: map[string]string{}, ExpiresAt: expiresAt}, nil
}

// StatObject implements recruitingapp.ObjectStorage
func (m *MemoryObjectStorage) StatObject(_ context.Context, key string) (*recruitingapp.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.objects[key]
	if !ok {
		return nil, recruitingapp.ErrObjectNotFound
	}
	return &info, nil
}

// DeleteObject implements recruitingapp.ObjectStorage
func (m *MemoryObjectStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryObjectStorage) url(key string, expiresAt time.Time) string {
	return m.baseURL + "/" + (&url.URL{Path: key}).EscapedPath() + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
}
