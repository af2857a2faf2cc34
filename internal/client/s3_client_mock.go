package client

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"
)

// MockImageUploader implements ImageUploader in memory, for tests and for
// running without AWS credentials
type MockImageUploader struct {
	Bucket    string
	Region    string
	PublicURL string

	// Optional function overrides for custom test behavior
	UploadFunc     func(ctx context.Context, kind, owner string, file *Upload) (string, error)
	DeleteFileFunc func(ctx context.Context, key string) error

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMockImageUploader creates a new mock uploader
func NewMockImageUploader() *MockImageUploader {
	return &MockImageUploader{
		Bucket:  "test-bucket",
		Region:  "ap-southeast-1",
		objects: make(map[string][]byte),
	}
}

// GenerateFileKey generates a unique object key
func (m *MockImageUploader) GenerateFileKey(kind, owner, fileExt string) (string, error) {
	return generateImageKey(time.Now(), kind, owner, fileExt)
}

// Upload keeps the file contents in memory and returns its URL
func (m *MockImageUploader) Upload(ctx context.Context, kind, owner string, file *Upload) (string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, kind, owner, file)
	}
	if file == nil || file.Body == nil {
		return "", fmt.Errorf("no file to upload")
	}
	key, err := m.GenerateFileKey(kind, owner, filepath.Ext(file.FileName))
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(file.Body)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	m.mu.Unlock()

	return m.GetFileURL(key), nil
}

// DeleteFile removes an object
func (m *MockImageUploader) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// GetFileURL returns the public URL of key
func (m *MockImageUploader) GetFileURL(key string) string {
	return imageURL(m.PublicURL, "", m.Bucket, m.Region, key)
}

// Objects returns the number of stored objects
func (m *MockImageUploader) Objects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ ImageUploader = (*MockImageUploader)(nil)
