// Package blobstore implements the whole-document persistence boundary: the
// record store is read and written as one JSON blob, last write wins. It
// provides the HTTP client for an external blob service, a local persister
// for self-hosted deployments, and the serving handler for the latter.
package blobstore

import (
	"context"
	"sync"

	"github.com/pmarinho/classxp/internal/models"
)

// DocumentKey names the single blob holding the record document.
const DocumentKey = "records"

// Persister loads and saves the whole record document.
type Persister interface {
	Load(ctx context.Context) (*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

// Backend stores named blobs.
type Backend interface {
	GetBlob(key string) ([]byte, bool, error)
	PutBlob(key string, data []byte) error
}

// MemoryBackend is the non-durable backend used in tests and memory-only runs.
type MemoryBackend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: map[string][]byte{}}
}

func (m *MemoryBackend) GetBlob(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[key]
	return b, ok, nil
}

func (m *MemoryBackend) PutBlob(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}
