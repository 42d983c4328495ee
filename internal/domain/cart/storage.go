// internal/domain/cart/storage.go
package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrVersionConflict is returned by Storage.Save when the stored version
// no longer matches the one the caller read
var ErrVersionConflict = errors.New("cart version conflict")

// Storage is a versioned key-value slot holding one serialized cart per key.
// Every successful Save or Delete advances the version.
type Storage interface {
	// Load returns the blob and its version. A missing blob is (nil, version, nil).
	Load(ctx context.Context, key string) ([]byte, int64, error)
	// Save writes blob if the stored version still equals expectedVersion
	Save(ctx context.Context, key string, blob []byte, expectedVersion int64) (int64, error)
	// Delete removes the blob unconditionally
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	blob    []byte
	version int64
}

// MemoryStorage is an in-process Storage
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]*memoryEntry),
	}
}

func (m *MemoryStorage) Load(ctx context.Context, key string) ([]byte, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, 0, nil
	}
	if e.blob == nil {
		return nil, e.version, nil
	}
	return append([]byte(nil), e.blob...), e.version, nil
}

func (m *MemoryStorage) Save(ctx context.Context, key string, blob []byte, expectedVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{}
		m.entries[key] = e
	}
	if e.version != expectedVersion {
		return 0, ErrVersionConflict
	}

	e.blob = append([]byte(nil), blob...)
	e.version++
	return e.version, nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	e.blob = nil
	e.version++
	return nil
}

// Put overwrites the raw blob without a version check
func (m *MemoryStorage) Put(key string, blob []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{}
		m.entries[key] = e
	}
	e.blob = blob
	e.version++
}
