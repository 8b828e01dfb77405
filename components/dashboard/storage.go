package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrStorageKeyNotFound is returned by Storage.Get when the key holds nothing.
var ErrStorageKeyNotFound = errors.New("dashboard: storage key not found")

// InMemoryStorage provides a concurrency-safe default store for tests and demos.
type InMemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemoryStorage creates an empty in-memory store.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{data: make(map[string][]byte)}
}

// Get returns the stored value or ErrStorageKeyNotFound.
func (s *InMemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, ErrStorageKeyNotFound
	}
	return append([]byte{}, value...), nil
}

// Set stores a copy of value under key.
func (s *InMemoryStorage) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("dashboard: storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte{}, value...)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *InMemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// FileStorage keeps one file per key inside Dir. Writes go through a temp file
// followed by a rename so a crash never leaves a half-written layout behind.
type FileStorage struct {
	Dir string
	mu  sync.Mutex
}

// NewFileStorage creates the directory if needed and returns the store.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("dashboard: file storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("dashboard: create storage dir %s: %w", dir, err)
	}
	return &FileStorage{Dir: dir}, nil
}

// Get reads the file backing key.
func (s *FileStorage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrStorageKeyNotFound
		}
		return nil, fmt.Errorf("dashboard: read storage key %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the file backing key.
func (s *FileStorage) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("dashboard: storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("dashboard: write storage key %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("dashboard: commit storage key %s: %w", key, err)
	}
	return nil
}

// Delete removes the file backing key.
func (s *FileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("dashboard: delete storage key %s: %w", key, err)
	}
	return nil
}

func (s *FileStorage) path(key string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_")
	return filepath.Join(s.Dir, replacer.Replace(key)+".json")
}
