package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileDataSource reads the snapshot from a JSON document. A missing file
// yields Fallback so a fresh install still renders.
type FileDataSource struct {
	Path     string
	Fallback Snapshot
}

// Snapshot decodes the file on every call.
func (s FileDataSource) Snapshot(context.Context) (Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cloneSnapshot(s.Fallback), nil
		}
		return Snapshot{}, fmt.Errorf("dashboard: read snapshot %s: %w", s.Path, err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("dashboard: decode snapshot %s: %w", s.Path, err)
	}
	return snapshot, nil
}

// CachedDataSource memoizes snapshots for TTL so repeated renders are cheap.
// A zero TTL disables caching.
type CachedDataSource struct {
	source DataSource
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	cached  Snapshot
	expires time.Time
	valid   bool
}

// NewCachedDataSource wraps source with a TTL cache.
func NewCachedDataSource(source DataSource, ttl time.Duration) *CachedDataSource {
	return &CachedDataSource{source: source, ttl: ttl, now: time.Now}
}

// Snapshot returns the cached snapshot or loads and stores a new one.
// Failed loads are not cached.
func (c *CachedDataSource) Snapshot(ctx context.Context) (Snapshot, error) {
	if snapshot, ok := c.get(); ok {
		return snapshot, nil
	}
	snapshot, err := c.source.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	c.set(snapshot)
	return cloneSnapshot(snapshot), nil
}

// Invalidate drops the cached snapshot.
func (c *CachedDataSource) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

func (c *CachedDataSource) get() (Snapshot, bool) {
	if c.ttl <= 0 {
		return Snapshot{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || c.now().After(c.expires) {
		return Snapshot{}, false
	}
	return cloneSnapshot(c.cached), true
}

func (c *CachedDataSource) set(snapshot Snapshot) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.cached = cloneSnapshot(snapshot)
	c.expires = c.now().Add(c.ttl)
	c.valid = true
	c.mu.Unlock()
}
