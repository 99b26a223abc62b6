package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	snap    *Snapshot
	expires time.Time
}

// MemoryCache keeps snapshots in process memory
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[int64]memEntry
	gens    map[int64]uint64
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates a cache whose entries expire after ttl; 0 means never
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[int64]memEntry),
		gens:    make(map[int64]uint64),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, tenantID int64) (*Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[tenantID]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		return nil, false, nil
	}
	return e.snap, true, nil
}

func (m *MemoryCache) Generation(_ context.Context, tenantID int64) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[tenantID], nil
}

func (m *MemoryCache) Set(_ context.Context, tenantID int64, gen uint64, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gens[tenantID] != gen {
		return nil
	}

	e := memEntry{snap: snap}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[tenantID] = e
	return nil
}

func (m *MemoryCache) Invalidate(_ context.Context, tenantID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, tenantID)
	m.gens[tenantID]++
	return nil
}
