// Package cache holds per-tenant snapshots of the data a topology build reads.
//
// A snapshot is read-only once stored. Write paths invalidate the tenant's
// snapshot instead of patching it.
package cache

import (
	"context"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// Snapshot is the device, connection and position set of one tenant
type Snapshot struct {
	Devices     []domain.Device       `json:"devices"`
	Connections []domain.Connection   `json:"connections"`
	Positions   []domain.NodePosition `json:"positions"`
}

// PositionMap indexes the snapshot's positions by node uid
func (s *Snapshot) PositionMap() map[string]domain.NodePosition {
	m := make(map[string]domain.NodePosition, len(s.Positions))
	for _, p := range s.Positions {
		m[p.NodeUID] = p
	}
	return m
}

// Cache stores snapshots per tenant.
//
// Every Invalidate bumps the tenant's generation. A reader takes the
// generation before loading from the store and hands it to Set, which drops
// the snapshot if a write invalidated the tenant in between.
type Cache interface {
	// Get returns the tenant's snapshot and whether it was present
	Get(ctx context.Context, tenantID int64) (*Snapshot, bool, error)
	Generation(ctx context.Context, tenantID int64) (uint64, error)
	// Set stores snap unless the tenant's generation has moved past gen
	Set(ctx context.Context, tenantID int64, gen uint64, snap *Snapshot) error
	Invalidate(ctx context.Context, tenantID int64) error
}

// Open returns a redis backed cache when redisURL is set and reachable,
// otherwise an in-memory cache
func Open(ctx context.Context, redisURL string, ttl time.Duration) Cache {
	if redisURL == "" {
		return NewMemoryCache(ttl)
	}

	pool, err := NewRedisPool(ctx, redisURL)
	if err == nil {
		err = ping(ctx, pool)
	}
	if err != nil {
		log.Error(ctx, errors.Wrap(err, "failed to connect to redis, falling back to memory cache"))
		return NewMemoryCache(ttl)
	}

	log.Info(ctx, "topology cache backed by redis", j.KV("ttl", ttl.String()))
	return NewRedisCache(pool, ttl)
}
