package cache

import (
	"context"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

func testSnapshot() *Snapshot {
	active := true
	return &Snapshot{
		Devices: []domain.Device{
			{Kind: domain.KindRouter, ID: 1, Name: "Core", IsActive: &active, Password: "hunter2"},
		},
		Connections: []domain.Connection{
			{ID: 1, Source: domain.DeviceRef{Kind: domain.KindRouter, ID: 1}, Destination: domain.DeviceRef{Kind: domain.KindSwitch, ID: 1}},
		},
		Positions: []domain.NodePosition{{NodeUID: "Router-1", X: 1, Y: 2}},
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("get set invalidate", func(t *testing.T) {
		c := NewMemoryCache(0)

		_, ok, err := c.Get(ctx, 1)
		jtest.RequireNil(t, err)
		assert.False(t, ok)

		snap := testSnapshot()
		jtest.RequireNil(t, c.Set(ctx, 1, 0, snap))

		got, ok, err := c.Get(ctx, 1)
		jtest.RequireNil(t, err)
		require.True(t, ok)
		assert.Same(t, snap, got)

		_, ok, _ = c.Get(ctx, 2)
		assert.False(t, ok, "tenants do not share snapshots")

		jtest.RequireNil(t, c.Invalidate(ctx, 1))
		_, ok, _ = c.Get(ctx, 1)
		assert.False(t, ok)
	})

	t.Run("expiry", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c := NewMemoryCache(time.Minute)
		c.now = func() time.Time { return now }

		jtest.RequireNil(t, c.Set(ctx, 1, 0, testSnapshot()))

		now = now.Add(30 * time.Second)
		_, ok, _ := c.Get(ctx, 1)
		assert.True(t, ok)

		now = now.Add(time.Minute)
		_, ok, _ = c.Get(ctx, 1)
		assert.False(t, ok)
	})

	t.Run("stale generation is dropped", func(t *testing.T) {
		c := NewMemoryCache(0)

		gen, err := c.Generation(ctx, 1)
		jtest.RequireNil(t, err)

		// a write invalidates while the reader is still loading
		jtest.RequireNil(t, c.Invalidate(ctx, 1))

		jtest.RequireNil(t, c.Set(ctx, 1, gen, testSnapshot()))
		_, ok, _ := c.Get(ctx, 1)
		assert.False(t, ok)

		gen, err = c.Generation(ctx, 1)
		jtest.RequireNil(t, err)
		assert.Equal(t, uint64(1), gen)

		other, err := c.Generation(ctx, 2)
		jtest.RequireNil(t, err)
		assert.Zero(t, other)

		jtest.RequireNil(t, c.Set(ctx, 1, gen, testSnapshot()))
		_, ok, _ = c.Get(ctx, 1)
		assert.True(t, ok)
	})
}

func TestSnapshotPositionMap(t *testing.T) {
	m := testSnapshot().PositionMap()
	assert.Equal(t, domain.NodePosition{NodeUID: "Router-1", X: 1, Y: 2}, m["Router-1"])
	assert.Len(t, m, 1)
}

func TestOpenWithoutRedis(t *testing.T) {
	c := Open(context.Background(), "", time.Minute)
	_, ok := c.(*MemoryCache)
	assert.True(t, ok)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	conn, err := redis.DialURLContext(ctx, "redis://127.0.0.1:6379")
	if err != nil {
		t.Skip("redis not available: ", err)
	}
	conn.Close()

	pool, err := NewRedisPool(ctx, "redis://127.0.0.1:6379")
	jtest.RequireNil(t, err)
	defer pool.Close()

	c := NewRedisCache(pool, time.Minute)
	tenant := time.Now().UnixNano()

	_, ok, err := c.Get(ctx, tenant)
	jtest.RequireNil(t, err)
	assert.False(t, ok)

	gen, err := c.Generation(ctx, tenant)
	jtest.RequireNil(t, err)
	jtest.RequireNil(t, c.Set(ctx, tenant, gen, testSnapshot()))

	got, ok, err := c.Get(ctx, tenant)
	jtest.RequireNil(t, err)
	require.True(t, ok)
	assert.Equal(t, "Router-1", got.Devices[0].UID())
	assert.Empty(t, got.Devices[0].Password, "credentials are never serialised")
	assert.True(t, *got.Devices[0].IsActive)

	jtest.RequireNil(t, c.Invalidate(ctx, tenant))
	_, ok, err = c.Get(ctx, tenant)
	jtest.RequireNil(t, err)
	assert.False(t, ok)

	jtest.RequireNil(t, c.Set(ctx, tenant, gen, testSnapshot()))
	_, ok, err = c.Get(ctx, tenant)
	jtest.RequireNil(t, err)
	assert.False(t, ok, "a snapshot read before the invalidation is not stored")

	next, err := c.Generation(ctx, tenant)
	jtest.RequireNil(t, err)
	assert.Equal(t, gen+1, next)
}
