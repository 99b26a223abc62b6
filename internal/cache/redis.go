package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"
)

const keyPrefix = "openaccess:topology:"

// NewRedisPool creates a connection pool for the given redis:// url
func NewRedisPool(ctx context.Context, url string) (*redis.Pool, error) {
	if url == "" {
		return nil, errors.New("redis not configured")
	}

	log.Info(ctx, "redis cache configured", j.KV("address", url))

	do := []redis.DialOption{
		redis.DialReadTimeout(5 * time.Second),
		redis.DialWriteTimeout(5 * time.Second),
	}

	return &redis.Pool{
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, url, do...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
		MaxIdle:     3,
		MaxActive:   10,
		IdleTimeout: time.Minute,
		Wait:        true,
	}, nil
}

func ping(ctx context.Context, pool *redis.Pool) error {
	conn, err := pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = redis.DoContext(conn, ctx, "PING")
	return err
}

// RedisCache stores snapshots as JSON strings with an expiry, next to a
// per-tenant generation counter
type RedisCache struct {
	pool *redis.Pool
	ttl  time.Duration
}

// NewRedisCache creates a cache on top of pool; ttl 0 means no expiry
func NewRedisCache(pool *redis.Pool, ttl time.Duration) *RedisCache {
	return &RedisCache{pool: pool, ttl: ttl}
}

func snapshotKey(tenantID int64) string {
	return keyPrefix + strconv.FormatInt(tenantID, 10)
}

func (r *RedisCache) Get(ctx context.Context, tenantID int64) (*Snapshot, bool, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get redis connection")
	}
	defer conn.Close()

	data, err := redis.Bytes(redis.DoContext(conn, ctx, "GET", snapshotKey(tenantID)))
	if errors.Is(err, redis.ErrNil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, "failed to read snapshot", j.KV("tenant_id", tenantID))
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, errors.Wrap(err, "failed to decode snapshot", j.KV("tenant_id", tenantID))
	}
	return &snap, true, nil
}

func generationKey(tenantID int64) string {
	return snapshotKey(tenantID) + ":gen"
}

func readGeneration(ctx context.Context, conn redis.Conn, tenantID int64) (uint64, error) {
	gen, err := redis.Uint64(redis.DoContext(conn, ctx, "GET", generationKey(tenantID)))
	if errors.Is(err, redis.ErrNil) {
		return 0, nil
	} else if err != nil {
		return 0, errors.Wrap(err, "failed to read generation", j.KV("tenant_id", tenantID))
	}
	return gen, nil
}

func (r *RedisCache) Generation(ctx context.Context, tenantID int64) (uint64, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get redis connection")
	}
	defer conn.Close()

	return readGeneration(ctx, conn, tenantID)
}

// Set writes the snapshot in a MULTI block guarded by WATCH on the
// generation key, so an Invalidate racing the write aborts it.
func (r *RedisCache) Set(ctx context.Context, tenantID int64, gen uint64, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}

	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get redis connection")
	}
	defer conn.Close()

	if _, err := redis.DoContext(conn, ctx, "WATCH", generationKey(tenantID)); err != nil {
		return errors.Wrap(err, "failed to watch generation", j.KV("tenant_id", tenantID))
	}

	cur, err := readGeneration(ctx, conn, tenantID)
	if err != nil {
		return err
	}
	if cur != gen {
		_, err := redis.DoContext(conn, ctx, "UNWATCH")
		return err
	}

	args := []any{snapshotKey(tenantID), data}
	if r.ttl > 0 {
		args = append(args, "EX", max(int64(r.ttl/time.Second), 1))
	}
	if err := conn.Send("MULTI"); err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	if err := conn.Send("SET", args...); err != nil {
		return errors.Wrap(err, "failed to queue snapshot")
	}
	// A nil EXEC reply means the generation moved and nothing was written.
	if _, err := redis.DoContext(conn, ctx, "EXEC"); err != nil {
		return errors.Wrap(err, "failed to store snapshot", j.KV("tenant_id", tenantID))
	}
	return nil
}

func (r *RedisCache) Invalidate(ctx context.Context, tenantID int64) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get redis connection")
	}
	defer conn.Close()

	if _, err := redis.DoContext(conn, ctx, "INCR", generationKey(tenantID)); err != nil {
		return errors.Wrap(err, "failed to bump generation", j.KV("tenant_id", tenantID))
	}
	if _, err := redis.DoContext(conn, ctx, "DEL", snapshotKey(tenantID)); err != nil {
		return errors.Wrap(err, "failed to delete snapshot", j.KV("tenant_id", tenantID))
	}
	return nil
}
