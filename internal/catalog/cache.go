package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// DocumentCache keeps decoded quiz records close to the player path.
type DocumentCache interface {
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	Set(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Cache is the Redis-backed DocumentCache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ DocumentCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(id uuid.UUID) string {
	return "quizdoc:" + id.String()
}

// Get returns nil, nil on a miss.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Cache) Set(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(rec.ID), data, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
