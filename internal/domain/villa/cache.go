package villa

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cacheKeyAll    = "villas:all"
	cacheKeyPrefix = "villas:id:"
	cacheTTL       = 5 * time.Minute
)

// cachedRepository is a read-through Redis cache in front of Repository.
// Cache failures are logged and fall through to the database.
type cachedRepository struct {
	Repository
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedRepository wraps repo with a Redis cache. A nil client returns
// repo unchanged.
func NewCachedRepository(repo Repository, client *redis.Client) Repository {
	if client == nil {
		return repo
	}
	return &cachedRepository{Repository: repo, redis: client, ttl: cacheTTL}
}

func (c *cachedRepository) List(ctx context.Context) ([]*Villa, error) {
	var villas []*Villa
	if c.get(ctx, cacheKeyAll, &villas) {
		return villas, nil
	}

	villas, err := c.Repository.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, cacheKeyAll, villas)
	return villas, nil
}

func (c *cachedRepository) GetByID(ctx context.Context, id string) (*Villa, error) {
	var v Villa
	if c.get(ctx, cacheKeyPrefix+id, &v) {
		return &v, nil
	}

	found, err := c.Repository.GetByID(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	c.set(ctx, cacheKeyPrefix+id, found)
	return found, nil
}

func (c *cachedRepository) Create(ctx context.Context, v *Villa) error {
	if err := c.Repository.Create(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID)
	return nil
}

func (c *cachedRepository) Update(ctx context.Context, v *Villa) error {
	if err := c.Repository.Update(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID)
	return nil
}

func (c *cachedRepository) get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Villa cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Villa cache entry corrupt")
		return false
	}
	return true
}

func (c *cachedRepository) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Villa cache write failed")
	}
}

func (c *cachedRepository) invalidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, cacheKeyAll, cacheKeyPrefix+id).Err(); err != nil {
		log.Warn().Err(err).Str("villa_id", id).Msg("Villa cache invalidation failed")
	}
}
