package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

// IdentityCache keeps resolved session identities in redis, keyed by email.
type IdentityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdentityCache(rdb *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{rdb: rdb, ttl: ttl}
}

func identityKey(email string) string {
	return "identity:" + email
}

func (c *IdentityCache) Get(ctx context.Context, email string) (entity.Identity, bool, error) {
	var id entity.Identity
	found, err := helpers.RedisGetJSON(ctx, c.rdb, identityKey(email), &id)
	if err != nil || !found {
		return entity.Identity{}, false, err
	}
	return id, true, nil
}

func (c *IdentityCache) Set(ctx context.Context, id entity.Identity) error {
	return helpers.RedisSetJSON(ctx, c.rdb, identityKey(id.Email), id, c.ttl)
}

func (c *IdentityCache) Invalidate(ctx context.Context, email string) error {
	return helpers.RedisDel(ctx, c.rdb, identityKey(email))
}
