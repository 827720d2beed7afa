package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
	"github.com/faizi-7/graveyard-back/pkg/helpers"
)

func newCache(t *testing.T, ttl time.Duration) (*IdentityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := helpers.NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	return NewIdentityCache(rdb, ttl), mr
}

func TestIdentityCache_RoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, time.Minute)

	_, found, err := c.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)

	id := entity.Identity{UserID: "u1", Username: "alice", Email: "a@x.com", Role: entity.RoleContributor}
	require.NoError(t, c.Set(ctx, id))

	got, found, err := c.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)

	require.NoError(t, c.Invalidate(ctx, "a@x.com"))
	_, found, err = c.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdentityCache_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, entity.Identity{UserID: "u1", Email: "a@x.com"}))
	mr.FastForward(2 * time.Minute)

	_, found, err := c.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.False(t, found)
}
