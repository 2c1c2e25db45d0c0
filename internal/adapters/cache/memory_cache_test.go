package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mikey/gmail-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func entry(sender string, probability float64, ttl time.Duration) *core.ReputationEntry {
	now := time.Now()
	return &core.ReputationEntry{
		Sender:      sender,
		Probability: probability,
		LastSeen:    now,
		ExpiresAt:   now.Add(ttl),
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("a@x.test", 0.42, time.Hour)))

	got, err := c.Get(ctx, "a@x.test")
	require.NoError(t, err)
	assert.Equal(t, "a@x.test", got.Sender)
	assert.Equal(t, 0.42, got.Probability)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "unknown@x.test")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("old@x.test", 0.9, -time.Minute)))

	_, err := c.Get(ctx, "old@x.test")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("a@x.test", 0.5, time.Hour)))
	require.NoError(t, c.Delete(ctx, "a@x.test"))

	_, err := c.Get(ctx, "a@x.test")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("fresh@x.test", 0.5, time.Hour)))
	require.NoError(t, c.Set(ctx, entry("stale@x.test", 0.5, -time.Minute)))

	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "fresh@x.test")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "stale@x.test")
	assert.ErrorIs(t, err, ErrNotFound, "cleanup must remove the entry, not just hide it")
}

func TestMemoryCacheGetReturnsCopy(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("a@x.test", 0.5, time.Hour)))

	got, err := c.Get(ctx, "a@x.test")
	require.NoError(t, err)
	got.Probability = 0.99

	again, err := c.Get(ctx, "a@x.test")
	require.NoError(t, err)
	assert.Equal(t, 0.5, again.Probability)
}
