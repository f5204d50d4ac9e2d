package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/core"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(err, core.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal([]byte("v"), value)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(err, core.ErrNotFound)
}

func TestMemoryCacheExpiry(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	// Expired entries are invisible even before cleanup runs.
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(err, core.ErrNotFound)

	total, expired, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(1, total)
	assert.Equal(1, expired)

	require.NoError(t, c.Cleanup(ctx))
	total, expired, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(0, total)
	assert.Equal(0, expired)
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	require.NoError(t, c.Set(ctx, "analysis/user_1", []byte("a"), time.Hour))
	require.NoError(t, c.Set(ctx, "analysis/user_2", []byte("b"), time.Hour))
	require.NoError(t, c.Set(ctx, "external/mx_x", []byte("c"), time.Hour))

	require.NoError(t, c.DeletePrefix(ctx, "analysis/"))

	_, err := c.Get(ctx, "analysis/user_1")
	assert.ErrorIs(err, core.ErrNotFound)
	_, err = c.Get(ctx, "analysis/user_2")
	assert.ErrorIs(err, core.ErrNotFound)

	// Other prefixes survive.
	value, err := c.Get(ctx, "external/mx_x")
	require.NoError(t, err)
	assert.Equal([]byte("c"), value)
}
