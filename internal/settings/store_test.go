package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/adapters/cache"
	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
)

func newTestStore(t *testing.T) (*Store, *cache.MemoryCache) {
	t.Helper()
	memCache := cache.NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(memCache.Stop)
	cfg := config.NewFromViper(config.NewEmptyViper())
	return NewStore(cfg, memCache, zap.NewNop()), memCache
}

func TestStoreGetDefaults(t *testing.T) {
	assert := assert.New(t)
	store, _ := newTestStore(t)

	assert.Equal(25, store.GetInt("risk.threshold_low", 0))
	assert.True(store.GetBool("detection.enable_entropy_check", false))
	assert.Equal(42, store.GetInt("no.such.key", 42))
}

func TestSetManyFlushesAnalysisCache(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store, memCache := newTestStore(t)

	require.NoError(t, memCache.Set(ctx, AnalysisCachePrefix+"user_1", []byte("stale"), time.Hour))
	require.NoError(t, memCache.Set(ctx, "external/mx_x", []byte("keep"), time.Hour))

	require.NoError(t, store.SetMany(ctx, map[string]interface{}{
		"detection.enable_entropy_check": false,
	}))

	_, err := memCache.Get(ctx, AnalysisCachePrefix+"user_1")
	assert.ErrorIs(err, core.ErrNotFound)
	_, err = memCache.Get(ctx, "external/mx_x")
	assert.NoError(err)

	// The snapshot was invalidated, so the new value is visible.
	assert.False(store.GetBool("detection.enable_entropy_check", true))
}

func TestSetManyRejectsBadThresholds(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store, memCache := newTestStore(t)

	require.NoError(t, memCache.Set(ctx, AnalysisCachePrefix+"user_1", []byte("v"), time.Hour))

	err := store.SetMany(ctx, map[string]interface{}{
		"risk.threshold_low":    50,
		"risk.threshold_medium": 40,
	})
	assert.Error(err)

	// Rejected batches change nothing and flush nothing.
	assert.Equal(25, store.GetInt("risk.threshold_low", 0))
	_, err = memCache.Get(ctx, AnalysisCachePrefix+"user_1")
	assert.NoError(err)
}

func TestSetManyAcceptsAscendingThresholds(t *testing.T) {
	assert := assert.New(t)
	store, _ := newTestStore(t)

	require.NoError(t, store.SetMany(context.Background(), map[string]interface{}{
		"risk.threshold_low":    30,
		"risk.threshold_medium": 50,
		"risk.threshold_high":   80,
	}))
	assert.Equal(30, store.GetInt("risk.threshold_low", 0))
	assert.Equal(80, store.GetInt("risk.threshold_high", 0))
}
