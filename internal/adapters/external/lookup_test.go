package external

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/adapters/cache"
)

func TestCachedLookupCachesSuccess(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	memCache := cache.NewMemoryCache(zap.NewNop(), time.Hour)
	defer memCache.Stop()

	calls := 0
	lookup := NewCachedLookup(memCache, "external/test_", time.Hour, time.Second, zap.NewNop(),
		func(ctx context.Context, key string) (int, error) {
			calls++
			return 7, nil
		})

	value, ok := lookup.Do(ctx, "alice@example.com")
	assert.True(ok)
	assert.Equal(7, value)

	value, ok = lookup.Do(ctx, "alice@example.com")
	assert.True(ok)
	assert.Equal(7, value)
	assert.Equal(1, calls, "second call is served from the cache")

	// Invalidation forces a fresh call.
	assert.NoError(lookup.Invalidate(ctx, "alice@example.com"))
	_, _ = lookup.Do(ctx, "alice@example.com")
	assert.Equal(2, calls)
}

func TestCachedLookupDoesNotCacheFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	memCache := cache.NewMemoryCache(zap.NewNop(), time.Hour)
	defer memCache.Stop()

	calls := 0
	lookup := NewCachedLookup(memCache, "external/test_", time.Hour, time.Second, zap.NewNop(),
		func(ctx context.Context, key string) (int, error) {
			calls++
			if calls == 1 {
				return 0, errors.New("provider down")
			}
			return 9, nil
		})

	_, ok := lookup.Do(ctx, "bob@example.com")
	assert.False(ok, "failure degrades to not-checked")

	// The failure was not cached; the retry reaches the provider.
	value, ok := lookup.Do(ctx, "bob@example.com")
	assert.True(ok)
	assert.Equal(9, value)
	assert.Equal(2, calls)
}
