// Package external implements network-backed reputation checks:
// StopForumSpam email/IP lookups, MX record validation and Gravatar
// existence. Every lookup runs under a short timeout and is cached
// independently of analysis results; failures degrade to "not
// checked" instead of propagating.
package external

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mikey/spam-detective/internal/core"
	"go.uber.org/zap"
)

// CachedLookup memoizes a remote lookup in a CacheStore. It is
// parameterized by the provider function, a cache-key prefix and a
// TTL, and uniformly converts lookup errors into a missed (zero,
// false) result.
type CachedLookup[T any] struct {
	cache   core.CacheStore
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
	fn      func(ctx context.Context, key string) (T, error)
}

// NewCachedLookup wraps fn with caching and a per-call timeout.
func NewCachedLookup[T any](
	cache core.CacheStore,
	prefix string,
	ttl time.Duration,
	timeout time.Duration,
	logger *zap.Logger,
	fn func(ctx context.Context, key string) (T, error),
) *CachedLookup[T] {
	return &CachedLookup[T]{
		cache:   cache,
		prefix:  prefix,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
		fn:      fn,
	}
}

// Do returns the cached or freshly looked-up value for key. The
// second return is false when the lookup failed; failed lookups are
// not cached so a later pass can retry.
func (l *CachedLookup[T]) Do(ctx context.Context, key string) (T, bool) {
	var value T
	cacheKey := l.prefix + hashKey(key)

	if raw, err := l.cache.Get(ctx, cacheKey); err == nil {
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, true
		}
		// Unreadable entry, fall through to a fresh lookup.
		_ = l.cache.Delete(ctx, cacheKey)
	}

	callCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	value, err := l.fn(callCtx, key)
	if err != nil {
		l.logger.Warn("External lookup failed",
			zap.String("lookup", l.prefix),
			zap.Error(err))
		var zero T
		return zero, false
	}

	if raw, err := json.Marshal(value); err == nil {
		if err := l.cache.Set(ctx, cacheKey, raw, l.ttl); err != nil {
			l.logger.Warn("Failed to cache external lookup",
				zap.String("lookup", l.prefix),
				zap.Error(err))
		}
	}

	return value, true
}

// Invalidate drops the cached value for key.
func (l *CachedLookup[T]) Invalidate(ctx context.Context, key string) error {
	return l.cache.Delete(ctx, l.prefix+hashKey(key))
}

func hashKey(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
