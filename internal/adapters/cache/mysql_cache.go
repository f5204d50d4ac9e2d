package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/spam-detective/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheStore interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

var _ core.CacheStore = (*MySQLCache)(nil)

// NewMySQLCache creates a new MySQL cache store
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			cache_key VARCHAR(255) PRIMARY KEY,
			cache_value BLOB,
			expires_at BIGINT,
			INDEX idx_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	c := &MySQLCache{
		db:          db,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go c.startCleanupTask()

	return c, nil
}

// Get retrieves a value by key
func (c *MySQLCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, `
		SELECT cache_value FROM analysis_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().Unix()).Scan(&value)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	return value, nil
}

// Set stores a value under key with the given TTL
func (c *MySQLCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO analysis_cache (cache_key, cache_value, expires_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE cache_value = VALUES(cache_value), expires_at = VALUES(expires_at)
	`, key, value, time.Now().Add(ttl).Unix())

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a single entry
func (c *MySQLCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache WHERE cache_key = ?
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeletePrefix removes every entry whose key starts with prefix
func (c *MySQLCache) DeletePrefix(ctx context.Context, prefix string) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache WHERE cache_key LIKE ?
	`, escapeLike(prefix)+"%")

	if err != nil {
		return fmt.Errorf("failed to delete cache entries by prefix: %w", err)
	}

	if deleted, err := result.RowsAffected(); err == nil {
		c.logger.Debug("Deleted cache entries by prefix",
			zap.String("prefix", prefix),
			zap.Int64("deleted", deleted))
	}
	return nil
}

// Stats returns total and expired entry counts
func (c *MySQLCache) Stats(ctx context.Context) (total int, expired int, err error) {
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_cache`).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	err = c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM analysis_cache WHERE expires_at <= ?
	`, time.Now().Unix()).Scan(&expired)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count expired cache entries: %w", err)
	}
	return total, expired, nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM analysis_cache WHERE expires_at <= ?
	`, time.Now().Unix())

	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MySQLCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	close(c.stopCh)
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL connection", zap.Error(err))
	}
}
