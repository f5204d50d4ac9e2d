// Package settings provides a read-through cached accessor over the
// configuration store. Reads hit a snapshot built once per batch;
// writes validate, invalidate the snapshot and flush cached analysis
// results since settings shape every score.
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mikey/spam-detective/internal/config"
	"github.com/mikey/spam-detective/internal/core"
)

// AnalysisCachePrefix keys every cached analysis result so a settings
// or domain-list change can flush them all in one prefix delete.
const AnalysisCachePrefix = "analysis/"

// Store is a read-mostly settings accessor.
type Store struct {
	mu       sync.RWMutex
	v        *viper.Viper
	snapshot map[string]interface{}
	cache    core.CacheStore
	logger   *zap.Logger
}

// NewStore creates a settings store over the given configuration.
func NewStore(cfg *config.Config, cache core.CacheStore, logger *zap.Logger) *Store {
	return &Store{
		v:      cfg.GetViper(),
		cache:  cache,
		logger: logger,
	}
}

// Get returns the value for key, or def when unset.
func (s *Store) Get(key string, def interface{}) interface{} {
	snap := s.load()
	if value, ok := snap[key]; ok && value != nil {
		return value
	}
	return def
}

// GetBool returns a boolean setting.
func (s *Store) GetBool(key string, def bool) bool {
	if value, ok := s.Get(key, def).(bool); ok {
		return value
	}
	return def
}

// GetInt returns an integer setting.
func (s *Store) GetInt(key string, def int) int {
	switch value := s.Get(key, def).(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	}
	return def
}

// GetStringSlice returns a string-slice setting.
func (s *Store) GetStringSlice(key string) []string {
	switch value := s.Get(key, nil).(type) {
	case []string:
		return value
	case []interface{}:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// SetMany applies a batch of settings. Threshold changes are validated
// before anything is written; invalid batches are rejected whole. On
// success the snapshot is invalidated and all cached analysis results
// are flushed, since any setting may change scores.
func (s *Store) SetMany(ctx context.Context, values map[string]interface{}) error {
	if err := s.validateThresholds(values); err != nil {
		return err
	}

	s.mu.Lock()
	for key, value := range values {
		s.v.Set(key, value)
	}
	s.snapshot = nil
	s.mu.Unlock()

	if err := s.cache.DeletePrefix(ctx, AnalysisCachePrefix); err != nil {
		s.logger.Error("Failed to flush analysis cache after settings change", zap.Error(err))
		return fmt.Errorf("flush analysis cache: %w", err)
	}

	s.logger.Info("Settings updated", zap.Int("keys", len(values)))
	return nil
}

// Invalidate drops the snapshot so the next read rebuilds it.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *Store) load() map[string]interface{} {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil {
		return snap
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		snap = make(map[string]interface{})
		for _, key := range s.v.AllKeys() {
			snap[key] = s.v.Get(key)
		}
		s.snapshot = snap
	}
	return s.snapshot
}

// validateThresholds rejects writes that would leave the risk
// thresholds non-ascending.
func (s *Store) validateThresholds(values map[string]interface{}) error {
	touched := false
	for _, key := range []string{"risk.threshold_low", "risk.threshold_medium", "risk.threshold_high"} {
		if _, ok := values[key]; ok {
			touched = true
			break
		}
	}
	if !touched {
		return nil
	}

	next := config.Thresholds{
		Low:    s.GetInt("risk.threshold_low", 25),
		Medium: s.GetInt("risk.threshold_medium", 40),
		High:   s.GetInt("risk.threshold_high", 70),
	}
	if value, ok := values["risk.threshold_low"]; ok {
		next.Low = toInt(value, next.Low)
	}
	if value, ok := values["risk.threshold_medium"]; ok {
		next.Medium = toInt(value, next.Medium)
	}
	if value, ok := values["risk.threshold_high"]; ok {
		next.High = toInt(value, next.High)
	}
	return next.Validate()
}

func toInt(value interface{}, def int) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
