package config

import (
	"fmt"
	"time"
)

// Thresholds holds the ascending risk-tier cutoffs. The low threshold
// doubles as the suspicious cutoff.
type Thresholds struct {
	Low    int
	Medium int
	High   int
}

// Validate rejects threshold sets that are not strictly ascending.
func (t Thresholds) Validate() error {
	if t.Low >= t.Medium || t.Medium >= t.High {
		return fmt.Errorf("risk thresholds must be strictly ascending: low=%d medium=%d high=%d", t.Low, t.Medium, t.High)
	}
	return nil
}

// DetectionConfig holds the per-analyzer feature flags.
type DetectionConfig struct {
	EnableEntropyCheck     bool
	EnableHomoglyphCheck   bool
	EnableKeyboardCheck    bool
	EnableTLDCheck         bool
	EnableDisposableCheck  bool
	EnableSimilarityCheck  bool
	SimilarityThreshold    int
	SimilarityCandidateCap int
	TrackRegistrationIP    bool
}

// ExternalConfig holds the external reputation check configuration.
// Enabled is the master toggle; each provider has its own sub-toggle.
type ExternalConfig struct {
	Enabled             bool
	EnableStopForumSpam bool
	EnableMXCheck       bool
	EnableGravatarCheck bool
	Timeout             time.Duration
	CacheTTL            time.Duration
	MaxConcurrency      int
	StopForumSpamURL    string
	GravatarURL         string
}

// BatchConfig controls batch analysis behaviour.
type BatchConfig struct {
	Workers        int
	QuickScanLimit int
}

// LifecycleConfig controls account deletion safety rules.
type LifecycleConfig struct {
	ProtectedRoles        []string
	ProtectActiveAccounts bool
}

// GetThresholds returns the risk threshold configuration.
func (c *Config) GetThresholds() (Thresholds, error) {
	t := Thresholds{
		Low:    c.GetInt("risk.threshold_low"),
		Medium: c.GetInt("risk.threshold_medium"),
		High:   c.GetInt("risk.threshold_high"),
	}
	if err := t.Validate(); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}

// GetDetection returns the detection feature configuration.
func (c *Config) GetDetection() DetectionConfig {
	return DetectionConfig{
		EnableEntropyCheck:     c.GetBool("detection.enable_entropy_check"),
		EnableHomoglyphCheck:   c.GetBool("detection.enable_homoglyph_check"),
		EnableKeyboardCheck:    c.GetBool("detection.enable_keyboard_check"),
		EnableTLDCheck:         c.GetBool("detection.enable_tld_check"),
		EnableDisposableCheck:  c.GetBool("detection.enable_disposable_check"),
		EnableSimilarityCheck:  c.GetBool("detection.enable_similarity_check"),
		SimilarityThreshold:    c.GetInt("detection.similarity_threshold"),
		SimilarityCandidateCap: c.GetInt("detection.similarity_candidate_cap"),
		TrackRegistrationIP:    c.GetBool("detection.track_registration_ip"),
	}
}

// GetExternal returns the external check configuration.
func (c *Config) GetExternal() (ExternalConfig, error) {
	timeout, err := c.GetDuration("external.timeout")
	if err != nil {
		return ExternalConfig{}, fmt.Errorf("invalid external.timeout: %w", err)
	}
	ttl, err := c.GetDuration("external.cache_ttl")
	if err != nil {
		return ExternalConfig{}, fmt.Errorf("invalid external.cache_ttl: %w", err)
	}
	return ExternalConfig{
		Enabled:             c.GetBool("external.enabled"),
		EnableStopForumSpam: c.GetBool("external.enable_stopforumspam"),
		EnableMXCheck:       c.GetBool("external.enable_mx_check"),
		EnableGravatarCheck: c.GetBool("external.enable_gravatar_check"),
		Timeout:             timeout,
		CacheTTL:            ttl,
		MaxConcurrency:      c.GetInt("external.max_concurrency"),
		StopForumSpamURL:    c.GetString("external.stopforumspam_url"),
		GravatarURL:         c.GetString("external.gravatar_url"),
	}, nil
}

// GetBatch returns the batch analysis configuration.
func (c *Config) GetBatch() BatchConfig {
	return BatchConfig{
		Workers:        c.GetInt("batch.workers"),
		QuickScanLimit: c.GetInt("batch.quick_scan_limit"),
	}
}

// GetLifecycle returns the account lifecycle configuration.
func (c *Config) GetLifecycle() LifecycleConfig {
	return LifecycleConfig{
		ProtectedRoles:        c.GetStringSlice("lifecycle.protected_roles"),
		ProtectActiveAccounts: c.GetBool("lifecycle.protect_active_accounts"),
	}
}
