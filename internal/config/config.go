package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/spam-detective/")
	v.AddConfigPath("$HOME/.spam-detective")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("SPAM_DETECTIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Risk threshold defaults (ascending: low < medium < high)
	v.SetDefault("risk.threshold_low", 25)
	v.SetDefault("risk.threshold_medium", 40)
	v.SetDefault("risk.threshold_high", 70)

	// Detection feature defaults
	v.SetDefault("detection.enable_entropy_check", true)
	v.SetDefault("detection.enable_homoglyph_check", true)
	v.SetDefault("detection.enable_keyboard_check", true)
	v.SetDefault("detection.enable_tld_check", true)
	v.SetDefault("detection.enable_disposable_check", true)
	v.SetDefault("detection.enable_similarity_check", false)
	v.SetDefault("detection.similarity_threshold", 2)
	v.SetDefault("detection.similarity_candidate_cap", 500)
	v.SetDefault("detection.track_registration_ip", true)

	// External check defaults (master toggle off, requires opt-in)
	v.SetDefault("external.enabled", false)
	v.SetDefault("external.enable_stopforumspam", false)
	v.SetDefault("external.enable_mx_check", true)
	v.SetDefault("external.enable_gravatar_check", true)
	v.SetDefault("external.timeout", "5s")
	v.SetDefault("external.cache_ttl", "24h")
	v.SetDefault("external.max_concurrency", 8)
	v.SetDefault("external.stopforumspam_url", "https://api.stopforumspam.org/api")
	v.SetDefault("external.gravatar_url", "https://www.gravatar.com/avatar")

	// Batch defaults
	v.SetDefault("batch.workers", 4)
	v.SetDefault("batch.quick_scan_limit", 100)
	v.SetDefault("batch.interval", "1h")
	v.SetDefault("batch.limit", 0)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/spam_detective_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/spam_detective")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")

	// Repository defaults
	v.SetDefault("repository.driver", "sqlite3")
	v.SetDefault("repository.sqlite_path", "/data/spam_detective.db")
	v.SetDefault("repository.mysql_dsn", "user:password@tcp(localhost:3306)/spam_detective")

	// Lifecycle defaults
	v.SetDefault("lifecycle.protected_roles", []string{"administrator", "editor", "moderator"})
	v.SetDefault("lifecycle.protect_active_accounts", true)

	// Metrics defaults (empty address disables the listener)
	v.SetDefault("metrics.listen_address", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
