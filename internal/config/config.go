package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// Language codes stored in the session. Everything that isn't "hu" is
// treated as English when talking to the catalog.
const (
	LanguageHungarian = "hu"
	LanguageEnglish   = "en"
)

// Config holds the configuration for the cinelog server and its dependencies.
type Config struct {
	// Listen is the address the cinelog server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SessionKey is the key used to sign and encrypt session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// DefaultLanguage is the language used for catalog requests when the
	// session has no preference ("hu" or "en").
	DefaultLanguage string `yaml:"default_language" mapstructure:"default_language"`
	// GenreRefreshSchedule is the cron schedule for the background genre cache warmup.
	GenreRefreshSchedule string `yaml:"genre_refresh_schedule" mapstructure:"genre_refresh_schedule"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// TMDB holds the configuration for the remote movie catalog.
	TMDB *TMDBConfig `yaml:"tmdb" mapstructure:"tmdb"`
	// Cache holds the cache engine configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// TMDBConfig holds the configuration for the remote movie catalog service.
type TMDBConfig struct {
	// APIKey is the TMDB API key, sent as a query parameter on every request.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// URL is the base URL of the TMDB API.
	URL string `yaml:"url" mapstructure:"url"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout" mapstructure:"timeout"`
}

// CacheConfig holds the configuration for the cache engine.
type CacheConfig struct {
	// Type is the type of cache engine to use (e.g., "memory", "redis").
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the URL for the Redis cache if using Redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// CatalogTTL is how long catalog responses are cached, in seconds.
	CatalogTTL int `yaml:"catalog_ttl" mapstructure:"catalog_ttl"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("CINELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Search for config in common locations
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.cinelog")
		v.AddConfigPath("/etc/cinelog")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with the CINELOG_ prefix override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 86400) // 24 hours
	v.SetDefault("default_language", LanguageHungarian)
	v.SetDefault("genre_refresh_schedule", "0 */6 * * *") // Every 6 hours

	// Database defaults
	v.SetDefault("database.path", "./data/cinelog.db")

	// TMDB defaults
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.timeout", 5)

	// Cache defaults
	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.catalog_ttl", 300) // 5 minutes
}

// validateConfig checks that the required secrets and invariants are present.
// Missing secrets are startup errors, never runtime errors.
func validateConfig(c *Config) error {
	if c.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if c.TMDB == nil || c.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required")
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}
	if c.Cache != nil && c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is required when cache.type is redis")
	}
	if c.DefaultLanguage != LanguageHungarian && c.DefaultLanguage != LanguageEnglish {
		return fmt.Errorf("default_language must be %q or %q", LanguageHungarian, LanguageEnglish)
	}
	return nil
}
