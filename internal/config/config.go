// Package config loads server configuration from central.yml and the
// CENTRAL_* environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the central server configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	// Address is the listen address, e.g. ":8383".
	Address string `mapstructure:"address"`

	// Domain is the absolute base URL clients reach the server under.
	// It prefixes every context URL and nextLink the server emits.
	Domain string `mapstructure:"domain"`

	// WriteTimeout 0 means unlimited; feed responses last as long as
	// their row streams.
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CacheConfig represents document cache configuration
type CacheConfig struct {
	// Backend selects the document cache: "memory", "redis", or "none".
	Backend string `mapstructure:"backend"`

	// TTL bounds how long a rendered document stays cached.
	TTL time.Duration `mapstructure:"ttl"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Development switches to the human-readable console encoder.
	Development bool `mapstructure:"development"`
}

// Load loads the configuration from central.yml or central.yaml in the
// working directory, with CENTRAL_* environment variables taking
// precedence over the file.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.address", ":8383")
	v.SetDefault("server.domain", "http://localhost:8383")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", time.Duration(0))
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	// Set config name and paths
	v.SetConfigName("central")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support: CENTRAL_SERVER_ADDRESS
	// overrides server.address, and so on.
	v.SetEnvPrefix("CENTRAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if !strings.HasPrefix(cfg.Server.Domain, "http://") && !strings.HasPrefix(cfg.Server.Domain, "https://") {
		return fmt.Errorf("server.domain must be an absolute http(s) URL, got: %s", cfg.Server.Domain)
	}
	if strings.HasSuffix(cfg.Server.Domain, "/") {
		// Paths are appended verbatim; a trailing slash would double up.
		return fmt.Errorf("server.domain must not end with '/', got: %s", cfg.Server.Domain)
	}

	switch cfg.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("cache.backend must be one of memory, redis, none, got: %s", cfg.Cache.Backend)
	}

	if cfg.Cache.Backend == "redis" && cfg.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required when cache.backend is redis")
	}

	return nil
}
