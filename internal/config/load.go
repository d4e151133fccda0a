package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// PRICESCOUT_API_BASE_URL for api.base_url.
const EnvPrefix = "PRICESCOUT"

// SetDefaults registers the default value of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3000/api")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.rate_limit", 10.0)
	v.SetDefault("api.page_limit", 200)
	v.SetDefault("api.cache_ttl", 5*time.Minute)
	v.SetDefault("api.cache_size", 128)
	v.SetDefault("api.currency", "R")
	v.SetDefault("api.concurrency", 4)

	v.SetDefault("state.backend", "sqlite")
	v.SetDefault("state.sqlite_path", "pricescout.db")
	v.SetDefault("state.redis_url", "redis://localhost:6379/0")

	v.SetDefault("auth.token", "")

	v.SetDefault("pricing.lowest_tier_max", 3000.0)
	v.SetDefault("pricing.top_tier_min", 20000.0)

	v.SetDefault("pagination.page_size", 12)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads .env (when present), the optional config file at path and
// PRICESCOUT_* environment overrides, in increasing precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return New(v), nil
}
