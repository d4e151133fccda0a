package config

import (
	"fmt"
	"time"
)

// Backends for persisted filter state.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Settings is the typed form of the configuration.
type Settings struct {
	API        APISettings        `mapstructure:"api"`
	State      StateSettings      `mapstructure:"state"`
	Auth       AuthSettings       `mapstructure:"auth"`
	Pricing    PricingSettings    `mapstructure:"pricing"`
	Pagination PaginationSettings `mapstructure:"pagination"`
	Log        LogSettings        `mapstructure:"log"`
}

type APISettings struct {
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	PageLimit   int           `mapstructure:"page_limit"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	CacheSize   int           `mapstructure:"cache_size"`
	Currency    string        `mapstructure:"currency"`
	Concurrency int           `mapstructure:"concurrency"`
}

type StateSettings struct {
	Backend    string `mapstructure:"backend"`
	SQLitePath string `mapstructure:"sqlite_path"`
	RedisURL   string `mapstructure:"redis_url"`
}

type AuthSettings struct {
	Token string `mapstructure:"token"`
}

type PricingSettings struct {
	LowestTierMax float64 `mapstructure:"lowest_tier_max"`
	TopTierMin    float64 `mapstructure:"top_tier_min"`
}

type PaginationSettings struct {
	PageSize int `mapstructure:"page_size"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Settings decodes and validates the configuration.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects settings no component can run with.
func (s *Settings) Validate() error {
	if s.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch s.State.Backend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("state.backend %q: want sqlite, redis or memory", s.State.Backend)
	}
	if s.Pricing.LowestTierMax < 0 || s.Pricing.TopTierMin < s.Pricing.LowestTierMax {
		return fmt.Errorf("pricing tiers out of order: lowest_tier_max=%v top_tier_min=%v",
			s.Pricing.LowestTierMax, s.Pricing.TopTierMin)
	}
	return nil
}
