package domain

import "time"

// Config mirrors ~/.recogaize/config.yaml.
type Config struct {
	ConfigFormatVersion string          `yaml:"config_format_version"`
	API                 APISettings     `yaml:"api"`
	Upload              UploadSettings  `yaml:"upload"`
	History             HistorySettings `yaml:"history"`
	Cache               CacheSettings   `yaml:"cache"`
	Server              ServerSettings  `yaml:"server"`
	Logging             LoggingSettings `yaml:"logging"`
}

// APISettings locates the captioning service.
type APISettings struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// UploadSettings controls optional client-side checks before sending.
type UploadSettings struct {
	Validate bool  `yaml:"validate"`
	MaxBytes int64 `yaml:"max_bytes"`
}

// HistorySettings configures the durable caption archive.
type HistorySettings struct {
	Archive       bool   `yaml:"archive"`
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// CacheSettings configures response caching keyed by image digest.
type CacheSettings struct {
	Backend     string `yaml:"backend"`
	TTLSeconds  int    `yaml:"ttl"`
	MaxEntries  int    `yaml:"max_entries"`
	Dir         string `yaml:"dir"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// ServerSettings configures `recogaize serve`.
type ServerSettings struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// LoggingSettings selects the log level.
type LoggingSettings struct {
	Level string `yaml:"level"`
}

// Timeout returns the API timeout, falling back to DefaultHTTPClientTimeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return DefaultHTTPClientTimeout
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// CacheTTL returns the cache entry lifetime; zero disables expiry.
func (c Config) CacheTTL() time.Duration {
	if c.Cache.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
