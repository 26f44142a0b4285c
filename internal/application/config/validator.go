package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/doeshing/recogaize/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateAPI(cfg.API); err != nil {
		return err
	}
	if cfg.Upload.MaxBytes < 0 {
		return errors.New("upload.max_bytes must be >= 0")
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if err := validateCache(cfg.Cache); err != nil {
		return err
	}
	return nil
}

func validateAPI(api domain.APISettings) error {
	if api.BaseURL == "" {
		return errors.New("api.base_url must be set")
	}
	u, err := url.Parse(api.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("api.base_url must include a host")
	}
	if api.TimeoutSeconds < 0 {
		return errors.New("api.timeout must be >= 0")
	}
	return nil
}

func validateHistory(h domain.HistorySettings) error {
	switch strings.ToLower(h.Backend) {
	case "", domain.HistoryBackendSQLite, domain.HistoryBackendJSONL:
	default:
		return fmt.Errorf("history.backend must be %s|%s, got %s", domain.HistoryBackendSQLite, domain.HistoryBackendJSONL, h.Backend)
	}
	if h.RetentionDays < 0 {
		return errors.New("history.retention_days must be >= 0")
	}
	return nil
}

func validateCache(c domain.CacheSettings) error {
	switch strings.ToLower(c.Backend) {
	case "", domain.CacheBackendNone, domain.CacheBackendFile:
	case domain.CacheBackendRedis:
		if c.RedisAddr == "" {
			return errors.New("cache.redis_addr must be set for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be %s|%s|%s, got %s",
			domain.CacheBackendNone, domain.CacheBackendFile, domain.CacheBackendRedis, c.Backend)
	}
	if c.TTLSeconds < 0 {
		return errors.New("cache.ttl must be >= 0")
	}
	if c.MaxEntries < 0 {
		return errors.New("cache.max_entries must be >= 0")
	}
	return nil
}
