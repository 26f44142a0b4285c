package config

import (
	"strings"
	"testing"

	"github.com/doeshing/recogaize/internal/domain"
)

func validConfig() domain.Config {
	return domain.Config{
		API:     domain.APISettings{BaseURL: "http://localhost:8000/api", TimeoutSeconds: 60},
		History: domain.HistorySettings{Backend: domain.HistoryBackendSQLite},
		Cache:   domain.CacheSettings{Backend: domain.CacheBackendNone},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*domain.Config)
		wantErr string
	}{
		{"valid", func(*domain.Config) {}, ""},
		{"missing url", func(c *domain.Config) { c.API.BaseURL = "" }, "api.base_url must be set"},
		{"bad scheme", func(c *domain.Config) { c.API.BaseURL = "ftp://host/api" }, "http or https"},
		{"no host", func(c *domain.Config) { c.API.BaseURL = "http:///api" }, "include a host"},
		{"bad history backend", func(c *domain.Config) { c.History.Backend = "postgres" }, "history.backend"},
		{"redis without addr", func(c *domain.Config) { c.Cache.Backend = domain.CacheBackendRedis }, "redis_addr"},
		{"negative ttl", func(c *domain.Config) { c.Cache.TTLSeconds = -1 }, "cache.ttl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}
