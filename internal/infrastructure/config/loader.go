package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/recogaize/assets"
	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/pkg/filesystem"
	"github.com/doeshing/recogaize/internal/ports"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath = "RECOGAIZE_CONFIG"
	EnvAPIURL     = "RECOGAIZE_API_URL"
	EnvLogLevel   = "RECOGAIZE_LOG_LEVEL"
)

// FileLoader loads YAML configuration from ~/.recogaize/config.yaml (overridable via RECOGAIZE_CONFIG).
type FileLoader struct {
	overridePath string
	getenv       func(string) string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, getenv: os.Getenv}
}

// Load implements ports.ConfigProvider. A missing file is created from the
// embedded defaults; environment overrides are applied last.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return l.applyEnv(hydrateDefaults(cfg)), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return l.applyEnv(hydrateDefaults(cfg)), nil
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given config back to disk.
func (l *FileLoader) Save(cfg domain.Config) error {
	if err := ensureConfigDir(l.resolvePath()); err != nil {
		return err
	}
	return writeDefault(l.resolvePath(), cfg)
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := l.getenv(EnvConfigPath); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".recogaize", "config.yaml")
}

func (l *FileLoader) applyEnv(cfg domain.Config) domain.Config {
	if url := strings.TrimSpace(l.getenv(EnvAPIURL)); url != "" {
		cfg.API.BaseURL = url
	}
	if level := strings.TrimSpace(l.getenv(EnvLogLevel)); level != "" {
		cfg.Logging.Level = level
	}
	return cfg
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		// Minimal config if the embedded YAML cannot be parsed.
		return domain.Config{
			ConfigFormatVersion: "1",
			API:                 domain.APISettings{BaseURL: domain.DefaultBaseURL},
		}
	}
	return cfg
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = domain.DefaultBaseURL
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = int(domain.DefaultHTTPClientTimeout.Seconds())
	}
	if cfg.Upload.MaxBytes <= 0 {
		cfg.Upload.MaxBytes = domain.DefaultMaxUploadBytes
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = domain.HistoryBackendSQLite
	}
	if cfg.History.RetentionDays < 0 {
		cfg.History.RetentionDays = 0
	}
	cfg.History.Path = expandPath(cfg.History.Path)
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = domain.CacheBackendNone
	}
	if cfg.Cache.MaxEntries <= 0 {
		cfg.Cache.MaxEntries = domain.DefaultMaxCacheEntries
	}
	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = domain.DefaultServerAddr
	}
	return cfg
}

func expandPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

// DefaultConfig exposes the bootstrap configuration template.
func DefaultConfig() domain.Config {
	return hydrateDefaults(defaultConfig())
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
