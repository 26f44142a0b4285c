package app

import (
	"context"
	"net/http"

	"github.com/doeshing/recogaize/internal/application/doctor"
	"github.com/doeshing/recogaize/internal/application/session"
	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/infrastructure/api"
	"github.com/doeshing/recogaize/internal/infrastructure/cache"
	"github.com/doeshing/recogaize/internal/infrastructure/config"
	"github.com/doeshing/recogaize/internal/infrastructure/history"
	"github.com/doeshing/recogaize/internal/infrastructure/imageprobe"
	"github.com/doeshing/recogaize/internal/infrastructure/metrics"
	"github.com/doeshing/recogaize/internal/infrastructure/picker"
	"github.com/doeshing/recogaize/internal/pkg/logger"
	"github.com/doeshing/recogaize/internal/ports"
)

// Options carries the global CLI overrides.
type Options struct {
	ConfigPath string
	APIURL     string
	LogLevel   string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         *logger.ZeroLogger
	APIClient      *api.Client
	Client         ports.CaptionClient
	HistoryStore   ports.HistoryRepository
	CacheStore     ports.CacheRepository
	Metrics        *metrics.Recorder
	Prober         ports.ImageProber
	Picker         ports.FilePicker
	DoctorService  *doctor.Service

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = "debug"
	}
	log := logger.New(level)

	recorder := metrics.NewRecorder()
	apiClient := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		api.WithLogger(log),
	)

	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
		APIClient:      apiClient,
		Client:         apiClient,
		Metrics:        recorder,
		Prober:         imageprobe.New(),
		Picker:         picker.NewZenityPicker("Select images to caption"),
	}

	c.CacheStore = buildCache(cfg.Cache, cfg)
	if c.CacheStore != nil {
		c.Client = api.NewCachedClient(apiClient, c.CacheStore, log, recorder)
	}

	if cfg.History.Archive {
		c.HistoryStore = c.buildArchive(cfg.History, log)
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		Client:         apiClient,
		Archive:        c.HistoryStore,
		Cache:          c.CacheStore,
	}
	return c, nil
}

// NewSession starts an interactive captioning session over the container's
// client, archive and metrics.
func (c *Container) NewSession() *session.Session {
	opts := session.Options{
		Client:   c.Client,
		Prober:   c.Prober,
		Validate: c.Config.Upload.Validate,
		MaxBytes: c.Config.Upload.MaxBytes,
	}
	// typed nils must not leak into the interfaces
	if c.Logger != nil {
		opts.Logger = c.Logger
	}
	if c.Metrics != nil {
		opts.Metrics = c.Metrics
	}
	if c.HistoryStore != nil {
		opts.Archive = c.HistoryStore
	}
	return session.New(opts)
}

// Close releases open stores.
func (c *Container) Close() error {
	var first error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

func (c *Container) buildArchive(settings domain.HistorySettings, log ports.Logger) ports.HistoryRepository {
	if settings.Backend == domain.HistoryBackendJSONL {
		return history.NewFileStore(settings.Path)
	}
	store := history.NewSQLiteStore(settings.Path)
	if store.Degraded() {
		log.Warn("sqlite archive unavailable, using jsonl fallback", map[string]interface{}{"path": store.Path()})
	}
	c.closers = append(c.closers, store.Close)
	return store
}

func buildCache(settings domain.CacheSettings, cfg domain.Config) ports.CacheRepository {
	switch settings.Backend {
	case domain.CacheBackendFile:
		return cache.NewFileCache(settings.Dir, settings.MaxEntries, cfg.CacheTTL())
	case domain.CacheBackendRedis:
		return cache.NewRedisCache(settings.RedisAddr,
			cache.WithPrefix(settings.RedisPrefix),
			cache.WithTTL(cfg.CacheTTL()),
		)
	default:
		return nil
	}
}
