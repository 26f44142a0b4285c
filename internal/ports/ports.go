// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). The session and doctor services depend only on these
// interfaces, so the captioning API, the archive and the cache can be replaced by
// stubs in tests.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., CaptionClient, ConfigProvider)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.recogaize/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CaptionClient is the call boundary to the remote captioning service.
// Every error returned is a *domain.CaptionError carrying a display message.
type CaptionClient interface {
	GenerateCaption(ctx context.Context, image domain.ImageFile) (domain.CaptionResponse, error)
	CheckHealth(ctx context.Context) (domain.HealthResponse, error)
}

// ImageProber inspects image bytes locally without contacting the API.
type ImageProber interface {
	Probe(data []byte) (domain.ImageInfo, error)
}

// FilePicker lets the user choose images interactively.
type FilePicker interface {
	PickImages(ctx context.Context) ([]string, error)
}

// HistoryStore persists archive records.
type HistoryStore interface {
	Save(record domain.HistoryRecord) error
}

// HistoryRepository extends HistoryStore with querying and maintenance.
type HistoryRepository interface {
	HistoryStore
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
	ExportJSON(dest string) error
	PruneOlderThan(days int) error
	Path() string
}

// CacheStore reads and writes cached caption responses.
type CacheStore interface {
	Get(ctx context.Context, key string) (domain.CacheEntry, bool, error)
	Set(ctx context.Context, entry domain.CacheEntry) error
}

// CacheRepository extends CacheStore with listing and clearing.
type CacheRepository interface {
	CacheStore
	Entries(ctx context.Context) ([]domain.CacheEntry, error)
	Clear(ctx context.Context) error
	Location() string
}

// MetricsRecorder observes request outcomes.
type MetricsRecorder interface {
	ObserveRequest(outcome string, duration time.Duration)
	ObserveHistoryLength(n int)
	ObserveCacheLookup(hit bool)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
