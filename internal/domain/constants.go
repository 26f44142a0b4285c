package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// API constants
const (
	// DefaultBaseURL is the origin of the observed captioning deployment
	DefaultBaseURL = "http://localhost:8000/api"
	// CaptionPath is appended to the base URL for caption requests
	CaptionPath = "/caption"
	// HealthPath is appended to the base URL for liveness probes
	HealthPath = "/health"
	// UploadFieldName is the multipart field carrying the image bytes
	UploadFieldName = "file"
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// Upload constants
const (
	// DefaultMaxUploadBytes matches the server-side limit (10 MiB)
	DefaultMaxUploadBytes = 10 * 1024 * 1024
)

// Cache constants
const (
	// CacheBackendNone disables response caching
	CacheBackendNone = "none"
	// CacheBackendFile stores responses as JSON files
	CacheBackendFile = "file"
	// CacheBackendRedis stores responses in Redis
	CacheBackendRedis = "redis"
	// DefaultMaxCacheEntries is the maximum number of cache entries
	DefaultMaxCacheEntries = 100
	// DefaultCacheTTLSeconds is how long a cached caption stays valid
	DefaultCacheTTLSeconds = 3600
)

// History constants
const (
	// HistoryBackendSQLite archives into a SQLite database
	HistoryBackendSQLite = "sqlite"
	// HistoryBackendJSONL archives into a JSON-lines file
	HistoryBackendJSONL = "jsonl"
	// DefaultHistoryLimit is the default number of archive records to display
	DefaultHistoryLimit = 20
	// DefaultHistorySearchLimit is the default number of search results to return
	DefaultHistorySearchLimit = 50
	// DefaultHistoryRetainDays is the default number of days to retain the archive
	DefaultHistoryRetainDays = 30
	// MaxHistoryAnalysisRecords is the maximum number of records to analyze
	MaxHistoryAnalysisRecords = 1000
)

// Server constants
const (
	// DefaultServerAddr is where `serve` listens by default
	DefaultServerAddr = "127.0.0.1:4200"
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
	// DisplayTimeFormat is used when rendering history to humans
	DisplayTimeFormat = "2006-01-02 15:04:05"
)
