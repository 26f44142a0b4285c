package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

// CachedClient serves repeated uploads of identical bytes from a cache.
// Only successful responses are stored; errors always go to the network.
type CachedClient struct {
	next    ports.CaptionClient
	cache   ports.CacheStore
	logger  ports.Logger
	metrics ports.MetricsRecorder
	now     func() time.Time
}

// NewCachedClient wraps next with cache.
func NewCachedClient(next ports.CaptionClient, cache ports.CacheStore, logger ports.Logger, metrics ports.MetricsRecorder) *CachedClient {
	return &CachedClient{next: next, cache: cache, logger: logger, metrics: metrics, now: time.Now}
}

// CacheKey is the hex SHA-256 of the image bytes.
func CacheKey(image domain.ImageFile) string {
	sum := sha256.Sum256(image.Data)
	return hex.EncodeToString(sum[:])
}

func (c *CachedClient) GenerateCaption(ctx context.Context, image domain.ImageFile) (domain.CaptionResponse, error) {
	key := CacheKey(image)

	entry, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.warn("cache read failed", err, key)
	}
	if c.metrics != nil {
		c.metrics.ObserveCacheLookup(ok)
	}
	if ok {
		return domain.CaptionResponse{Caption: entry.Caption, Success: true, Message: entry.Message}, nil
	}

	resp, err := c.next.GenerateCaption(ctx, image)
	if err != nil {
		return resp, err
	}
	if resp.Success && resp.Caption != "" {
		setErr := c.cache.Set(ctx, domain.CacheEntry{
			Key:       key,
			Caption:   resp.Caption,
			Message:   resp.Message,
			CreatedAt: c.now(),
		})
		if setErr != nil {
			c.warn("cache write failed", setErr, key)
		}
	}
	return resp, nil
}

func (c *CachedClient) CheckHealth(ctx context.Context) (domain.HealthResponse, error) {
	return c.next.CheckHealth(ctx)
}

func (c *CachedClient) warn(msg string, err error, key string) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, map[string]interface{}{"key": key, "error": err.Error()})
}

var _ ports.CaptionClient = (*CachedClient)(nil)
