package cache

import (
	"context"
	"errors"
	"time"

	"InsightHub/internal/domain/models"
	applogger "InsightHub/pkg/logger"
)

// ResponseCache fronts a Store with request fingerprinting and a default TTL.
// Store faults are absorbed as misses; the cache never blocks the pipeline.
type ResponseCache struct {
	store Store
	ttl   time.Duration
	l     *applogger.Logger
}

// NewResponseCache creates a cache over the given store.
func NewResponseCache(store Store, ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ResponseCache{store: store, ttl: ttl}
}

// SetLogger injects a structured logger.
func (c *ResponseCache) SetLogger(l *applogger.Logger) { c.l = l }

// Get returns the cached response for a request, or (nil, false) on miss.
func (c *ResponseCache) Get(ctx context.Context, req models.InsightRequest) (*models.InsightResponse, bool) {
	fp := Fingerprint(req)
	e, err := c.store.Get(ctx, fp)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) && c.l != nil {
			c.l.Warn("cache get error", applogger.String("fingerprint", fp), applogger.Error(err))
		}
		return nil, false
	}
	return e.Data, true
}

// Set stores the response under the request fingerprint with the default TTL.
func (c *ResponseCache) Set(ctx context.Context, req models.InsightRequest, resp *models.InsightResponse) {
	fp := Fingerprint(req)
	e := &Entry{
		Fingerprint: fp,
		Data:        resp,
		CreatedAt:   time.Now(),
		TTL:         c.ttl,
	}
	if err := c.store.Set(ctx, fp, e); err != nil && c.l != nil {
		c.l.Warn("cache set error", applogger.String("fingerprint", fp), applogger.Error(err))
	}
}
