// Package catalog provides the detail clients for the movies and shows
// services and a caching decorator shared by both.
package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

// DetailClient fetches one full upstream record by numeric id.
// The record is returned undecoded because its shape varies between services.
type DetailClient interface {
	Name() string
	IsConfigured() bool
	GetByID(ctx context.Context, token string, id int) (json.RawMessage, error)
}

// Forgetter drops a record a caller could not use, so the next lookup
// goes back to the service.
type Forgetter interface {
	Forget(id int)
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	TTL      time.Duration
	MaxItems int
}

// CachedClient memoizes successful detail lookups for a bounded time.
// Lookup errors are never cached; records that turn out to be unusable are
// removed with Forget.
type CachedClient struct {
	next   DetailClient
	cache  *expirable.LRU[int, json.RawMessage]
	logger zerolog.Logger
}

// WithCache wraps client in a CachedClient. A non-positive TTL returns client unchanged.
func WithCache(client DetailClient, cfg CacheConfig, logger zerolog.Logger) DetailClient {
	if cfg.TTL <= 0 {
		return client
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 1000
	}

	return &CachedClient{
		next:   client,
		cache:  expirable.NewLRU[int, json.RawMessage](cfg.MaxItems, nil, cfg.TTL),
		logger: logger.With().Str("component", "catalog-cache").Str("service", client.Name()).Logger(),
	}
}

// Name returns the wrapped client's name.
func (c *CachedClient) Name() string {
	return c.next.Name()
}

// IsConfigured returns the wrapped client's configuration state.
func (c *CachedClient) IsConfigured() bool {
	return c.next.IsConfigured()
}

// GetByID serves id from cache or delegates to the wrapped client.
func (c *CachedClient) GetByID(ctx context.Context, token string, id int) (json.RawMessage, error) {
	if body, ok := c.cache.Get(id); ok {
		c.logger.Trace().Int("id", id).Msg("Detail cache hit")
		return body, nil
	}

	body, err := c.next.GetByID(ctx, token, id)
	if err != nil {
		return nil, err
	}

	c.cache.Add(id, body)
	return body, nil
}

// Forget removes id from the cache.
func (c *CachedClient) Forget(id int) {
	if c.cache.Remove(id) {
		c.logger.Debug().Int("id", id).Msg("Evicted unusable detail record")
	}
}

// Len returns the number of cached records.
func (c *CachedClient) Len() int {
	return c.cache.Len()
}

// Purge drops every cached record.
func (c *CachedClient) Purge() {
	c.cache.Purge()
}
