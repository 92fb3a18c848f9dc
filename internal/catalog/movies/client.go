// Package movies is the detail client for the movies service.
package movies

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/upstream"
)

// Client is a movies service API client.
type Client struct {
	api *upstream.Client
}

// NewClient creates a new movies client.
func NewClient(cfg config.ServiceConfig, logger zerolog.Logger) *Client {
	return &Client{
		api: upstream.NewClient(upstream.Config{
			Name:    "movies",
			BaseURL: cfg.BaseURL,
			Timeout: seconds(cfg.Timeout),
		}, logger),
	}
}

// Name returns the service name.
func (c *Client) Name() string {
	return c.api.Name()
}

// IsConfigured returns true if the base URL is set.
func (c *Client) IsConfigured() bool {
	return c.api.IsConfigured()
}

// GetByID fetches one movie record.
// GET {base}/movies/{id}
func (c *Client) GetByID(ctx context.Context, token string, id int) (json.RawMessage, error) {
	body, err := c.api.Get(ctx, fmt.Sprintf("movies/%d", id), token)
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	return body, nil
}

// Ping checks the service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.api.Ping(ctx, "health")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
