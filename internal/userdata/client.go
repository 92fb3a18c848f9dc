// Package userdata reads a user's raw media lists from the user-data service.
package userdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/pibble/pibble/internal/config"
	"github.com/pibble/pibble/internal/media"
	"github.com/pibble/pibble/internal/upstream"
)

var ErrUnexpectedShape = errors.New("list response is neither an array nor a data envelope")

// Client is a user-data service API client.
type Client struct {
	api    *upstream.Client
	logger zerolog.Logger
}

// NewClient creates a new user-data client.
func NewClient(cfg config.ServiceConfig, logger zerolog.Logger) *Client {
	return &Client{
		api: upstream.NewClient(upstream.Config{
			Name:    "userdata",
			BaseURL: cfg.BaseURL,
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}, logger),
		logger: logger.With().Str("component", "userdata").Logger(),
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

// GetList fetches the raw entries of one of a user's lists, in stored order.
// GET {base}/users/{userID}/{category}
func (c *Client) GetList(ctx context.Context, token, userID string, category media.ListCategory) ([]media.RawListEntry, error) {
	path := fmt.Sprintf("users/%s/%s", url.PathEscape(userID), category)

	body, err := c.api.Get(ctx, path, token)
	if err != nil {
		return nil, fmt.Errorf("get %s list: %w", category, err)
	}

	entries, err := decodeEntries(body)
	if err != nil {
		return nil, fmt.Errorf("get %s list: %w: %w", category, upstream.ErrDecode, err)
	}

	c.logger.Debug().
		Str("userId", userID).
		Str("category", string(category)).
		Int("entries", len(entries)).
		Msg("Fetched user list")

	return entries, nil
}

// Ping checks the service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.api.Ping(ctx, "health")
}

// decodeEntries accepts a bare array or {"data": [...]}.
func decodeEntries(body []byte) ([]media.RawListEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnexpectedShape
	}

	var entries []media.RawListEntry
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
	case '{':
		var envelope struct {
			Data *[]media.RawListEntry `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		if envelope.Data == nil {
			return nil, ErrUnexpectedShape
		}
		entries = *envelope.Data
	default:
		return nil, ErrUnexpectedShape
	}

	if entries == nil {
		entries = []media.RawListEntry{}
	}
	return entries, nil
}
