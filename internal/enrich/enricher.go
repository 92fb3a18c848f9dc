package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pibble/pibble/internal/catalog"
	"github.com/pibble/pibble/internal/media"
)

var (
	ErrInvalidMediaID    = errors.New("media id contains no usable digits")
	ErrUnknownMediaType  = errors.New("unknown media type")
	ErrClientUnavailable = errors.New("no detail client for media type")
)

// ItemEnricher resolves a single list entry.
type ItemEnricher interface {
	Enrich(ctx context.Context, token string, entry media.RawListEntry) Outcome
}

// Enricher resolves raw list entries against the movie and show detail services.
type Enricher struct {
	clients    map[media.MediaType]catalog.DetailClient
	normalizer *media.Normalizer
	logger     zerolog.Logger
}

// NewEnricher creates an enricher. A nil client makes entries of that type fail.
func NewEnricher(movies, shows catalog.DetailClient, normalizer *media.Normalizer, logger zerolog.Logger) *Enricher {
	clients := make(map[media.MediaType]catalog.DetailClient, 2)
	if movies != nil {
		clients[media.MediaTypeMovie] = movies
	}
	if shows != nil {
		clients[media.MediaTypeTVShow] = shows
	}

	return &Enricher{
		clients:    clients,
		normalizer: normalizer,
		logger:     logger.With().Str("component", "enricher").Logger(),
	}
}

// Enrich resolves entry to an EnrichedMediaItem. Every failure is logged and
// returned as a failed Outcome; Enrich never panics on bad upstream data.
func (e *Enricher) Enrich(ctx context.Context, token string, entry media.RawListEntry) Outcome {
	item, err := e.resolve(ctx, token, entry)
	if err != nil {
		kind := media.KindOf(err)
		e.logger.Warn().
			Err(err).
			Str("mediaType", string(entry.MediaType)).
			Str("mediaId", entry.MediaID).
			Str("kind", string(kind)).
			Msg("Dropping unresolvable list entry")
		return Failure(kind, err)
	}
	return Success(item)
}

func (e *Enricher) resolve(ctx context.Context, token string, entry media.RawListEntry) (media.EnrichedMediaItem, error) {
	id, err := ExtractNumericID(entry.MediaID)
	if err != nil {
		return media.EnrichedMediaItem{}, err
	}

	if !entry.MediaType.Valid() {
		return media.EnrichedMediaItem{}, fmt.Errorf("%w: %w %q", media.ErrMalformedShape, ErrUnknownMediaType, entry.MediaType)
	}

	client, ok := e.clients[entry.MediaType]
	if !ok {
		return media.EnrichedMediaItem{}, fmt.Errorf("%w: %s", ErrClientUnavailable, entry.MediaType)
	}

	body, err := client.GetByID(ctx, token, id)
	if err != nil {
		return media.EnrichedMediaItem{}, err
	}

	var record any
	if err := json.Unmarshal(body, &record); err != nil {
		forget(client, id)
		return media.EnrichedMediaItem{}, fmt.Errorf("%w: decode %s %d: %v", media.ErrMalformedShape, client.Name(), id, err)
	}

	item, err := e.normalizer.Normalize(unwrapEnvelope(record), entry.MediaType)
	if err != nil {
		forget(client, id)
		return media.EnrichedMediaItem{}, fmt.Errorf("%s %d: %w", client.Name(), id, err)
	}

	e.logger.Debug().
		Str("mediaType", string(entry.MediaType)).
		Int("id", item.ID).
		Str("title", item.Title).
		Msg("Enriched list entry")

	return item, nil
}

// forget evicts id from a caching client so a fixed record is picked up on
// the next lookup.
func forget(client catalog.DetailClient, id int) {
	if f, ok := client.(catalog.Forgetter); ok {
		f.Forget(id)
	}
}

// ExtractNumericID strips every non-digit from mediaID and parses the rest,
// so "tt0133093" yields 133093.
func ExtractNumericID(mediaID string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, mediaID)

	if digits == "" {
		return 0, fmt.Errorf("%w: %w: %q", media.ErrMalformedShape, ErrInvalidMediaID, mediaID)
	}

	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %q", media.ErrMalformedShape, ErrInvalidMediaID, mediaID)
	}
	return id, nil
}

// unwrapEnvelope returns record["data"] when the record is a one-level
// {"data": {...}} envelope, and record otherwise.
func unwrapEnvelope(record any) any {
	obj, ok := record.(map[string]any)
	if !ok {
		return record
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return inner
	}
	return record
}
