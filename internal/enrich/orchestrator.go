package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pibble/pibble/internal/media"
)

// Batch is the compacted result of one orchestrator run.
type Batch struct {
	ID        string
	Items     []media.EnrichedMediaItem
	Requested int
	Failures  map[media.ErrorKind]int
	Duration  time.Duration
}

// Dropped returns how many entries failed to resolve.
func (b *Batch) Dropped() int {
	return b.Requested - len(b.Items)
}

// Orchestrator enriches whole lists concurrently.
type Orchestrator struct {
	enricher       ItemEnricher
	maxConcurrency int
	logger         zerolog.Logger
}

// NewOrchestrator creates an orchestrator. maxConcurrency <= 0 starts every
// entry at once; a positive value caps in-flight lookups.
func NewOrchestrator(enricher ItemEnricher, maxConcurrency int, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		enricher:       enricher,
		maxConcurrency: maxConcurrency,
		logger:         logger.With().Str("component", "orchestrator").Logger(),
	}
}

// EnrichAll enriches entries and returns only the successes, in input order.
func (o *Orchestrator) EnrichAll(ctx context.Context, token string, entries []media.RawListEntry) []media.EnrichedMediaItem {
	return o.Run(ctx, token, entries).Items
}

// Run fans out one lookup per entry, waits for all of them, then keeps the
// successful results in input order. It does not retry and never fails as a
// whole; a failed entry is simply absent from Items.
func (o *Orchestrator) Run(ctx context.Context, token string, entries []media.RawListEntry) *Batch {
	start := time.Now()
	batch := &Batch{
		ID:        uuid.NewString(),
		Requested: len(entries),
		Failures:  make(map[media.ErrorKind]int),
	}

	// one slot per input position; each goroutine writes only its own slot
	outcomes := make([]Outcome, len(entries))

	var g errgroup.Group
	if o.maxConcurrency > 0 {
		g.SetLimit(o.maxConcurrency)
	}

	for i := range entries {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = Failure(media.KindMalformedShape, fmt.Errorf("enricher panic: %v", r))
				}
			}()
			outcomes[i] = o.enricher.Enrich(ctx, token, entries[i])
			return nil
		})
	}
	_ = g.Wait()

	batch.Items = make([]media.EnrichedMediaItem, 0, len(entries))
	for _, out := range outcomes {
		if item, ok := out.Item(); ok {
			batch.Items = append(batch.Items, item)
			continue
		}
		batch.Failures[out.Kind()]++
	}
	batch.Duration = time.Since(start)

	evt := o.logger.Info()
	if batch.Dropped() > 0 {
		evt = o.logger.Warn()
	}
	evt.
		Str("batch", batch.ID).
		Int("requested", batch.Requested).
		Int("enriched", len(batch.Items)).
		Int("dropped", batch.Dropped()).
		Interface("failures", batch.Failures).
		Dur("duration", batch.Duration).
		Msg("Enrichment batch complete")

	return batch
}
