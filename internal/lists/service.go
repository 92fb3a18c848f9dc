// Package lists turns a user's raw list into the enriched "current list"
// and keeps the latest view of each list.
package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pibble/pibble/internal/enrich"
	"github.com/pibble/pibble/internal/media"
)

var (
	ErrListUnavailable = errors.New("list source unavailable")
	ErrUserIDRequired  = errors.New("user id is required")
	ErrInvalidCategory = errors.New("invalid list category")
	ErrNotLoaded       = errors.New("list has not been loaded")
)

// Source fetches a user's raw list entries.
type Source interface {
	GetList(ctx context.Context, token, userID string, category media.ListCategory) ([]media.RawListEntry, error)
}

// BatchRunner enriches a batch of raw entries.
type BatchRunner interface {
	Run(ctx context.Context, token string, entries []media.RawListEntry) *enrich.Batch
}

// Notifier receives every accepted snapshot change.
type Notifier interface {
	PublishList(snap Snapshot)
}

// Service loads and tracks user lists.
type Service struct {
	source   Source
	runner   BatchRunner
	tracker  *Tracker
	notifier Notifier
	idle     time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// DefaultViewIdleTimeout is how long an unused list view is kept.
const DefaultViewIdleTimeout = time.Hour

// NewService creates a new list service.
func NewService(source Source, runner BatchRunner, logger zerolog.Logger) *Service {
	return &Service{
		source:  source,
		runner:  runner,
		tracker: NewTracker(),
		idle:    DefaultViewIdleTimeout,
		logger:  logger.With().Str("component", "lists").Logger(),
		now:     time.Now,
	}
}

// SetNotifier sets the receiver of snapshot updates.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// SetIdleTimeout sets how long an unused view is kept before Cleanup drops it.
func (s *Service) SetIdleTimeout(d time.Duration) {
	if d > 0 {
		s.idle = d
	}
}

// Cleanup drops views that have been idle longer than the idle timeout.
func (s *Service) Cleanup() int {
	return s.tracker.Sweep(s.idle)
}

// Load fetches the raw list and enriches it. Only the list fetch can fail;
// entries that cannot be enriched are left out of the batch.
func (s *Service) Load(ctx context.Context, token, userID, category string) (*enrich.Batch, error) {
	key, err := parseView(userID, category)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, token, key)
}

func (s *Service) load(ctx context.Context, token string, key viewKey) (*enrich.Batch, error) {
	entries, err := s.source.GetList(ctx, token, key.userID, key.category)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListUnavailable, err)
	}
	return s.runner.Run(ctx, token, entries), nil
}

// Refresh reloads the list and commits the result as the view's current
// snapshot. On failure the returned snapshot has status error and no items.
// A refresh that finishes after a newer one started is discarded and returns
// the newer view instead, which is still loading if the newer refresh has
// not finished.
func (s *Service) Refresh(ctx context.Context, token, userID, category string) (Snapshot, error) {
	key, err := parseView(userID, category)
	if err != nil {
		return Snapshot{}, err
	}

	ticket := s.tracker.Begin(key.userID, key.category)
	s.publishLoading(key, ticket)

	batch, loadErr := s.load(ctx, token, key)

	snap := Snapshot{
		UserID:    key.userID,
		Category:  key.category,
		Sequence:  ticket.Sequence,
		UpdatedAt: s.now().UTC(),
	}
	if loadErr != nil {
		snap.Status = StatusError
		snap.Items = []media.EnrichedMediaItem{}
		snap.Error = loadErr.Error()
	} else {
		snap.Status = StatusReady
		snap.Items = batch.Items
		snap.BatchID = batch.ID
	}

	view, accepted := s.tracker.Commit(ticket, snap)
	if !accepted {
		s.logger.Debug().
			Str("userId", key.userID).
			Str("category", string(key.category)).
			Uint64("sequence", ticket.Sequence).
			Uint64("current", view.Sequence).
			Msg("Discarding superseded list load")
		return view, nil
	}

	if loadErr != nil {
		s.logger.Warn().Err(loadErr).
			Str("userId", key.userID).
			Str("category", string(key.category)).
			Msg("Failed to load list")
	}

	s.publish(snap)
	return snap, loadErr
}

// Current returns the last committed snapshot for a list.
func (s *Service) Current(userID, category string) (Snapshot, error) {
	key, err := parseView(userID, category)
	if err != nil {
		return Snapshot{}, err
	}

	snap, ok := s.tracker.Current(key.userID, key.category)
	if !ok {
		return Snapshot{}, ErrNotLoaded
	}
	return snap, nil
}

// publishLoading announces a started load, carrying the previous items so
// the view does not flash empty.
func (s *Service) publishLoading(key viewKey, ticket Ticket) {
	if s.notifier == nil {
		return
	}

	snap := Snapshot{
		UserID:    key.userID,
		Category:  key.category,
		Status:    StatusLoading,
		Items:     []media.EnrichedMediaItem{},
		Sequence:  ticket.Sequence,
		UpdatedAt: s.now().UTC(),
	}
	if prev, ok := s.tracker.Current(key.userID, key.category); ok {
		snap.Items = prev.Items
	}
	s.notifier.PublishList(snap)
}

func (s *Service) publish(snap Snapshot) {
	if s.notifier != nil {
		s.notifier.PublishList(snap)
	}
}

func parseView(userID, category string) (viewKey, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return viewKey{}, ErrUserIDRequired
	}

	cat, ok := media.ParseListCategory(category)
	if !ok {
		return viewKey{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return viewKey{userID: userID, category: cat}, nil
}
