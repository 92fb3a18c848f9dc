package enrich

import "github.com/pibble/pibble/internal/media"

// Outcome is the result of enriching one list entry: either an item or a
// classified failure. It never carries both.
type Outcome struct {
	item media.EnrichedMediaItem
	ok   bool
	kind media.ErrorKind
	err  error
}

// Success wraps a resolved item.
func Success(item media.EnrichedMediaItem) Outcome {
	return Outcome{item: item, ok: true}
}

// Failure records why an entry could not be resolved.
func Failure(kind media.ErrorKind, err error) Outcome {
	return Outcome{kind: kind, err: err}
}

// Item returns the enriched item and true on success.
func (o Outcome) Item() (media.EnrichedMediaItem, bool) {
	return o.item, o.ok
}

// Kind returns the failure kind, or media.KindNone on success.
func (o Outcome) Kind() media.ErrorKind {
	return o.kind
}

// Err returns the underlying failure, or nil on success.
func (o Outcome) Err() error {
	return o.err
}
