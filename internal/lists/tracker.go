package lists

import (
	"sync"
	"time"

	"github.com/pibble/pibble/internal/media"
)

// Status is the load state of a list view.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Snapshot is the "current list" as shown to a user.
type Snapshot struct {
	UserID    string                    `json:"userId"`
	Category  media.ListCategory        `json:"category"`
	Status    Status                    `json:"status"`
	Items     []media.EnrichedMediaItem `json:"items"`
	Error     string                    `json:"error,omitempty"`
	Sequence  uint64                    `json:"sequence"`
	BatchID   string                    `json:"batchId,omitempty"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

type viewKey struct {
	userID   string
	category media.ListCategory
}

// Ticket identifies one load of a list view. Only the most recently issued
// ticket for a view may commit.
type Ticket struct {
	key      viewKey
	Sequence uint64
}

type viewState struct {
	issued  uint64
	pending int
	snap    Snapshot
	loaded  bool
	touched time.Time
}

// Tracker holds the committed snapshot of every list view.
type Tracker struct {
	mu    sync.Mutex
	views map[viewKey]*viewState
	now   func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		views: make(map[viewKey]*viewState),
		now:   time.Now,
	}
}

// Begin issues a new ticket for the view, superseding any earlier one.
// Every ticket must be passed to Commit exactly once.
func (t *Tracker) Begin(userID string, category media.ListCategory) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := viewKey{userID: userID, category: category}
	st, ok := t.views[key]
	if !ok {
		st = &viewState{}
		t.views[key] = st
	}
	st.issued++
	st.pending++
	st.touched = t.now()
	return Ticket{key: key, Sequence: st.issued}
}

// Commit stores snap as the view's current snapshot if ticket is still the
// latest one issued. It returns the snapshot the view now shows and whether
// snap was accepted. A rejected ticket gets the newer committed snapshot, or a
// loading snapshot when the newer load has not finished yet.
func (t *Tracker) Commit(ticket Ticket, snap Snapshot) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.views[ticket.key]
	if !ok {
		return t.supersededView(ticket, &viewState{issued: ticket.Sequence}), false
	}
	if st.pending > 0 {
		st.pending--
	}
	st.touched = t.now()

	if st.issued != ticket.Sequence {
		return t.supersededView(ticket, st), false
	}
	st.snap = snap
	st.loaded = true
	return snap, true
}

func (t *Tracker) supersededView(ticket Ticket, st *viewState) Snapshot {
	if st.loaded && st.snap.Sequence > ticket.Sequence {
		return st.snap
	}

	view := Snapshot{
		UserID:    ticket.key.userID,
		Category:  ticket.key.category,
		Status:    StatusLoading,
		Items:     []media.EnrichedMediaItem{},
		Sequence:  st.issued,
		UpdatedAt: t.now().UTC(),
	}
	if st.loaded {
		view.Items = st.snap.Items
	}
	return view
}

// Current returns the last committed snapshot for the view.
func (t *Tracker) Current(userID string, category media.ListCategory) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.views[viewKey{userID: userID, category: category}]
	if !ok || !st.loaded {
		return Snapshot{}, false
	}
	st.touched = t.now()
	return st.snap, true
}

// Sweep forgets views with no load in flight that have not been used for
// longer than maxIdle, and returns how many were removed.
func (t *Tracker) Sweep(maxIdle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-maxIdle)
	removed := 0
	for key, st := range t.views {
		if st.pending == 0 && st.touched.Before(cutoff) {
			delete(t.views, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of views with a committed snapshot.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, st := range t.views {
		if st.loaded {
			n++
		}
	}
	return n
}
