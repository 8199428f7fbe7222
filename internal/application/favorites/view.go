package favorites

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/domain"
	"github.com/baechuer/esemenyrendezo/internal/metrics"
)

type ViewKind string

const (
	KindCatalog ViewKind = "catalog"
	KindSaved   ViewKind = "saved"
)

type Row struct {
	Event   *domain.Event
	Saved   bool
	Pending bool
}

type ToggleResult struct {
	EventID string
	Action  string // "save" or "unsave"
	Saved   bool

	// RolledBack is set when the store call failed and the row was restored.
	RolledBack bool
	// Discarded is set when the view closed before the store call settled.
	// Action stays empty when the view was already closed and nothing was written.
	Discarded bool
}

// View is the per-render state: the joined rows plus optimistic flags.
// Flags are computed once at load and only flipped locally afterwards.
type View struct {
	r      *Reconciler
	userID string
	kind   ViewKind

	mu      sync.Mutex
	order   []string
	events  map[string]*domain.Event
	saved   map[string]bool
	pending map[string]bool
	closed  bool
}

func newView(r *Reconciler, userID string, kind ViewKind) *View {
	return &View{
		r:       r,
		userID:  userID,
		kind:    kind,
		events:  make(map[string]*domain.Event),
		saved:   make(map[string]bool),
		pending: make(map[string]bool),
	}
}

func (v *View) add(e *domain.Event, saved bool) {
	if _, dup := v.events[e.ID]; dup {
		return
	}
	v.order = append(v.order, e.ID)
	v.events[e.ID] = e
	v.saved[e.ID] = saved
}

func (v *View) UserID() string { return v.userID }
func (v *View) Kind() ViewKind { return v.kind }

func (v *View) Rows() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]Row, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, Row{Event: v.events[id], Saved: v.saved[id], Pending: v.pending[id]})
	}
	return out
}

// SavedEvents returns the events currently flagged saved, in view order.
func (v *View) SavedEvents() []*domain.Event {
	v.mu.Lock()
	defer v.mu.Unlock()

	var out []*domain.Event
	for _, id := range v.order {
		if v.saved[id] {
			out = append(out, v.events[id])
		}
	}
	return out
}

func (v *View) Has(eventID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.events[eventID]
	return ok
}

func (v *View) IsSaved(eventID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.saved[eventID]
}

func (v *View) IsPending(eventID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending[eventID]
}

// Close tears the view down. In-flight toggles still reach the store but
// their results no longer touch this view.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Toggle flips the saved flag for eventID optimistically, then persists it.
// Toggles on the same (user, event) wait for the previous one to settle.
// On store failure the row is restored and the store error is returned.
func (v *View) Toggle(ctx context.Context, eventID string) (ToggleResult, error) {
	if v.userID == "" {
		return ToggleResult{}, domain.ErrNotAuthenticated("login required to save events")
	}
	if !v.Has(eventID) {
		return ToggleResult{}, domain.ErrNotFound("event not in view")
	}

	start := time.Now()
	release, err := v.r.locks.acquire(ctx, domain.RelationKey{UserID: v.userID, EventID: eventID})
	if err != nil {
		return ToggleResult{}, err
	}
	defer release()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ToggleResult{EventID: eventID, Discarded: true}, nil
	}
	prev := v.saved[eventID]
	next := !prev
	v.saved[eventID] = next
	v.pending[eventID] = true
	v.mu.Unlock()

	res := ToggleResult{EventID: eventID, Action: actionFor(next), Saved: next}

	// the store call outlives the caller; only its effect on the view is conditional
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.r.toggleTimeout)
	defer cancel()
	if next {
		err = v.r.relations.Save(opCtx, v.userID, eventID)
	} else {
		err = v.r.relations.Unsave(opCtx, v.userID, eventID)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		res.Discarded = true
		if err != nil {
			zlog.Warn().Err(err).Str("user_id", v.userID).Str("event_id", eventID).
				Msg("toggle failed after view closed")
		}
		metrics.RecordToggle(res.Action, "discarded", time.Since(start))
		return res, nil
	}

	delete(v.pending, eventID)
	if err != nil {
		v.saved[eventID] = prev
		res.Saved = prev
		res.RolledBack = true
		zlog.Warn().Err(err).Str("user_id", v.userID).Str("event_id", eventID).
			Str("action", res.Action).Msg("toggle rolled back")
		metrics.RecordToggle(res.Action, "rolled_back", time.Since(start))
		return res, err
	}
	metrics.RecordToggle(res.Action, "ok", time.Since(start))
	return res, nil
}

// markSaved updates a row after a direct set, if the view still shows it.
func (v *View) markSaved(eventID string, saved bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if _, ok := v.events[eventID]; ok {
		v.saved[eventID] = saved
	}
}

func actionFor(save bool) string {
	if save {
		return "save"
	}
	return "unsave"
}
