package favorites

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Sessions keeps the view each user currently has open. Opening a new view tears
// down the previous one, the server-side equivalent of navigating away.
type Sessions struct {
	r     *Reconciler
	clock Clock
	ttl   time.Duration

	mu     sync.Mutex
	active map[string]*session
}

type session struct {
	view     *View
	lastSeen time.Time
}

func NewSessions(r *Reconciler, clock Clock, ttl time.Duration) *Sessions {
	if clock == nil {
		clock = systemClock{}
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Sessions{r: r, clock: clock, ttl: ttl, active: make(map[string]*session)}
}

// Open loads a catalog view and makes it the user's active view.
// Anonymous users get a detached view.
func (s *Sessions) Open(ctx context.Context, userID string, f catalog.ListFilter) (*View, error) {
	v, err := s.r.Load(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	if v.UserID() != "" {
		s.install(v)
	}
	return v, nil
}

// OpenSaved loads the saved-events view and makes it the user's active view.
func (s *Sessions) OpenSaved(ctx context.Context, userID string) (*View, error) {
	v, err := s.r.LoadSaved(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.install(v)
	return v, nil
}

func (s *Sessions) install(v *View) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(now)
	if prev, ok := s.active[v.UserID()]; ok && prev.view != v {
		prev.view.Close()
	}
	s.active[v.UserID()] = &session{view: v, lastSeen: now}
}

// Active returns the user's live view, or nil.
func (s *Sessions) Active(userID string) *View {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.active[userID]
	if !ok {
		return nil
	}
	if now.Sub(sess.lastSeen) > s.ttl {
		sess.view.Close()
		delete(s.active, userID)
		return nil
	}
	sess.lastSeen = now
	return sess.view
}

// Toggle flips eventID on the user's active view. When the active view does not
// show the event, a fresh unfiltered catalog view is opened first. A view replaced
// before the toggle reached the store is retried once on the new active view.
func (s *Sessions) Toggle(ctx context.Context, userID, eventID string) (ToggleResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ToggleResult{}, domain.ErrNotAuthenticated("login required to save events")
	}

	var (
		res ToggleResult
		err error
	)
	for attempt := 0; attempt < 2; attempt++ {
		var v *View
		v, err = s.viewFor(ctx, userID, eventID)
		if err != nil {
			return ToggleResult{}, err
		}
		res, err = v.Toggle(ctx, eventID)
		if err != nil || !res.Discarded || res.Action != "" {
			return res, err
		}
	}
	return res, err
}

func (s *Sessions) viewFor(ctx context.Context, userID, eventID string) (*View, error) {
	if v := s.Active(userID); v != nil && v.Has(eventID) {
		return v, nil
	}
	return s.Open(ctx, userID, catalog.ListFilter{})
}

// Set persists the desired state without optimism and syncs the active view
// before the key is released.
func (s *Sessions) Set(ctx context.Context, userID, eventID string, saved bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrNotAuthenticated("login required to save events")
	}
	return s.r.set(ctx, userID, eventID, saved, func() {
		if v := s.Active(userID); v != nil {
			v.markSaved(eventID, saved)
		}
	})
}

// Close drops the user's active view.
func (s *Sessions) Close(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.active[userID]; ok {
		sess.view.Close()
		delete(s.active, userID)
	}
}

// CloseAll tears down every view, used on shutdown.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.active {
		sess.view.Close()
		delete(s.active, id)
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

func (s *Sessions) sweepLocked(now time.Time) {
	for id, sess := range s.active {
		if now.Sub(sess.lastSeen) > s.ttl {
			sess.view.Close()
			delete(s.active, id)
		}
	}
}
