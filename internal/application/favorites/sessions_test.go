package favorites

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

func TestSessions_OpenReplacesActiveView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "a", "Meetup", f.clock.Now().Add(48*time.Hour))
	s := NewSessions(f.r, f.clock, time.Minute)

	first, err := s.Open(ctx, "alice", catalog.ListFilter{})
	require.NoError(t, err)
	second, err := s.OpenSaved(ctx, "alice")
	require.NoError(t, err)

	assert.True(t, first.Closed())
	assert.False(t, second.Closed())
	assert.Same(t, second, s.Active("alice"))
	assert.Equal(t, KindSaved, s.Active("alice").Kind())
}

func TestSessions_AnonymousViewIsDetached(t *testing.T) {
	f := newFixture(t)
	s := NewSessions(f.r, f.clock, time.Minute)

	_, err := s.Open(context.Background(), "", catalog.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())

	_, err = s.Toggle(context.Background(), "", "a")
	assert.True(t, domain.IsCode(err, domain.CodeNotAuthenticated))
}

func TestSessions_ToggleUsesActiveView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "a", "Meetup", f.clock.Now().Add(48*time.Hour))
	s := NewSessions(f.r, f.clock, time.Minute)

	v, err := s.Open(ctx, "alice", catalog.ListFilter{})
	require.NoError(t, err)

	res, err := s.Toggle(ctx, "alice", "a")
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.True(t, v.IsSaved("a"))
	assert.Same(t, v, s.Active("alice"))
}

func TestSessions_ToggleOpensViewWhenMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "a", "Meetup", f.clock.Now().Add(48*time.Hour))
	s := NewSessions(f.r, f.clock, time.Minute)

	// saved view is empty, so "a" is not in it
	saved, err := s.OpenSaved(ctx, "alice")
	require.NoError(t, err)

	res, err := s.Toggle(ctx, "alice", "a")
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.True(t, saved.Closed())
	assert.Equal(t, KindCatalog, s.Active("alice").Kind())
	assert.True(t, f.stored(t, "alice", "a"))

	_, err = s.Toggle(ctx, "alice", "does-not-exist")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestSessions_Expire(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := NewSessions(f.r, f.clock, time.Minute)

	v, err := s.Open(ctx, "alice", catalog.ListFilter{})
	require.NoError(t, err)
	_, err = s.Open(ctx, "bob", catalog.ListFilter{})
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	assert.Nil(t, s.Active("alice"))
	assert.True(t, v.Closed())

	// bob is swept on the next install
	_, err = s.Open(ctx, "carol", catalog.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	s.CloseAll()
	assert.Equal(t, 0, s.Len())
}

func TestSessions_SetSyncsActiveView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "a", "Meetup", f.clock.Now().Add(48*time.Hour))
	s := NewSessions(f.r, f.clock, time.Minute)

	v, err := s.Open(ctx, "alice", catalog.ListFilter{})
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "alice", "a", true))
	assert.True(t, v.IsSaved("a"))
	require.NoError(t, s.Set(ctx, "alice", "a", true))
	assert.True(t, f.stored(t, "alice", "a"))

	require.NoError(t, s.Set(ctx, "alice", "a", false))
	require.NoError(t, s.Set(ctx, "alice", "a", false))
	assert.False(t, v.IsSaved("a"))
	assert.False(t, f.stored(t, "alice", "a"))

	s.Close("alice")
	assert.True(t, v.Closed())
}

func keyRefs(l *keyLocks, key domain.RelationKey) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.m[key]; ok {
		return e.refs
	}
	return 0
}

func waitForRefs(t *testing.T, l *keyLocks, key domain.RelationKey, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return keyRefs(l, key) == n }, time.Second, time.Millisecond)
}

func TestSessions_ToggleQueuedBehindSetSeesNewState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "a", "Meetup", f.clock.Now().Add(48*time.Hour))
	s := NewSessions(f.r, f.clock, time.Minute)

	v, err := s.Open(ctx, "alice", catalog.ListFilter{})
	require.NoError(t, err)

	f.gated.hold()
	setDone := make(chan error, 1)
	go func() { setDone <- s.Set(ctx, "alice", "a", true) }()
	<-f.gated.entered

	toggled := make(chan ToggleResult, 1)
	go func() {
		res, err := s.Toggle(ctx, "alice", "a")
		assert.NoError(t, err)
		toggled <- res
	}()
	waitForRefs(t, f.r.locks, domain.RelationKey{UserID: "alice", EventID: "a"}, 2)

	f.gated.gate <- struct{}{}
	require.NoError(t, <-setDone)
	<-f.gated.entered
	f.gated.gate <- struct{}{}
	res := <-toggled

	// the toggle flips from the state the set left behind
	assert.Equal(t, "unsave", res.Action)
	assert.False(t, res.Saved)
	assert.False(t, v.IsSaved("a"))
	assert.False(t, f.stored(t, "alice", "a"))
	assert.Equal(t, 2, f.gated.writeCount())
}

func TestSessions_ToggleRetriesWhenViewReplaced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addEvent(t, "a", "Meetup", f.clock.Now().Add(48*time.Hour))
	s := NewSessions(f.r, f.clock, time.Minute)
	key := domain.RelationKey{UserID: "alice", EventID: "a"}

	// keep the key busy so the toggle parks before its optimistic flip
	release, err := f.r.locks.acquire(ctx, key)
	require.NoError(t, err)

	toggled := make(chan ToggleResult, 1)
	go func() {
		res, err := s.Toggle(ctx, "alice", "a")
		assert.NoError(t, err)
		toggled <- res
	}()
	waitForRefs(t, f.r.locks, key, 2)
	first := s.Active("alice")
	require.NotNil(t, first)

	// a concurrent page load replaces the view the toggle is parked on
	second, err := s.Open(ctx, "alice", catalog.ListFilter{})
	require.NoError(t, err)
	require.True(t, first.Closed())
	release()

	res := <-toggled
	assert.False(t, res.Discarded)
	assert.Equal(t, "save", res.Action)
	assert.True(t, second.IsSaved("a"))
	assert.True(t, f.stored(t, "alice", "a"))
	assert.Equal(t, 1, f.gated.writeCount())
}
