package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tt, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return tt.UTC()
}

func TestNewEvent_Validation(t *testing.T) {
	now := mustTime(t, "2025-04-01T10:00:00Z")
	start := mustTime(t, "2025-04-15T18:30:00Z")

	t.Run("valid_event_without_optional_fields", func(t *testing.T) {
		e, err := NewEvent("u1", "  Meetup ", "Budapest", "", "", start, now)
		require.NoError(t, err)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "Meetup", e.Title)
		assert.Equal(t, start, e.StartTime)
		assert.Equal(t, now, e.CreatedAt)
	})

	t.Run("fail_on_missing_title", func(t *testing.T) {
		_, err := NewEvent("u1", " ", "Budapest", "", "", start, now)
		require.Error(t, err)
		assert.Equal(t, CodeValidation, err.(*AppError).Code)
		assert.Contains(t, err.(*AppError).Meta, "title")
	})

	t.Run("fail_on_missing_location", func(t *testing.T) {
		_, err := NewEvent("u1", "Meetup", "", "", "", start, now)
		require.Error(t, err)
		assert.Contains(t, err.(*AppError).Meta, "location")
	})

	t.Run("fail_on_missing_start", func(t *testing.T) {
		_, err := NewEvent("u1", "Meetup", "Budapest", "", "", time.Time{}, now)
		require.Error(t, err)
		assert.Contains(t, err.(*AppError).Meta, "start_time")
	})

	t.Run("fail_on_long_description", func(t *testing.T) {
		_, err := NewEvent("u1", "Meetup", "Budapest", strings.Repeat("x", MaxDescriptionLen+1), "", start, now)
		require.Error(t, err)
		assert.Contains(t, err.(*AppError).Meta, "description")
	})

	t.Run("fail_on_relative_image_url", func(t *testing.T) {
		_, err := NewEvent("u1", "Meetup", "Budapest", "", "/img.png", start, now)
		require.Error(t, err)
		assert.Contains(t, err.(*AppError).Meta, "image_url")
	})
}

func TestSortByStartDesc(t *testing.T) {
	a := &Event{ID: "a", StartTime: mustTime(t, "2025-01-01T00:00:00Z")}
	b := &Event{ID: "b", StartTime: mustTime(t, "2025-03-01T00:00:00Z")}
	c := &Event{ID: "c", StartTime: mustTime(t, "2025-03-01T00:00:00Z")}

	events := []*Event{a, c, b}
	SortByStartDesc(events)

	assert.Equal(t, []*Event{b, c, a}, events)
}

func TestNewSaveRelation(t *testing.T) {
	now := mustTime(t, "2025-04-01T10:00:00Z")

	rel, err := NewSaveRelation("alice", "a", now)
	require.NoError(t, err)
	assert.Equal(t, RelationKey{UserID: "alice", EventID: "a"}, rel.Key())
	assert.Equal(t, "alice/a", rel.Key().String())

	_, err = NewSaveRelation("", "a", now)
	assert.True(t, IsCode(err, CodeNotAuthenticated))

	_, err = NewSaveRelation("alice", " ", now)
	assert.True(t, IsCode(err, CodeValidation))
}

func TestRelationKey_StringIsUnambiguous(t *testing.T) {
	cases := [][2]RelationKey{
		{{UserID: "a_b", EventID: "c"}, {UserID: "a", EventID: "b_c"}},
		{{UserID: "a/b", EventID: "c"}, {UserID: "a", EventID: "b/c"}},
	}
	for _, tc := range cases {
		assert.NotEqual(t, tc[0].String(), tc[1].String())
	}
	assert.Equal(t, "a%2Fb/c", RelationKey{UserID: "a/b", EventID: "c"}.String())
}

func TestNewChatMessage(t *testing.T) {
	now := mustTime(t, "2025-04-01T10:00:00Z")

	m, err := NewChatMessage("alice", "  hello  ", now)
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Text)

	_, err = NewChatMessage("", "hello", now)
	assert.True(t, IsCode(err, CodeNotAuthenticated))

	_, err = NewChatMessage("alice", strings.Repeat("é", MaxChatMessageLen+1), now)
	assert.True(t, IsCode(err, CodeValidation))
}
