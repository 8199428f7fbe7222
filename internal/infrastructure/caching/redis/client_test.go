package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	start := time.Date(2025, 12, 20, 18, 0, 0, 0, time.UTC)
	in := []*domain.Event{{ID: "a", Title: "Meetup", StartTime: start}}
	require.NoError(t, c.Set(ctx, "events:list:x", in, time.Minute))
	assert.True(t, mr.Exists("esemeny:events:list:x"))

	var out []*domain.Event
	found, err := c.Get(ctx, "events:list:x", &out)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, out, 1)
	assert.Equal(t, "Meetup", out[0].Title)
	assert.True(t, start.Equal(out[0].StartTime))

	require.NoError(t, c.Delete(ctx, "events:list:x"))
	found, err = c.Get(ctx, "events:list:x", &out)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, c.Delete(ctx))
}

func TestClient_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	require.NoError(t, c.Set(ctx, "event:a", domain.Event{ID: "a"}, 5*time.Second))
	mr.FastForward(6 * time.Second)

	var e domain.Event
	found, err := c.Get(ctx, "event:a", &e)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_CorruptValue(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)

	require.NoError(t, mr.Set("esemeny:event:bad", "{not json"))
	var e domain.Event
	found, err := c.Get(ctx, "event:bad", &e)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), "redis://"+addr)
	assert.Error(t, err)
}
