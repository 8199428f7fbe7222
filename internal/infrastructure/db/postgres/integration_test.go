//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

func TestPostgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgres:17",
		tcpostgres.WithDatabase("events"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, EnsureSchema(ctx, db))
	require.NoError(t, EnsureSchema(ctx, db))

	events := NewEventRepo(db)
	rels := NewRelationRepo(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	e, err := domain.NewEvent("alice", "Meetup", "Budapest", "", "", now.Add(24*time.Hour), now)
	require.NoError(t, err)
	require.NoError(t, events.Create(ctx, e))

	t.Run("list_and_get", func(t *testing.T) {
		f, err := catalog.ParseListFilter("", "", "buda", "MEET", time.UTC)
		require.NoError(t, err)
		got, err := events.List(ctx, f)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, e.ID, got[0].ID)

		byIDs, err := events.GetByIDs(ctx, []string{e.ID, "ghost-id"})
		require.NoError(t, err)
		assert.Len(t, byIDs, 1)
	})

	t.Run("upsert_idempotent_and_dangling", func(t *testing.T) {
		rel := domain.SaveRelation{UserID: "alice", EventID: e.ID, CreatedAt: now}
		require.NoError(t, rels.Upsert(ctx, rel))
		require.NoError(t, rels.Upsert(ctx, rel))
		require.NoError(t, rels.Upsert(ctx, domain.SaveRelation{UserID: "alice", EventID: "ghost-id", CreatedAt: now}))

		list, err := rels.ListByUser(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, list, 2)

		dangling, err := rels.DanglingRelations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.RelationKey{{UserID: "alice", EventID: "ghost-id"}}, dangling)

		require.NoError(t, rels.Delete(ctx, rel.Key()))
		require.NoError(t, rels.Delete(ctx, rel.Key()))
		ok, err := rels.Exists(ctx, rel.Key())
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
