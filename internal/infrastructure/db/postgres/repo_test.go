package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

var eventCols = []string{"id", "owner_id", "title", "location", "description", "image_url", "start_time", "created_at"}

func TestEventRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepo(db)
	now := time.Now().UTC()
	e := &domain.Event{ID: "evt_1", OwnerID: "alice", Title: "Meetup", Location: "Budapest", StartTime: now, CreatedAt: now}

	mock.ExpectExec("INSERT INTO events").
		WithArgs(e.ID, e.OwnerID, e.Title, e.Location,
			sql.NullString{}, sql.NullString{}, e.StartTime, e.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepo(db)
	start := time.Date(2025, 12, 20, 18, 0, 0, 0, time.UTC)

	t.Run("success_mapping", func(t *testing.T) {
		rows := sqlmock.NewRows(eventCols).
			AddRow("evt_1", "alice", "Meetup", "Budapest", nil, "https://img/x.png", start, start)
		mock.ExpectQuery("SELECT (.+) FROM events WHERE id =").WithArgs("evt_1").WillReturnRows(rows)

		ev, err := repo.GetByID(context.Background(), "evt_1")
		require.NoError(t, err)
		assert.Equal(t, "Meetup", ev.Title)
		assert.Equal(t, "", ev.Description)
		assert.Equal(t, "https://img/x.png", ev.ImageURL)
	})

	t.Run("not_found_mapping", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WithArgs("none").WillReturnError(sql.ErrNoRows)

		ev, err := repo.GetByID(context.Background(), "none")
		assert.Nil(t, ev)
		assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_GetByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepo(db)
	start := time.Date(2025, 12, 20, 18, 0, 0, 0, time.UTC)

	t.Run("empty_skips_query", func(t *testing.T) {
		got, err := repo.GetByIDs(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("any_array", func(t *testing.T) {
		rows := sqlmock.NewRows(eventCols).AddRow("a", "", "Meetup", "Budapest", nil, nil, start, start)
		mock.ExpectQuery("SELECT (.+) FROM events WHERE id = ANY").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(rows)

		got, err := repo.GetByIDs(context.Background(), []string{"a", "ghost-id"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a", got[0].ID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewEventRepo(db)
	start := time.Date(2025, 12, 20, 18, 0, 0, 0, time.UTC)

	t.Run("no_filter", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM events WHERE 1=1 ORDER BY start_time DESC`).
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow("a", "", "Meetup", "Budapest", nil, nil, start, start))

		got, err := repo.List(context.Background(), catalog.ListFilter{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("day_and_substrings_pushed_down", func(t *testing.T) {
		f, err := catalog.ParseListFilter("2025-12-20", "18", "50%_off", "meet", time.UTC)
		require.NoError(t, err)
		from, to, _ := f.DayRange()

		mock.ExpectQuery(`start_time >= \$1 AND start_time < \$2 AND location ILIKE \$3 AND title ILIKE \$4`).
			WithArgs(from, to, `%50\%\_off%`, "%meet%").
			WillReturnRows(sqlmock.NewRows(eventCols))

		got, err := repo.List(context.Background(), f)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("query_error", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("conn reset"))
		_, err := repo.List(context.Background(), catalog.ListFilter{})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationRepo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRelationRepo(db)
	ctx := context.Background()
	now := time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)
	key := domain.RelationKey{UserID: "alice", EventID: "a"}

	t.Run("upsert_is_on_conflict_do_nothing", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO save_relations (.+) ON CONFLICT \(user_id, event_id\) DO NOTHING`).
			WithArgs("alice", "a", now).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, repo.Upsert(ctx, domain.SaveRelation{UserID: "alice", EventID: "a", CreatedAt: now}))
	})

	t.Run("delete_zero_rows_is_ok", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM save_relations").
			WithArgs("alice", "a").
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.NoError(t, repo.Delete(ctx, key))
	})

	t.Run("exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("alice", "a").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		ok, err := repo.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("list_by_user", func(t *testing.T) {
		mock.ExpectQuery("SELECT user_id, event_id, created_at FROM save_relations WHERE user_id =").
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id", "created_at"}).
				AddRow("alice", "a", now).
				AddRow("alice", "ghost-id", now))
		rels, err := repo.ListByUser(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, rels, 2)
		assert.Equal(t, "ghost-id", rels[1].EventID)
	})

	t.Run("dangling", func(t *testing.T) {
		mock.ExpectQuery("LEFT JOIN events e ON e.id = r.event_id WHERE e.id IS NULL").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "event_id"}).AddRow("alice", "ghost-id"))
		got, err := repo.DanglingRelations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.RelationKey{{UserID: "alice", EventID: "ghost-id"}}, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepo(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewChatRepo(db)
	now := time.Date(2025, 12, 25, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("m1", "alice", "hi", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Append(context.Background(), &domain.ChatMessage{ID: "m1", UserID: "alice", Text: "hi", SentAt: now}))

	mock.ExpectQuery("SELECT id, user_id, text, sent_at FROM").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "sent_at"}).AddRow("m1", "alice", "hi", now))
	msgs, err := repo.Recent(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Text)

	assert.NoError(t, mock.ExpectationsWereMet())
}
