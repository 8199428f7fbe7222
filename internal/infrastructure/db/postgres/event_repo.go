package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent maps a row to domain.Event; NULL optional columns become empty strings.
func scanEvent(s rowScanner) (*domain.Event, error) {
	var e domain.Event
	var desc, img sql.NullString
	if err := s.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Location, &desc, &img, &e.StartTime, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Description = desc.String
	e.ImageURL = img.String
	e.StartTime = e.StartTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.ID, e.OwnerID, e.Title, e.Location,
		nullable(e.Description), nullable(e.ImageURL),
		e.StartTime, e.CreatedAt,
	)
	return err
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, getEventSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *EventRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, getEventsByIDsSQL, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List pushes the day range and substring filters into SQL. Time-of-day matching
// depends on the catalog timezone and is left to the caller.
func (r *EventRepo) List(ctx context.Context, f catalog.ListFilter) ([]*domain.Event, error) {
	where := []string{"1=1"}
	args := []any{}
	argPos := 1

	if from, to, ok := f.DayRange(); ok {
		where = append(where, fmt.Sprintf("start_time >= $%d AND start_time < $%d", argPos, argPos+1))
		args = append(args, from, to)
		argPos += 2
	}
	if f.Location != "" {
		where = append(where, fmt.Sprintf("location ILIKE $%d", argPos))
		args = append(args, likePattern(f.Location))
		argPos++
	}
	if f.Name != "" {
		where = append(where, fmt.Sprintf("title ILIKE $%d", argPos))
		args = append(args, likePattern(f.Name))
		argPos++
	}

	q := "SELECT " + eventColumns + " FROM events WHERE " + strings.Join(where, " AND ") +
		" ORDER BY start_time DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
