package memory

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type EventCreator interface {
	Create(ctx context.Context, e *domain.Event) error
}

type seedEvent struct {
	Title       string
	Location    string
	Description string
	InDays      int
	Hour        int
}

var sampleEvents = []seedEvent{
	{Title: "Community Meetup", Location: "Budapest, Szabadság tér", Description: "Monthly neighbourhood get-together.", InDays: 2, Hour: 18},
	{Title: "Go Night", Location: "Budapest, District VII", Description: "Lightning talks and pizza.", InDays: 5, Hour: 19},
	{Title: "Book Club", Location: "Szeged Library", InDays: 9, Hour: 17},
	{Title: "Morning Run", Location: "Margaret Island", Description: "5k social run, all paces welcome.", InDays: 1, Hour: 7},
	{Title: "Board Games", Location: "Debrecen, Café Tér", InDays: 12, Hour: 20},
}

// SeedEvents inserts sample events owned by ownerID and returns how many were created.
// Works with any catalog store, so the admin tool reuses it against postgres.
func SeedEvents(ctx context.Context, repo EventCreator, ownerID string, now time.Time) (int, error) {
	n := 0
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, s := range sampleEvents {
		start := base.AddDate(0, 0, s.InDays).Add(time.Duration(s.Hour) * time.Hour)
		e, err := domain.NewEvent(ownerID, s.Title, s.Location, s.Description, "", start, now)
		if err != nil {
			return n, err
		}
		if err := repo.Create(ctx, e); err != nil {
			return n, err
		}
		n++
	}
	zlog.Info().Int("count", n).Msg("[seed] sample events created")
	return n, nil
}
