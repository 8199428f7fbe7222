package favorites

import (
	"strings"
	"time"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type CalendarDay struct {
	Date     string   `json:"date"`
	InMonth  bool     `json:"in_month"`
	Today    bool     `json:"today"`
	Count    int      `json:"count"`
	EventIDs []string `json:"event_ids"`
}

type CalendarMonth struct {
	Month string          `json:"month"` // YYYY-MM
	Weeks [][]CalendarDay `json:"weeks"`
}

// ParseMonth reads YYYY-MM in loc. Empty input means the month containing now.
func ParseMonth(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, domain.ErrValidationMeta("invalid month", map[string]string{
			"month": "must be YYYY-MM",
		})
	}
	return t, nil
}

// BuildMonth lays events out on a Sunday-first grid covering month.
// Days outside the month are included to fill the first and last week.
func BuildMonth(month time.Time, events []*domain.Event, now time.Time, loc *time.Location) CalendarMonth {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	gridStart := first.AddDate(0, 0, -int(first.Weekday()))
	gridEnd := last.AddDate(0, 0, 6-int(last.Weekday()))

	byDay := make(map[string][]string)
	for _, e := range events {
		key := e.StartTime.In(loc).Format("2006-01-02")
		byDay[key] = append(byDay[key], e.ID)
	}
	today := now.In(loc).Format("2006-01-02")

	out := CalendarMonth{Month: first.Format("2006-01")}
	var week []CalendarDay
	for d := gridStart; !d.After(gridEnd); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		ids := byDay[key]
		if ids == nil {
			ids = []string{}
		}
		week = append(week, CalendarDay{
			Date:     key,
			InMonth:  d.Month() == first.Month(),
			Today:    key == today,
			Count:    len(ids),
			EventIDs: ids,
		})
		if len(week) == 7 {
			out.Weeks = append(out.Weeks, week)
			week = nil
		}
	}
	return out
}
