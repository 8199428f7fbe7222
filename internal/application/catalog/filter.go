package catalog

import (
	"strings"
	"time"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

// ListFilter narrows the catalog. Zero value matches everything.
type ListFilter struct {
	Day       *time.Time // midnight of the wanted calendar day in Loc
	TimeOfDay string     // substring of the local "15:04" start time
	Location  string
	Name      string

	Loc *time.Location
}

// ParseListFilter builds a filter from raw query values. date must be YYYY-MM-DD.
func ParseListFilter(date, timeOfDay, location, name string, loc *time.Location) (ListFilter, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := ListFilter{
		TimeOfDay: strings.TrimSpace(timeOfDay),
		Location:  strings.TrimSpace(location),
		Name:      strings.TrimSpace(name),
		Loc:       loc,
	}
	if d := strings.TrimSpace(date); d != "" {
		t, err := time.ParseInLocation("2006-01-02", d, loc)
		if err != nil {
			return ListFilter{}, domain.ErrValidationMeta("invalid filter", map[string]string{
				"date": "must be YYYY-MM-DD",
			})
		}
		f.Day = &t
	}
	if len(f.TimeOfDay) > 5 {
		return ListFilter{}, domain.ErrValidationMeta("invalid filter", map[string]string{
			"time": "must be a fragment of HH:MM",
		})
	}
	return f, nil
}

func (f ListFilter) location() *time.Location {
	if f.Loc == nil {
		return time.UTC
	}
	return f.Loc
}

// IsZero reports whether the filter matches every event.
func (f ListFilter) IsZero() bool {
	return f.Day == nil && f.TimeOfDay == "" && f.Location == "" && f.Name == ""
}

// DayRange returns the half-open UTC interval covered by Day. ok is false when Day is unset.
func (f ListFilter) DayRange() (from, to time.Time, ok bool) {
	if f.Day == nil {
		return time.Time{}, time.Time{}, false
	}
	start := *f.Day
	return start.UTC(), start.AddDate(0, 0, 1).UTC(), true
}

func (f ListFilter) Match(e *domain.Event) bool {
	if e == nil {
		return false
	}
	local := e.StartTime.In(f.location())
	if f.Day != nil {
		y, m, d := f.Day.Date()
		ly, lm, ld := local.Date()
		if y != ly || m != lm || d != ld {
			return false
		}
	}
	if f.TimeOfDay != "" && !strings.Contains(local.Format("15:04"), f.TimeOfDay) {
		return false
	}
	if f.Location != "" && !containsFold(e.Location, f.Location) {
		return false
	}
	if f.Name != "" && !containsFold(e.Title, f.Name) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Apply keeps matching events, preserving order.
func (f ListFilter) Apply(events []*domain.Event) []*domain.Event {
	if f.IsZero() {
		return events
	}
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
