package ical

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

const productID = "-//esemenyrendezo//saved events//EN"

// Export renders events as a VCALENDAR feed. UIDs are stable per event so
// calendar clients update entries in place on refresh.
func Export(name string, events []*domain.Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + "@esemenyrendezo")
		ve.SetDtStampTime(now.UTC())
		ve.SetStartAt(e.StartTime.UTC())
		ve.SetSummary(e.Title)
		ve.SetLocation(e.Location)
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt.UTC())
		}
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.ImageURL != "" {
			ve.SetURL(e.ImageURL)
		}
	}
	return cal.Serialize()
}
