package dto

import (
	"time"

	"github.com/baechuer/esemenyrendezo/internal/application/favorites"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type CreateEventReq struct {
	Title       string    `json:"title" validate:"required,max=120"`
	Location    string    `json:"location" validate:"required,max=120"`
	Description string    `json:"description,omitempty" validate:"max=4000"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	ImageURL    string    `json:"image_url,omitempty" validate:"omitempty,url"`
}

type EventResp struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	StartTime   time.Time `json:"start_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventRow is an event as rendered in a view, with the caller's saved flag.
type EventRow struct {
	EventResp
	IsSaved bool `json:"is_saved"`
	Pending bool `json:"pending,omitempty"`
}

type ViewResp struct {
	Kind  string     `json:"kind"`
	Items []EventRow `json:"items"`
	Count int        `json:"count"`
}

type ToggleResp struct {
	EventID    string `json:"event_id"`
	Action     string `json:"action,omitempty"`
	IsSaved    bool   `json:"is_saved"`
	RolledBack bool   `json:"rolled_back,omitempty"`
	Discarded  bool   `json:"discarded,omitempty"`
}

type SavedStateResp struct {
	EventID string `json:"event_id"`
	IsSaved bool   `json:"is_saved"`
}

func FromEvent(e *domain.Event) EventResp {
	return EventResp{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		Title:       e.Title,
		Location:    e.Location,
		Description: e.Description,
		ImageURL:    e.ImageURL,
		StartTime:   e.StartTime,
		CreatedAt:   e.CreatedAt,
	}
}

func FromView(v *favorites.View) ViewResp {
	rows := v.Rows()
	items := make([]EventRow, 0, len(rows))
	for _, r := range rows {
		items = append(items, EventRow{EventResp: FromEvent(r.Event), IsSaved: r.Saved, Pending: r.Pending})
	}
	return ViewResp{Kind: string(v.Kind()), Items: items, Count: len(items)}
}

func FromToggle(r favorites.ToggleResult) ToggleResp {
	return ToggleResp{
		EventID:    r.EventID,
		Action:     r.Action,
		IsSaved:    r.Saved,
		RolledBack: r.RolledBack,
		Discarded:  r.Discarded,
	}
}
