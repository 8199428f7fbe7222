package domain

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxTitleLen       = 120
	MaxLocationLen    = 120
	MaxDescriptionLen = 4000
)

// Event is one organized happening in the catalog. The favorite flow never mutates it.
type Event struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	StartTime   time.Time `json:"start_time"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewEvent(ownerID, title, location, description, imageURL string, start, now time.Time) (*Event, error) {
	ownerID = strings.TrimSpace(ownerID)
	title = strings.TrimSpace(title)
	location = strings.TrimSpace(location)
	description = strings.TrimSpace(description)
	imageURL = strings.TrimSpace(imageURL)

	if title == "" || len(title) > MaxTitleLen {
		return nil, ErrValidationMeta("invalid event", map[string]string{
			"title": "required and must be <= 120 chars",
		})
	}
	if location == "" || len(location) > MaxLocationLen {
		return nil, ErrValidationMeta("invalid event", map[string]string{
			"location": "required and must be <= 120 chars",
		})
	}
	if start.IsZero() {
		return nil, ErrValidationMeta("invalid event", map[string]string{
			"start_time": "required",
		})
	}
	if len(description) > MaxDescriptionLen {
		return nil, ErrValidationMeta("invalid event", map[string]string{
			"description": "must be <= 4000 chars",
		})
	}
	if imageURL != "" {
		u, err := url.Parse(imageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, ErrValidationMeta("invalid event", map[string]string{
				"image_url": "must be an absolute http(s) url",
			})
		}
	}

	return &Event{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Location:    location,
		Description: description,
		ImageURL:    imageURL,
		StartTime:   start.UTC(),
		CreatedAt:   now.UTC(),
	}, nil
}

// SortByStartDesc orders events newest start first, ties broken by id for stable output.
func SortByStartDesc(events []*Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.After(b.StartTime)
		}
		return a.ID < b.ID
	})
}
