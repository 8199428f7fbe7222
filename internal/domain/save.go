package domain

import (
	"net/url"
	"strings"
	"time"
)

// RelationKey identifies a SaveRelation. At most one relation exists per key.
type RelationKey struct {
	UserID  string
	EventID string
}

// String renders "<user>/<event>" with both parts path-escaped, so a "/" inside
// an id cannot make two keys collide. Only used for logs.
func (k RelationKey) String() string {
	return url.PathEscape(k.UserID) + "/" + url.PathEscape(k.EventID)
}

// SaveRelation records that a user favorited an event. It is a presence record:
// created on save, hard-deleted on unsave, never updated in place.
type SaveRelation struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r SaveRelation) Key() RelationKey {
	return RelationKey{UserID: r.UserID, EventID: r.EventID}
}

func NewSaveRelation(userID, eventID string, now time.Time) (SaveRelation, error) {
	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" {
		return SaveRelation{}, ErrNotAuthenticated("login required to save events")
	}
	if eventID == "" {
		return SaveRelation{}, ErrValidationMeta("invalid save", map[string]string{
			"event_id": "required",
		})
	}
	return SaveRelation{UserID: userID, EventID: eventID, CreatedAt: now.UTC()}, nil
}
