package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxChatMessageLen = 1000

type ChatMessage struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

func NewChatMessage(userID, text string, now time.Time) (*ChatMessage, error) {
	userID = strings.TrimSpace(userID)
	text = strings.TrimSpace(text)
	if userID == "" {
		return nil, ErrNotAuthenticated("login required to chat")
	}
	if text == "" || utf8.RuneCountInString(text) > MaxChatMessageLen {
		return nil, ErrValidationMeta("invalid message", map[string]string{
			"text": "required and must be <= 1000 chars",
		})
	}
	return &ChatMessage{
		ID:     uuid.NewString(),
		UserID: userID,
		Text:   text,
		SentAt: now.UTC(),
	}, nil
}
