package dto

import (
	"time"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type PostChatReq struct {
	Text string `json:"text" validate:"required,max=1000"`
}

type ChatMessageResp struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

func FromChatMessage(m *domain.ChatMessage) ChatMessageResp {
	return ChatMessageResp{ID: m.ID, UserID: m.UserID, Text: m.Text, SentAt: m.SentAt}
}

func FromChatMessages(ms []*domain.ChatMessage) []ChatMessageResp {
	out := make([]ChatMessageResp, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromChatMessage(m))
	}
	return out
}
