package memory

import (
	"context"
	"sync"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type ChatRepo struct {
	mu   sync.RWMutex
	msgs []domain.ChatMessage
}

func NewChatRepo() *ChatRepo { return &ChatRepo{} }

func (r *ChatRepo) Append(ctx context.Context, m *domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, *m)
	return nil
}

// Recent returns up to limit latest messages, oldest first.
func (r *ChatRepo) Recent(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && len(r.msgs) > limit {
		start = len(r.msgs) - limit
	}
	out := make([]*domain.ChatMessage, 0, len(r.msgs)-start)
	for i := start; i < len(r.msgs); i++ {
		m := r.msgs[i]
		out = append(out, &m)
	}
	return out, nil
}
