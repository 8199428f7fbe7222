package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

func (r *ChatRepo) Append(ctx context.Context, m *domain.ChatMessage) error {
	_, err := r.db.ExecContext(ctx, insertChatMessageSQL, m.ID, m.UserID, m.Text, m.SentAt)
	return err
}

func (r *ChatRepo) Recent(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, recentChatMessagesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.ChatMessage{}
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.SentAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
