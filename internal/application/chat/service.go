package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Clock interface {
	Now() time.Time
}

type MessageRepo interface {
	Append(ctx context.Context, m *domain.ChatMessage) error
	// Recent returns the latest limit messages ordered oldest first.
	Recent(ctx context.Context, limit int) ([]*domain.ChatMessage, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}

type Service struct {
	repo  MessageRepo
	pub   EventPublisher
	clock Clock
}

func New(repo MessageRepo, clock Clock, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub, clock: clock}
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	msgs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	return msgs, nil
}

func (s *Service) Post(ctx context.Context, userID, text string) (*domain.ChatMessage, error) {
	m, err := domain.NewChatMessage(userID, text, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, m); err != nil {
		return nil, unavailable(err)
	}
	s.publish(ctx, m)
	return m, nil
}

func unavailable(err error) error {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		return err
	}
	return domain.ErrChatUnavailable(err)
}

func (s *Service) publish(ctx context.Context, m *domain.ChatMessage) {
	if s.pub == nil {
		return
	}
	body, err := json.Marshal(m)
	if err != nil {
		zlog.Warn().Err(err).Str("message_id", m.ID).Msg("marshal chat message failed")
		return
	}
	if err := s.pub.PublishEvent(ctx, "chat.message_posted", uuid.NewString(), body); err != nil {
		zlog.Warn().Err(err).Str("message_id", m.ID).Msg("publish chat message failed")
	}
}
