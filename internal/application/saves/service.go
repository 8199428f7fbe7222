package saves

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type Service struct {
	repo  RelationRepo
	pub   EventPublisher
	clock Clock
}

func New(repo RelationRepo, clock Clock, pub EventPublisher) *Service {
	return &Service{repo: repo, pub: pub, clock: clock}
}

type saveChangedPayload struct {
	UserID  string    `json:"user_id"`
	EventID string    `json:"event_id"`
	At      time.Time `json:"at"`
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.ErrNotAuthenticated("login required to save events")
	}
	return userID, nil
}

func unavailable(err error) error {
	if _, ok := err.(*domain.AppError); ok {
		return err
	}
	return domain.ErrRelationStoreUnavailable(err)
}

// SavedSet returns the ids of every event the user saved, in one query.
func (s *Service) SavedSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	rels, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	out := make(map[string]struct{}, len(rels))
	for _, r := range rels {
		out[r.EventID] = struct{}{}
	}
	return out, nil
}

// Relations returns the user's relations ordered as the store returns them.
func (s *Service) Relations(ctx context.Context, userID string) ([]domain.SaveRelation, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	rels, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	return rels, nil
}

// IsSaved is a point lookup. Prefer SavedSet when checking many events.
func (s *Service) IsSaved(ctx context.Context, userID, eventID string) (bool, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return false, err
	}
	ok, err := s.repo.Exists(ctx, domain.RelationKey{UserID: userID, EventID: eventID})
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

// Save is idempotent.
func (s *Service) Save(ctx context.Context, userID, eventID string) error {
	rel, err := domain.NewSaveRelation(userID, eventID, s.clock.Now())
	if err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, rel); err != nil {
		return unavailable(err)
	}
	zlog.Debug().Str("user_id", rel.UserID).Str("event_id", rel.EventID).Msg("event saved")
	s.publish(ctx, "save.created", rel.UserID, rel.EventID)
	return nil
}

// Unsave hard-deletes the relation. Absent relations are a no-op.
func (s *Service) Unsave(ctx context.Context, userID, eventID string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return domain.ErrValidationMeta("invalid save", map[string]string{"event_id": "required"})
	}
	if err := s.repo.Delete(ctx, domain.RelationKey{UserID: userID, EventID: eventID}); err != nil {
		return unavailable(err)
	}
	zlog.Debug().Str("user_id", userID).Str("event_id", eventID).Msg("event unsaved")
	s.publish(ctx, "save.deleted", userID, eventID)
	return nil
}

func (s *Service) publish(ctx context.Context, routingKey, userID, eventID string) {
	if s.pub == nil {
		return
	}
	body, err := json.Marshal(saveChangedPayload{UserID: userID, EventID: eventID, At: s.clock.Now().UTC()})
	if err != nil {
		return
	}
	if err := s.pub.PublishEvent(ctx, routingKey, uuid.NewString(), body); err != nil {
		zlog.Warn().Err(err).Str("routing_key", routingKey).Msg("publish notification failed")
	}
}
