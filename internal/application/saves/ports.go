package saves

import (
	"context"
	"time"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// RelationRepo is the Save-Relation Store. Keys are (user, event) pairs; a store
// never holds two relations for the same pair.
type RelationRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.SaveRelation, error)
	Exists(ctx context.Context, key domain.RelationKey) (bool, error)
	// Upsert creates the relation if absent and leaves an existing one untouched.
	Upsert(ctx context.Context, rel domain.SaveRelation) error
	// Delete removes the relation; deleting an absent relation is not an error.
	Delete(ctx context.Context, key domain.RelationKey) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}
