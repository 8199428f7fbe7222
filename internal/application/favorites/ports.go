package favorites

import (
	"context"
	"time"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// Catalog is the read side of catalog.Service the reconciler needs.
type Catalog interface {
	ListEvents(ctx context.Context, f catalog.ListFilter) ([]*domain.Event, error)
	EventsByIDs(ctx context.Context, ids []string) (map[string]*domain.Event, error)
}

// Relations is implemented by saves.Service.
type Relations interface {
	SavedSet(ctx context.Context, userID string) (map[string]struct{}, error)
	Relations(ctx context.Context, userID string) ([]domain.SaveRelation, error)
	Save(ctx context.Context, userID, eventID string) error
	Unsave(ctx context.Context, userID, eventID string) error
}
