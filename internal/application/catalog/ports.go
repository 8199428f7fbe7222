package catalog

import (
	"context"
	"io"
	"time"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// EventRepo is the Catalog Store. Implementations normalize their external record
// shape into domain.Event; nothing above this port sees storage field names.
type EventRepo interface {
	Create(ctx context.Context, e *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// GetByIDs returns the events that exist; unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error)
	// List returns events ordered by start time descending.
	List(ctx context.Context, f ListFilter) ([]*domain.Event, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}

// ImageStore persists an uploaded event image and returns its public URL.
type ImageStore interface {
	PutImage(ctx context.Context, key string, body io.Reader, contentType string, size int64) (string, error)
}
