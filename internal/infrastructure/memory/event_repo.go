package memory

import (
	"context"
	"sync"

	"github.com/baechuer/esemenyrendezo/internal/application/catalog"
	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type EventRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Event
}

func NewEventRepo() *EventRepo {
	return &EventRepo{byID: make(map[string]domain.Event)}
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.ID == "" {
		return domain.ErrValidation("event id required")
	}
	r.byID[e.ID] = *e
	return nil
}

// Delete exists for out-of-band removal in dev and tests; the API never calls it.
func (r *EventRepo) Delete(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	return &e, nil
}

func (r *EventRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.byID[id]; ok {
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *EventRepo) List(ctx context.Context, f catalog.ListFilter) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Event, 0, len(r.byID))
	for _, e := range r.byID {
		if !f.Match(&e) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	domain.SortByStartDesc(out)
	return out, nil
}

func (r *EventRepo) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}
