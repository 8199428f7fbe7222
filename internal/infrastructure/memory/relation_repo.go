package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type RelationRepo struct {
	mu     sync.RWMutex
	byKey  map[domain.RelationKey]domain.SaveRelation
	events *EventRepo // used for the dangling audit only; may be nil
}

func NewRelationRepo(events *EventRepo) *RelationRepo {
	return &RelationRepo{
		byKey:  make(map[domain.RelationKey]domain.SaveRelation),
		events: events,
	}
}

func (r *RelationRepo) ListByUser(ctx context.Context, userID string) ([]domain.SaveRelation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.SaveRelation
	for k, rel := range r.byKey {
		if k.UserID == userID {
			out = append(out, rel)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].EventID < out[j].EventID
	})
	return out, nil
}

func (r *RelationRepo) Exists(ctx context.Context, key domain.RelationKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byKey[key]
	return ok, nil
}

func (r *RelationRepo) Upsert(ctx context.Context, rel domain.SaveRelation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[rel.Key()]; ok {
		return nil
	}
	r.byKey[rel.Key()] = rel
	return nil
}

func (r *RelationRepo) Delete(ctx context.Context, key domain.RelationKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byKey, key)
	return nil
}

// Count returns the number of stored relations.
func (r *RelationRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}

// DanglingRelations lists relations whose event is missing from the linked EventRepo.
func (r *RelationRepo) DanglingRelations(ctx context.Context) ([]domain.RelationKey, error) {
	if r.events == nil {
		return nil, nil
	}
	r.mu.RLock()
	keys := make([]domain.RelationKey, 0, len(r.byKey))
	for k := range r.byKey {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	var out []domain.RelationKey
	for _, k := range keys {
		if !r.events.exists(k.EventID) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].EventID < out[j].EventID
	})
	return out, nil
}
