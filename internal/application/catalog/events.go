package catalog

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

// ListEvents is a single bulk read ordered by start time descending.
func (s *Service) ListEvents(ctx context.Context, f ListFilter) ([]*domain.Event, error) {
	key := cacheKeyList(f)
	if s.cache != nil {
		var cached []*domain.Event
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found {
			return cached, nil
		}
	}

	events, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, unavailable(err)
	}
	// stores may push only part of the filter down
	events = f.Apply(events)
	domain.SortByStartDesc(events)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, events, s.ttlList); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return events, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	key := cacheKeyEventDetails(id)
	if s.cache != nil {
		var cached domain.Event
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found {
			return &cached, nil
		}
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, unavailable(err)
	}
	if e == nil {
		return nil, domain.ErrNotFound("event not found")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, e, s.ttlDetails); err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		}
	}
	return e, nil
}

// EventsByIDs resolves ids in one round trip. Missing ids are absent from the map.
func (s *Service) EventsByIDs(ctx context.Context, ids []string) (map[string]*domain.Event, error) {
	out := make(map[string]*domain.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	events, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}
