package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

type Service struct {
	repo   EventRepo
	pub    EventPublisher
	cache  Cache
	images ImageStore
	clock  Clock

	ttlDetails time.Duration
	ttlList    time.Duration
}

type Options struct {
	Cache      Cache
	Images     ImageStore
	TTLDetails time.Duration
	TTLList    time.Duration
}

func New(repo EventRepo, clock Clock, pub EventPublisher, opts Options) *Service {
	if pub == nil {
		pub = NoopPublisher{}
	}
	if opts.TTLDetails == 0 {
		opts.TTLDetails = 5 * time.Minute
	}
	if opts.TTLList == 0 {
		opts.TTLList = 15 * time.Second
	}
	return &Service{
		repo:       repo,
		pub:        pub,
		cache:      opts.Cache,
		images:     opts.Images,
		clock:      clock,
		ttlDetails: opts.TTLDetails,
		ttlList:    opts.TTLList,
	}
}

// unavailable converts store failures into CatalogUnavailable, keeping domain errors as-is.
func unavailable(err error) error {
	if _, ok := err.(*domain.AppError); ok {
		return err
	}
	return domain.ErrCatalogUnavailable(err)
}

func (s *Service) publish(ctx context.Context, routingKey string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		zlog.Warn().Err(err).Str("routing_key", routingKey).Msg("marshal notification failed")
		return
	}
	if err := s.pub.PublishEvent(ctx, routingKey, uuid.NewString(), body); err != nil {
		zlog.Warn().Err(err).Str("routing_key", routingKey).Msg("publish notification failed")
	}
}
