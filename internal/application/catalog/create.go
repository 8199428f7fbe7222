package catalog

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/esemenyrendezo/internal/domain"
)

// ImageUpload is an already sniffed image body.
type ImageUpload struct {
	Data        []byte
	ContentType string
	Ext         string
}

type CreateCmd struct {
	ActorID string

	Title       string
	Location    string
	Description string
	StartTime   time.Time
	ImageURL    string
	Image       *ImageUpload
}

type eventCreatedPayload struct {
	EventID   string    `json:"event_id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*domain.Event, error) {
	if cmd.ActorID == "" {
		return nil, domain.ErrNotAuthenticated("login required to create events")
	}
	now := s.clock.Now()

	// validate before uploading anything
	e, err := domain.NewEvent(cmd.ActorID, cmd.Title, cmd.Location, cmd.Description, cmd.ImageURL, cmd.StartTime, now)
	if err != nil {
		return nil, err
	}

	if cmd.Image != nil {
		if s.images == nil {
			return nil, domain.ErrValidationMeta("invalid event", map[string]string{
				"image": "image uploads are disabled",
			})
		}
		key := fmt.Sprintf("events/%s.%s", uuid.NewString(), cmd.Image.Ext)
		url, err := s.images.PutImage(ctx, key, bytes.NewReader(cmd.Image.Data), cmd.Image.ContentType, int64(len(cmd.Image.Data)))
		if err != nil {
			return nil, domain.ErrCatalogUnavailable(fmt.Errorf("upload image: %w", err))
		}
		e.ImageURL = url
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, unavailable(err)
	}

	zlog.Info().Str("event_id", e.ID).Str("owner_id", e.OwnerID).Msg("event created")
	s.publish(ctx, "event.created", eventCreatedPayload{
		EventID:   e.ID,
		OwnerID:   e.OwnerID,
		Title:     e.Title,
		StartTime: e.StartTime,
	})
	return e, nil
}
