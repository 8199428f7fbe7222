package memory

import (
	"context"

	zlog "github.com/rs/zerolog/log"
)

// LogPublisher stands in for RabbitMQ in local runs and only logs notifications.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

func (p *LogPublisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	zlog.Debug().
		Str("routing_key", routingKey).
		Str("message_id", messageID).
		RawJSON("body", body).
		Msg("[noop-pub] notification")
	return nil
}
