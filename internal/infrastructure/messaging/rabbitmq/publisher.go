package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	zlog "github.com/rs/zerolog/log"
)

const DefaultExchange = "city.events"

var (
	ErrMissingRoutingKey = errors.New("missing routingKey")
	ErrMissingMessageID  = errors.New("missing messageID")
	ErrNotConnected      = errors.New("rabbitmq not connected")
)

// Publisher sends save, event and chat notifications to a durable topic exchange.
// Delivery is best effort: callers log a failure and carry on.
type Publisher struct {
	url      string
	exchange string

	// confirmWait bounds how long a publish waits for the broker ack.
	confirmWait time.Duration

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange, confirmWait: 150 * time.Millisecond}
	if err := p.redial(); err != nil {
		return nil, err
	}
	return p, nil
}

// redial replaces the connection. Caller holds mu or owns p exclusively.
func (p *Publisher) redial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, confirms, err := openChannel(conn, p.exchange)
	if err != nil {
		_ = conn.Close()
		return err
	}
	p.conn, p.ch, p.confirms = conn, ch, confirms
	return nil
}

func openChannel(conn *amqp.Connection, exchange string) (*amqp.Channel, <-chan amqp.Confirmation, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("enable confirms: %w", err)
	}
	return ch, ch.NotifyPublish(make(chan amqp.Confirmation, 1)), nil
}

func (p *Publisher) healthy() bool {
	return p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed()
}

// Ping reports whether the broker connection is up. Used by readiness checks.
func (p *Publisher) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.healthy() {
		return ErrNotConnected
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, ignoreClosed(p.ch.Close()))
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, ignoreClosed(p.conn.Close()))
		p.conn = nil
	}
	return errors.Join(errs...)
}

func ignoreClosed(err error) error {
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

// PublishEvent sends body under routingKey and waits briefly for the broker ack.
// A dropped connection is re-dialed once per call.
func (p *Publisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	if strings.TrimSpace(routingKey) == "" {
		return ErrMissingRoutingKey
	}
	if strings.TrimSpace(messageID) == "" {
		return ErrMissingMessageID
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.healthy() {
		zlog.Warn().Str("exchange", p.exchange).Msg("rabbitmq connection lost, redialing")
		if err := p.redial(); err != nil {
			return err
		}
	}

	msg := amqp.Publishing{
		MessageId:    messageID,
		Type:         routingKey,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// not mandatory: an exchange without bindings is a valid deployment
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	timer := time.NewTimer(p.confirmWait)
	defer timer.Stop()
	select {
	case conf, ok := <-p.confirms:
		if !ok {
			return ErrNotConnected
		}
		if !conf.Ack {
			return fmt.Errorf("publish %s: broker nack", routingKey)
		}
		return nil
	case <-timer.C:
		// unconfirmed within the window; treat as sent
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
