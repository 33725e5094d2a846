package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/constants"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
)

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
}

type NatsPublisher struct {
	conn Conn
	log  *logger.Logger
}

func NewNatsPublisher(conn Conn, log *logger.Logger) *NatsPublisher {
	return &NatsPublisher{conn: conn, log: log}
}

// PublishPostCreated sends the event on post.created with the current trace
// context injected into the message headers.
func (p *NatsPublisher) PublishPostCreated(ctx context.Context, event domain.CreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal post created event: %w", err)
	}

	msg := &nats.Msg{
		Subject: constants.PostCreatedSubject,
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", msg.Subject, err)
	}

	if p.log.ShouldLog(logger.DEBUG) {
		p.log.WithFields(ctx, logger.Fields{
			"post_id": event.PostID,
			"subject": msg.Subject,
			"action":  "event_published",
		}).Debug("event published")
	}
	return nil
}

// NoopPublisher is used when NATS_URL is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostCreated(context.Context, domain.CreatedEvent) error {
	return nil
}
