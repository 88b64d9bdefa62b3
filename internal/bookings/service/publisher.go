package service

import (
	"context"
	"time"

	"silvalley/pkg/kafka"
	"silvalley/pkg/logger"
	"silvalley/pkg/model"
)

// EventPublisher emits booking lifecycle events for downstream consumers
// (notifier, analytics). Publishing is best-effort from the API's point of
// view: a failed publish is logged and sent to the DLQ by the producer, it
// never rolls back the booking itself.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, event *model.BookingEvent) error
}

type kafkaEventPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaEventPublisher(producer *kafka.Producer, log *logger.Logger) EventPublisher {
	return &kafkaEventPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaEventPublisher) PublishBookingEvent(ctx context.Context, eventType string, event *model.BookingEvent) error {
	event.OccurredAt = time.Now().UTC()

	msg := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion("1").
		WithSource("bookings-api").
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", event.BookingID,
			"error", err,
		)
		return err
	}

	p.log.Debug("Booking event published",
		"event_type", eventType,
		"booking_id", event.BookingID,
		"status", event.Status,
	)
	return nil
}

// NoopEventPublisher is used by binaries that do not emit events (the seed
// tool) and by tests.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishBookingEvent(ctx context.Context, eventType string, event *model.BookingEvent) error {
	return nil
}
