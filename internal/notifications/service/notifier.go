package service

import (
	"context"
	"fmt"

	"silvalley/internal/notifications/repository"
	"silvalley/pkg/kafka"
	"silvalley/pkg/logger"
	"silvalley/pkg/model"
)

// NotificationService consumes booking lifecycle events. For every event it
// emits a notification log line (the stand-in for an outbound email/SMS
// integration) and keeps the per-user bookings_count in sync.
type NotificationService struct {
	counters repository.BookingCounterRepository
	log      *logger.Logger
}

func NewNotificationService(counters repository.BookingCounterRepository, log *logger.Logger) *NotificationService {
	return &NotificationService{
		counters: counters,
		log:      log,
	}
}

// HandleMessage satisfies kafka.MessageHandler. Unknown event types are
// acknowledged without processing; retrying them would never succeed.
func (s *NotificationService) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		s.log.Error("Failed to decode booking event",
			"event_id", msg.GetEventID(),
			"topic", msg.Topic,
			"error", err,
		)
		return kafka.NewPermanentError("undecodable booking event", err)
	}

	eventType := msg.GetEventType()

	switch eventType {
	case model.EventBookingCreated:
		s.notify(eventType, &event, "Booking received, awaiting payment")
		return s.adjustCount(ctx, &event, 1)
	case model.EventBookingConfirmed:
		s.notify(eventType, &event, "Payment received, booking confirmed")
		return nil
	case model.EventBookingCancelled:
		s.notify(eventType, &event, "Booking cancelled, seats released")
		return s.adjustCount(ctx, &event, -1)
	case model.EventBookingStatus:
		s.notify(eventType, &event, fmt.Sprintf("Booking moved from %s to %s", event.PreviousState, event.Status))
		return nil
	default:
		s.log.Warn("Ignoring unknown event type",
			"event_type", eventType,
			"event_id", msg.GetEventID(),
		)
		return nil
	}
}

func (s *NotificationService) notify(eventType string, event *model.BookingEvent, message string) {
	s.log.Info("Notification sent",
		"event_type", eventType,
		"booking_id", event.BookingID,
		"recipient", event.UserEmail,
		"space_name", event.SpaceName,
		"message", message,
	)
}

func (s *NotificationService) adjustCount(ctx context.Context, event *model.BookingEvent, delta int) error {
	if err := s.counters.AdjustBookingsCount(ctx, event.UserID, delta); err != nil {
		s.log.Error("Failed to adjust bookings count",
			"user_id", event.UserID,
			"booking_id", event.BookingID,
			"delta", delta,
			"error", err,
		)
		return err
	}
	return nil
}
