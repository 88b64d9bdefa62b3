package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"silvalley/pkg/kafka"
	"silvalley/pkg/logger"
	"silvalley/pkg/model"
)

type mockCounterRepository struct {
	adjustFunc func(ctx context.Context, userID string, delta int) error
}

func (m *mockCounterRepository) AdjustBookingsCount(ctx context.Context, userID string, delta int) error {
	if m.adjustFunc != nil {
		return m.adjustFunc(ctx, userID, delta)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func eventMessage(t *testing.T, eventType string, event *model.BookingEvent) kafka.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}

	return kafka.Message{
		Key:   event.BookingID,
		Value: payload,
		Headers: map[string]string{
			kafka.HeaderEventID:   "evt-1",
			kafka.HeaderEventType: eventType,
		},
		Topic:     "booking-events",
		Timestamp: time.Now(),
	}
}

func sampleEvent() *model.BookingEvent {
	return &model.BookingEvent{
		BookingID:  "66b000000000000000000001",
		SpaceID:    "66b000000000000000000002",
		SpaceName:  "Harbor Hub",
		UserID:     "66b000000000000000000003",
		UserEmail:  "jane@example.com",
		Seats:      2,
		TotalPrice: 210,
		Status:     model.StatusPending,
	}
}

func TestHandleMessage_CounterAdjustments(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		wantDelta int
		wantCall  bool
	}{
		{"created increments", model.EventBookingCreated, 1, true},
		{"cancelled decrements", model.EventBookingCancelled, -1, true},
		{"confirmed leaves counter alone", model.EventBookingConfirmed, 0, false},
		{"status change leaves counter alone", model.EventBookingStatus, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			var gotDelta int
			called := false
			counters := &mockCounterRepository{
				adjustFunc: func(ctx context.Context, userID string, delta int) error {
					called = true
					gotUserID = userID
					gotDelta = delta
					return nil
				},
			}

			svc := NewNotificationService(counters, testLogger())
			event := sampleEvent()

			err := svc.HandleMessage(context.Background(), eventMessage(t, tt.eventType, event))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if called != tt.wantCall {
				t.Fatalf("expected counter call %v, got %v", tt.wantCall, called)
			}
			if tt.wantCall {
				if gotUserID != event.UserID {
					t.Errorf("expected adjustment for %s, got %s", event.UserID, gotUserID)
				}
				if gotDelta != tt.wantDelta {
					t.Errorf("expected delta %d, got %d", tt.wantDelta, gotDelta)
				}
			}
		})
	}
}

func TestHandleMessage_UnknownEventTypeAcknowledged(t *testing.T) {
	counters := &mockCounterRepository{
		adjustFunc: func(ctx context.Context, userID string, delta int) error {
			t.Error("counter must not change for unknown event types")
			return nil
		},
	}

	svc := NewNotificationService(counters, testLogger())

	err := svc.HandleMessage(context.Background(), eventMessage(t, "booking.teleported", sampleEvent()))
	if err != nil {
		t.Errorf("unknown event types must be acknowledged, got %v", err)
	}
}

func TestHandleMessage_UndecodablePayloadIsPermanent(t *testing.T) {
	svc := NewNotificationService(&mockCounterRepository{}, testLogger())

	msg := kafka.Message{
		Key:   "b1",
		Value: []byte("not json"),
		Headers: map[string]string{
			kafka.HeaderEventType: model.EventBookingCreated,
		},
	}

	err := svc.HandleMessage(context.Background(), msg)
	if err == nil {
		t.Fatal("expected an error for an undecodable payload")
	}

	var kafkaErr *kafka.KafkaError
	if !errors.As(err, &kafkaErr) || !kafkaErr.IsPermanent() {
		t.Errorf("expected a permanent error so the message goes to the DLQ, got %v", err)
	}
}

func TestHandleMessage_CounterFailurePropagates(t *testing.T) {
	counters := &mockCounterRepository{
		adjustFunc: func(ctx context.Context, userID string, delta int) error {
			return errors.New("connection refused")
		},
	}

	svc := NewNotificationService(counters, testLogger())

	err := svc.HandleMessage(context.Background(), eventMessage(t, model.EventBookingCreated, sampleEvent()))
	if err == nil {
		t.Fatal("counter failures must propagate so the consumer retries")
	}
}
