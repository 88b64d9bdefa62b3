package model

import "time"

// Booking lifecycle event types published to the booking events topic.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingStatus    = "booking.status_changed"
)

// BookingEvent is the payload carried by booking lifecycle messages. It is
// denormalized so the notifier never has to call back into the booking
// service.
type BookingEvent struct {
	BookingID     string    `json:"booking_id"`
	SpaceID       string    `json:"space_id"`
	SpaceName     string    `json:"space_name"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Seats         int       `json:"seats"`
	TotalPrice    float64   `json:"total_price"`
	Status        string    `json:"status"`
	PreviousState string    `json:"previous_state,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
