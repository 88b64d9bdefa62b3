package model

import (
	"math"
	"time"
)

// Booking lifecycle statuses. Cancelled is terminal: a cancelled booking
// never transitions again and its seats are restored to the space exactly once.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var BookingStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusActive,
	StatusCancelled,
	StatusCompleted,
}

func IsValidBookingStatus(status string) bool {
	for _, s := range BookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SpaceID       string    `json:"space_id" bson:"space_id" validate:"required,mongodb"`
	SpaceName     string    `json:"space_name" bson:"space_name"`
	SpaceLocation string    `json:"space_location" bson:"space_location"`
	UserID        string    `json:"user_id" bson:"user_id" validate:"required"`
	UserEmail     string    `json:"user_email" bson:"user_email" validate:"required,email"`
	StartDate     time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" bson:"end_date" validate:"required"`
	Seats         int       `json:"seats" bson:"seats" validate:"required,min=1"`
	TotalPrice    float64   `json:"total_price" bson:"total_price" validate:"gte=0"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed active cancelled completed"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// TotalDays is the inclusive day count of the booked range: a booking from
// Jan 1 through Jan 3 spans 3 days.
func (b *Booking) TotalDays() int {
	return InclusiveDays(b.StartDate, b.EndDate)
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func InclusiveDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	startDay := start.Truncate(24 * time.Hour)
	endDay := end.Truncate(24 * time.Hour)
	return int(endDay.Sub(startDay).Hours()/24) + 1
}

// RoundPrice clamps a computed total to currency precision (2 decimals).
func RoundPrice(amount float64) float64 {
	return math.Round(amount*100) / 100
}

type BookingFilter struct {
	UserID  string
	SpaceID string
	Status  string
	From    *time.Time
	To      *time.Time
}

func (f *BookingFilter) IsZero() bool {
	return f == nil ||
		(f.UserID == "" && f.SpaceID == "" && f.Status == "" && f.From == nil && f.To == nil)
}
