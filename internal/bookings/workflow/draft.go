// Package workflow implements the staged booking flow: a draft moves through
// date and seat selection, a review step with the computed total, and a
// payment confirmation step before it becomes a persisted booking.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"silvalley/pkg/model"
)

type Stage string

const (
	StageSelectingDetails  Stage = "selecting_details"
	StageReviewingBooking  Stage = "reviewing_booking"
	StageConfirmingPayment Stage = "confirming_payment"
)

var (
	ErrDraftNotFound    = errors.New("booking draft not found")
	ErrNotEditable      = errors.New("draft details can only change in the selection stage")
	ErrInvalidDateRange = errors.New("end date cannot be before start date")
	ErrStartInPast      = errors.New("start date cannot be in the past")
	ErrInvalidSeatCount = errors.New("invalid seat count")
	ErrDetailsMissing   = errors.New("dates and seats must be set before review")
	ErrAtFirstStage     = errors.New("draft is already at the first stage")
	ErrNotReadyToSubmit = errors.New("draft must reach the payment stage before submission")
)

// Draft is an in-progress booking. Space pricing is snapshotted at draft
// creation so the quoted total does not drift while the user reviews it.
type Draft struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	SpaceID       string    `json:"space_id"`
	SpaceName     string    `json:"space_name"`
	SpaceLocation string    `json:"space_location"`
	PricePerDay   float64   `json:"price_per_day"`
	StartDate     time.Time `json:"start_date,omitempty"`
	EndDate       time.Time `json:"end_date,omitempty"`
	Seats         int       `json:"seats,omitempty"`
	TotalPrice    float64   `json:"total_price,omitempty"`
	Stage         Stage     `json:"stage"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewDraft(id, userID string, space *model.Space) *Draft {
	now := time.Now().UTC()
	return &Draft{
		ID:            id,
		UserID:        userID,
		SpaceID:       space.ID,
		SpaceName:     space.Name,
		SpaceLocation: space.Location,
		PricePerDay:   space.PricePerDay,
		Stage:         StageSelectingDetails,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SetDateRange records the booked range. Ranges are inclusive on both ends; a
// single-day booking has start == end. A reversed range is rejected rather
// than silently swapped.
func (d *Draft) SetDateRange(start, end time.Time, now time.Time) error {
	if d.Stage != StageSelectingDetails {
		return ErrNotEditable
	}
	if end.Before(start) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidDateRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if startOfDay(start).Before(startOfDay(now)) {
		return ErrStartInPast
	}

	d.StartDate = start
	d.EndDate = end
	d.touch()
	return nil
}

// SetSeats records the seat count. The cap is the lower of the per-booking
// maximum and the desks the space currently has free.
func (d *Draft) SetSeats(seats, limit int) error {
	if d.Stage != StageSelectingDetails {
		return ErrNotEditable
	}
	if seats < 1 {
		return fmt.Errorf("%w: must book at least 1 seat", ErrInvalidSeatCount)
	}
	if seats > limit {
		return fmt.Errorf("%w: at most %d seats can be booked", ErrInvalidSeatCount, limit)
	}

	d.Seats = seats
	d.touch()
	return nil
}

// Advance moves the draft one stage forward. Entering review computes the
// quoted total from the snapshotted price.
func (d *Draft) Advance() error {
	switch d.Stage {
	case StageSelectingDetails:
		if !d.detailsComplete() {
			return ErrDetailsMissing
		}
		d.TotalPrice = d.ComputeTotal()
		d.Stage = StageReviewingBooking
	case StageReviewingBooking:
		d.Stage = StageConfirmingPayment
	case StageConfirmingPayment:
		return ErrNotReadyToSubmit
	}
	d.touch()
	return nil
}

// Back moves the draft one stage backwards. Returning to selection keeps the
// chosen details so the user edits instead of restarting.
func (d *Draft) Back() error {
	switch d.Stage {
	case StageSelectingDetails:
		return ErrAtFirstStage
	case StageReviewingBooking:
		d.Stage = StageSelectingDetails
	case StageConfirmingPayment:
		d.Stage = StageReviewingBooking
	}
	d.touch()
	return nil
}

func (d *Draft) ReadyToSubmit() bool {
	return d.Stage == StageConfirmingPayment && d.detailsComplete()
}

// ComputeTotal prices the draft: price per day, per seat, over the inclusive
// day count of the range.
func (d *Draft) ComputeTotal() float64 {
	if !d.detailsComplete() {
		return 0
	}
	days := model.InclusiveDays(d.StartDate, d.EndDate)
	return model.RoundPrice(d.PricePerDay * float64(d.Seats) * float64(days))
}

// ToBooking materializes the draft as a pending booking record.
func (d *Draft) ToBooking(userEmail string) *model.Booking {
	return &model.Booking{
		SpaceID:       d.SpaceID,
		SpaceName:     d.SpaceName,
		SpaceLocation: d.SpaceLocation,
		UserID:        d.UserID,
		UserEmail:     userEmail,
		StartDate:     d.StartDate,
		EndDate:       d.EndDate,
		Seats:         d.Seats,
		TotalPrice:    d.ComputeTotal(),
		Status:        model.StatusPending,
	}
}

func (d *Draft) detailsComplete() bool {
	return !d.StartDate.IsZero() && !d.EndDate.IsZero() && d.Seats >= 1
}

func (d *Draft) touch() {
	d.UpdatedAt = time.Now().UTC()
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
