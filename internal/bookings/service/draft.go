package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "silvalley/internal/bookings/errors"
	"silvalley/internal/bookings/workflow"
	"silvalley/pkg/auth"
	"silvalley/pkg/client"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// StartDraft opens the staged booking flow against a space. A sold-out space
// is rejected up front rather than at submission.
func (s *bookingService) StartDraft(ctx context.Context, actor *auth.Claims, spaceID string) (*workflow.Draft, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if spaceID == "" {
		return nil, apperrors.InvalidInput("Space ID cannot be empty")
	}

	space, err := s.ledger.GetSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSpaceNotFound) {
			return nil, apperrors.NotFoundWithID("Space", spaceID)
		}
		s.cfg.Log.Error("Failed to load space for draft",
			"space_id", spaceID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load space", err)
	}

	if space.AvailableDesks <= 0 {
		return nil, apperrors.InsufficientAvailability("space is sold out")
	}

	draft := workflow.NewDraft(uuid.NewString(), actor.UserID, space)
	s.drafts.Put(draft)

	s.cfg.Log.Info("Booking draft started",
		"draft_id", draft.ID,
		"space_id", spaceID,
		"user_id", actor.UserID,
	)

	return draft, nil
}

func (s *bookingService) GetDraft(actor *auth.Claims, id string) (*workflow.Draft, error) {
	return s.loadDraft(actor, id)
}

func (s *bookingService) SetDraftDates(ctx context.Context, actor *auth.Claims, id string, start, end time.Time) (*workflow.Draft, error) {
	draft, err := s.loadDraft(actor, id)
	if err != nil {
		return nil, err
	}

	if err := draft.SetDateRange(start, end, time.Now()); err != nil {
		return nil, mapDraftError(err)
	}

	s.drafts.Put(draft)
	return draft, nil
}

// SetDraftSeats caps the request at the lower of the per-booking maximum and
// the desks currently free, re-read from the space so a stale draft cannot
// overshoot the pool.
func (s *bookingService) SetDraftSeats(ctx context.Context, actor *auth.Claims, id string, seats int) (*workflow.Draft, error) {
	draft, err := s.loadDraft(actor, id)
	if err != nil {
		return nil, err
	}

	space, err := s.ledger.GetSpace(ctx, draft.SpaceID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSpaceNotFound) {
			return nil, apperrors.NotFoundWithID("Space", draft.SpaceID)
		}
		return nil, apperrors.Internal("Failed to load space", err)
	}

	limit := s.cfg.MaxSeatsPerBooking
	if space.AvailableDesks < limit {
		limit = space.AvailableDesks
	}

	if err := draft.SetSeats(seats, limit); err != nil {
		return nil, mapDraftError(err)
	}

	s.drafts.Put(draft)
	return draft, nil
}

func (s *bookingService) AdvanceDraft(actor *auth.Claims, id string) (*workflow.Draft, error) {
	draft, err := s.loadDraft(actor, id)
	if err != nil {
		return nil, err
	}

	if err := draft.Advance(); err != nil {
		return nil, mapDraftError(err)
	}

	s.drafts.Put(draft)
	return draft, nil
}

func (s *bookingService) BackDraft(actor *auth.Claims, id string) (*workflow.Draft, error) {
	draft, err := s.loadDraft(actor, id)
	if err != nil {
		return nil, err
	}

	if err := draft.Back(); err != nil {
		return nil, mapDraftError(err)
	}

	s.drafts.Put(draft)
	return draft, nil
}

// SubmitDraft turns the draft into a pending booking and opens a payment
// intent for it. The seat decrement and the record insert commit atomically;
// if the payment processor then refuses the intent, the booking is rolled
// back by the same cancel path users take, so the seats go straight back.
func (s *bookingService) SubmitDraft(ctx context.Context, actor *auth.Claims, id string) (*model.Booking, *client.PaymentIntent, error) {
	draft, err := s.loadDraft(actor, id)
	if err != nil {
		return nil, nil, err
	}

	if !draft.ReadyToSubmit() {
		return nil, nil, mapDraftError(workflow.ErrNotReadyToSubmit)
	}

	booking := draft.ToBooking(actor.Email)
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Draft produced an invalid booking",
			"draft_id", id,
			"error", err,
		)
		return nil, nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ledger.DecrementIfAvailable(sessCtx, booking.SpaceID, booking.Seats); err != nil {
			return err
		}
		return s.repo.Create(sessCtx, booking)
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInsufficientAvailability) {
			return nil, nil, apperrors.InsufficientAvailability(fmt.Sprintf(
				"space has fewer than %d desks available", booking.Seats))
		}
		s.cfg.Log.Error("Failed to submit booking draft",
			"draft_id", id,
			"space_id", booking.SpaceID,
			"error", err,
		)
		return nil, nil, apperrors.Internal("Failed to create booking", err)
	}

	intent, err := s.payments.CreateIntent(client.PaymentIntentRequest{
		Amount:    booking.TotalPrice,
		Currency:  paymentCurrency,
		Reference: booking.ID,
	})
	if err != nil {
		s.cfg.Log.Error("Payment intent creation failed, compensating booking",
			"booking_id", booking.ID,
			"error", err,
		)
		s.compensateFailedSubmit(ctx, booking)
		return nil, nil, apperrors.Unavailable("Payment processor")
	}

	s.drafts.Delete(id)

	s.cfg.Log.Info("Booking submitted",
		"id", booking.ID,
		"draft_id", id,
		"space_id", booking.SpaceID,
		"user_id", booking.UserID,
		"seats", booking.Seats,
		"total_price", booking.TotalPrice,
	)

	s.publishEvent(ctx, model.EventBookingCreated, booking, "")
	return booking, intent, nil
}

func (s *bookingService) compensateFailedSubmit(ctx context.Context, booking *model.Booking) {
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.CancelIfActive(sessCtx, booking.ID); err != nil {
			return err
		}
		return s.ledger.Restore(sessCtx, booking.SpaceID, booking.Seats)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to compensate booking after payment failure",
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (s *bookingService) loadDraft(actor *auth.Claims, id string) (*workflow.Draft, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Draft ID cannot be empty")
	}

	draft, err := s.drafts.Get(id)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Booking draft", id)
	}

	if draft.UserID != actor.UserID {
		return nil, apperrors.NotFoundWithID("Booking draft", id)
	}

	return draft, nil
}

func mapDraftError(err error) error {
	switch {
	case errors.Is(err, workflow.ErrInvalidDateRange),
		errors.Is(err, workflow.ErrStartInPast),
		errors.Is(err, workflow.ErrInvalidSeatCount),
		errors.Is(err, workflow.ErrDetailsMissing):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, workflow.ErrNotEditable),
		errors.Is(err, workflow.ErrAtFirstStage),
		errors.Is(err, workflow.ErrNotReadyToSubmit):
		return apperrors.Conflict(err.Error())
	case errors.Is(err, workflow.ErrDraftNotFound):
		return apperrors.NotFound("Booking draft")
	default:
		return apperrors.Internal("Draft operation failed", err)
	}
}
