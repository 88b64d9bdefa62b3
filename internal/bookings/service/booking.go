package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "silvalley/internal/bookings/errors"
	"silvalley/internal/bookings/repository"
	"silvalley/internal/bookings/validator"
	"silvalley/internal/bookings/workflow"
	"silvalley/pkg/auth"
	"silvalley/pkg/client"
	"silvalley/pkg/config"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentGateway is the slice of the payment processor client the booking
// flow needs. Satisfied by client.PaymentClient.
type PaymentGateway interface {
	CreateIntent(req client.PaymentIntentRequest) (*client.PaymentIntent, error)
}

const paymentCurrency = "usd"

type BookingService interface {
	Create(ctx context.Context, actor *auth.Claims, booking *model.Booking) error
	GetByID(ctx context.Context, actor *auth.Claims, id string) (*model.Booking, error)
	GetAll(ctx context.Context, actor *auth.Claims, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	GetMine(ctx context.Context, actor *auth.Claims, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, actor *auth.Claims, id string) (*model.Booking, error)
	SetStatus(ctx context.Context, actor *auth.Claims, id string, status string) error
	ConfirmFromWebhook(ctx context.Context, bookingID string) error

	StartDraft(ctx context.Context, actor *auth.Claims, spaceID string) (*workflow.Draft, error)
	GetDraft(actor *auth.Claims, id string) (*workflow.Draft, error)
	SetDraftDates(ctx context.Context, actor *auth.Claims, id string, start, end time.Time) (*workflow.Draft, error)
	SetDraftSeats(ctx context.Context, actor *auth.Claims, id string, seats int) (*workflow.Draft, error)
	AdvanceDraft(actor *auth.Claims, id string) (*workflow.Draft, error)
	BackDraft(actor *auth.Claims, id string) (*workflow.Draft, error)
	SubmitDraft(ctx context.Context, actor *auth.Claims, id string) (*model.Booking, *client.PaymentIntent, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	ledger    repository.SpaceLedger
	drafts    workflow.DraftStore
	validator *validator.BookingValidator
	publisher EventPublisher
	payments  PaymentGateway
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	ledger repository.SpaceLedger,
	drafts workflow.DraftStore,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	payments PaymentGateway,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		ledger:    ledger,
		drafts:    drafts,
		validator: validator,
		publisher: publisher,
		payments:  payments,
		cfg:       cfg,
	}
}

// Create books seats directly, without the staged flow. The seat decrement
// and the record insert commit atomically; when the space runs out of desks
// between the client's availability check and this call, the conditional
// decrement fails and no record is written.
func (s *bookingService) Create(ctx context.Context, actor *auth.Claims, booking *model.Booking) error {
	if actor == nil {
		return apperrors.Unauthorized("Authentication required")
	}

	booking.UserID = actor.UserID
	booking.UserEmail = actor.Email
	booking.Status = model.StatusPending

	if booking.Seats > s.cfg.MaxSeatsPerBooking {
		return apperrors.InvalidInput(fmt.Sprintf(
			"at most %d seats can be booked at once", s.cfg.MaxSeatsPerBooking))
	}

	space, err := s.ledger.GetSpace(ctx, booking.SpaceID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrSpaceNotFound) {
			return apperrors.NotFoundWithID("Space", booking.SpaceID)
		}
		s.cfg.Log.Error("Failed to load space for booking",
			"space_id", booking.SpaceID,
			"error", err,
		)
		return apperrors.Internal("Failed to load space", err)
	}

	booking.SpaceName = space.Name
	booking.SpaceLocation = space.Location
	booking.TotalPrice = model.RoundPrice(
		space.PricePerDay * float64(booking.Seats) * float64(model.InclusiveDays(booking.StartDate, booking.EndDate)))

	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"space_id", booking.SpaceID,
			"user_id", booking.UserID,
			"error", err,
		)
		return apperrors.Validation("Booking validation failed", map[string]any{
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
			return apperrors.InsufficientAvailability(fmt.Sprintf(
				"space has fewer than %d desks available", booking.Seats))
		}
		s.cfg.Log.Error("Failed to create booking",
			"space_id", booking.SpaceID,
			"user_id", booking.UserID,
			"seats", booking.Seats,
			"error", err,
		)
		return apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"space_id", booking.SpaceID,
		"user_id", booking.UserID,
		"seats", booking.Seats,
		"total_price", booking.TotalPrice,
	)

	s.publishEvent(ctx, model.EventBookingCreated, booking, "")
	return nil
}

// GetByID returns the booking when the actor owns it or is an admin.
func (s *bookingService) GetByID(ctx context.Context, actor *auth.Claims, id string) (*model.Booking, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if booking.UserID != actor.UserID && actor.Role != model.RoleAdmin {
		// Hide other users' bookings entirely instead of revealing they exist.
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, actor *auth.Claims, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	if actor.Role != model.RoleAdmin {
		return nil, 0, apperrors.Forbidden("Admin access required")
	}

	if filter == nil {
		filter = &model.BookingFilter{}
	}
	if filter.Status != "" && !model.IsValidBookingStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status filter: %s", filter.Status))
	}

	return s.list(ctx, filter, limit, offset)
}

func (s *bookingService) GetMine(ctx context.Context, actor *auth.Claims, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	return s.list(ctx, &model.BookingFilter{UserID: actor.UserID}, limit, offset)
}

// Cancel releases the booked seats back to the space. The status flip and the
// seat restore commit atomically, and the compare-and-set on the status makes
// a repeated cancel a conflict instead of a double restore.
func (s *bookingService) Cancel(ctx context.Context, actor *auth.Claims, id string) (*model.Booking, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if booking.UserID != actor.UserID && actor.Role != model.RoleAdmin {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	previous := booking.Status

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.CancelIfActive(sessCtx, id); err != nil {
			return err
		}
		return s.ledger.Restore(sessCtx, booking.SpaceID, booking.Seats)
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrAlreadyCancelled) {
			return nil, apperrors.Conflict("Booking is already cancelled")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to cancel booking",
			"id", id,
			"user_id", actor.UserID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	booking.Status = model.StatusCancelled

	s.cfg.Log.Info("Booking cancelled",
		"id", id,
		"space_id", booking.SpaceID,
		"seats_restored", booking.Seats,
		"cancelled_by", actor.UserID,
	)

	s.publishEvent(ctx, model.EventBookingCancelled, booking, previous)
	return booking, nil
}

// SetStatus is the admin override for the booking lifecycle. Cancellation is
// routed through Cancel so the seat restore invariant holds no matter which
// path flips the status.
func (s *bookingService) SetStatus(ctx context.Context, actor *auth.Claims, id string, status string) error {
	if actor == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if actor.Role != model.RoleAdmin {
		return apperrors.Forbidden("Admin access required")
	}
	if !model.IsValidBookingStatus(status) {
		return apperrors.InvalidInput(fmt.Sprintf("invalid booking status: %s", status))
	}

	if status == model.StatusCancelled {
		_, err := s.Cancel(ctx, actor, id)
		return err
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	if booking.IsCancelled() {
		return apperrors.Conflict("Cancelled bookings cannot change status")
	}
	if booking.Status == status {
		return nil
	}

	previous := booking.Status
	if err := s.repo.UpdateStatusFrom(ctx, id, previous, status); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			// Someone cancelled or re-statused the booking between our read
			// and this write; the caller should re-inspect before retrying.
			s.cfg.Log.Warn("Booking status changed concurrently",
				"id", id,
				"observed", previous,
				"requested", status,
			)
			return apperrors.Conflict("Booking status changed, retry the request")
		}
		s.cfg.Log.Error("Failed to update booking status",
			"id", id,
			"status", status,
			"error", err,
		)
		return apperrors.Internal("Failed to update booking status", err)
	}

	booking.Status = status

	s.cfg.Log.Info("Booking status updated",
		"id", id,
		"previous", previous,
		"status", status,
		"updated_by", actor.UserID,
	)

	s.publishEvent(ctx, model.EventBookingStatus, booking, previous)
	return nil
}

// ConfirmFromWebhook marks a booking paid after the processor's signed
// callback. Repeated deliveries of the same webhook are no-ops.
func (s *bookingService) ConfirmFromWebhook(ctx context.Context, bookingID string) error {
	if bookingID == "" {
		return apperrors.InvalidInput("Webhook reference cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return s.mapLookupError(err, bookingID)
	}

	switch booking.Status {
	case model.StatusConfirmed:
		return nil
	case model.StatusPending:
	default:
		s.cfg.Log.Warn("Payment confirmation for a booking that is not pending",
			"id", bookingID,
			"status", booking.Status,
		)
		return apperrors.Conflict(fmt.Sprintf(
			"booking is %s and cannot be confirmed", booking.Status))
	}

	// The write is conditional on the booking still being pending, so a
	// cancellation racing the webhook wins and stays terminal.
	if err := s.repo.UpdateStatusFrom(ctx, bookingID, model.StatusPending, model.StatusConfirmed); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return s.classifyLostConfirm(ctx, bookingID)
		}
		s.cfg.Log.Error("Failed to confirm booking",
			"id", bookingID,
			"error", err,
		)
		return apperrors.Internal("Failed to confirm booking", err)
	}

	previous := booking.Status
	booking.Status = model.StatusConfirmed

	s.cfg.Log.Info("Booking confirmed by payment webhook", "id", bookingID)

	s.publishEvent(ctx, model.EventBookingConfirmed, booking, previous)
	return nil
}

// classifyLostConfirm re-reads a booking after a confirmation compare-and-set
// lost its race. A concurrent duplicate webhook already confirmed it (no-op);
// anything else, cancellation included, is a conflict.
func (s *bookingService) classifyLostConfirm(ctx context.Context, bookingID string) error {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return s.mapLookupError(err, bookingID)
	}

	if booking.Status == model.StatusConfirmed {
		return nil
	}

	s.cfg.Log.Warn("Payment confirmation lost the race to a status change",
		"id", bookingID,
		"status", booking.Status,
	)
	return apperrors.Conflict(fmt.Sprintf(
		"booking is %s and cannot be confirmed", booking.Status))
}

func (s *bookingService) list(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to count bookings", "error", err)
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	bookings, err := s.repo.FindAll(ctx, filter, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings",
			"limit", limit,
			"offset", offset,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return bookings, count, nil
}

func (s *bookingService) mapLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	s.cfg.Log.Error("Failed to load booking",
		"id", id,
		"error", err,
	)
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking, previous string) {
	event := &model.BookingEvent{
		BookingID:     booking.ID,
		SpaceID:       booking.SpaceID,
		SpaceName:     booking.SpaceName,
		UserID:        booking.UserID,
		UserEmail:     booking.UserEmail,
		StartDate:     booking.StartDate,
		EndDate:       booking.EndDate,
		Seats:         booking.Seats,
		TotalPrice:    booking.TotalPrice,
		Status:        booking.Status,
		PreviousState: previous,
	}

	// Failures are logged inside the publisher and land in the DLQ; the
	// booking operation itself has already committed.
	_ = s.publisher.PublishBookingEvent(ctx, eventType, event)
}
