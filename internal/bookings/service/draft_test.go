package service

import (
	"context"
	"fmt"
	"testing"

	bookingserrors "silvalley/internal/bookings/errors"
	"silvalley/internal/bookings/workflow"
	"silvalley/pkg/auth"
	"silvalley/pkg/client"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/model"
)

func (f *serviceFixture) draftAtPaymentStage(t *testing.T, actor *auth.Claims) *workflow.Draft {
	t.Helper()
	ctx := context.Background()

	draft, err := f.svc.StartDraft(ctx, actor, "66b000000000000000000001")
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}
	if _, err := f.svc.SetDraftDates(ctx, actor, draft.ID, futureDay(1), futureDay(3)); err != nil {
		t.Fatalf("SetDraftDates: %v", err)
	}
	if _, err := f.svc.SetDraftSeats(ctx, actor, draft.ID, 2); err != nil {
		t.Fatalf("SetDraftSeats: %v", err)
	}
	if _, err := f.svc.AdvanceDraft(actor, draft.ID); err != nil {
		t.Fatalf("AdvanceDraft to review: %v", err)
	}
	if _, err := f.svc.AdvanceDraft(actor, draft.ID); err != nil {
		t.Fatalf("AdvanceDraft to payment: %v", err)
	}
	return draft
}

func TestStartDraft_SoldOutSpace(t *testing.T) {
	f := newFixture(t)

	f.ledger.getSpaceFunc = func(ctx context.Context, spaceID string) (*model.Space, error) {
		return &model.Space{ID: spaceID, Name: "Full House", PricePerDay: 20, AvailableDesks: 0}, nil
	}

	_, err := f.svc.StartDraft(context.Background(), userClaims(), "66b000000000000000000001")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInsufficientAvailability {
		t.Errorf("expected insufficient availability, got %v", err)
	}
}

func TestStartDraft_UnknownSpace(t *testing.T) {
	f := newFixture(t)

	f.ledger.getSpaceFunc = func(ctx context.Context, spaceID string) (*model.Space, error) {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrSpaceNotFound, spaceID)
	}

	_, err := f.svc.StartDraft(context.Background(), userClaims(), "66b000000000000000000001")
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDraft_HiddenFromOtherUsers(t *testing.T) {
	f := newFixture(t)

	draft, err := f.svc.StartDraft(context.Background(), userClaims(), "66b000000000000000000001")
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}

	other := &auth.Claims{UserID: "user-2", Email: "other@example.com", Role: model.RoleUser}
	if _, err := f.svc.GetDraft(other, draft.ID); apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected not found for foreign draft, got %v", err)
	}
}

func TestSetDraftSeats_CappedByAvailability(t *testing.T) {
	f := newFixture(t)

	// MaxSeatsPerBooking is 10 but the space only has 4 desks free.
	f.ledger.getSpaceFunc = func(ctx context.Context, spaceID string) (*model.Space, error) {
		return &model.Space{ID: spaceID, Name: "Small Room", PricePerDay: 20, AvailableDesks: 4}, nil
	}

	actor := userClaims()
	draft, err := f.svc.StartDraft(context.Background(), actor, "66b000000000000000000001")
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}

	if _, err := f.svc.SetDraftSeats(context.Background(), actor, draft.ID, 5); err == nil {
		t.Fatal("expected seat request above availability to fail")
	}
	if _, err := f.svc.SetDraftSeats(context.Background(), actor, draft.ID, 4); err != nil {
		t.Fatalf("seat request at availability must pass, got %v", err)
	}
}

func TestSubmitDraft_HappyPath(t *testing.T) {
	f := newFixture(t)
	actor := userClaims()
	draft := f.draftAtPaymentStage(t, actor)

	booking, intent, err := f.svc.SubmitDraft(context.Background(), actor, draft.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusPending {
		t.Errorf("expected pending booking, got %s", booking.Status)
	}
	// 35 per day * 2 seats * 3 inclusive days
	if booking.TotalPrice != 210 {
		t.Errorf("expected total 210, got %v", booking.TotalPrice)
	}
	if intent.ClientSecret == "" {
		t.Error("expected a payment client secret")
	}
	if len(f.payments.requests) != 1 {
		t.Fatalf("expected 1 intent request, got %d", len(f.payments.requests))
	}
	req := f.payments.requests[0]
	if req.Amount != booking.TotalPrice {
		t.Errorf("intent amount %v must match booking total %v", req.Amount, booking.TotalPrice)
	}
	if req.Reference != booking.ID {
		t.Errorf("intent reference %q must be the booking ID %q", req.Reference, booking.ID)
	}

	if f.ledger.decrements != 1 {
		t.Errorf("expected 1 seat decrement, got %d", f.ledger.decrements)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].eventType != model.EventBookingCreated {
		t.Errorf("expected a created event, got %+v", f.publisher.events)
	}

	if _, err := f.svc.GetDraft(actor, draft.ID); apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Error("draft must be discarded after submission")
	}
}

func TestSubmitDraft_BeforePaymentStage(t *testing.T) {
	f := newFixture(t)
	actor := userClaims()
	ctx := context.Background()

	draft, err := f.svc.StartDraft(ctx, actor, "66b000000000000000000001")
	if err != nil {
		t.Fatalf("StartDraft: %v", err)
	}

	_, _, err = f.svc.SubmitDraft(ctx, actor, draft.ID)
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected conflict before the payment stage, got %v", err)
	}
	if f.ledger.decrements != 0 {
		t.Error("no seats may move for an unsubmittable draft")
	}
}

func TestSubmitDraft_SoldOutBetweenReviewAndSubmit(t *testing.T) {
	f := newFixture(t)
	actor := userClaims()
	draft := f.draftAtPaymentStage(t, actor)

	f.ledger.decrementFunc = func(ctx context.Context, spaceID string, seats int) error {
		return fmt.Errorf("%w: space %s", bookingserrors.ErrInsufficientAvailability, spaceID)
	}
	repoCalled := false
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		repoCalled = true
		return nil
	}

	_, _, err := f.svc.SubmitDraft(context.Background(), actor, draft.ID)
	if apperrors.AsAppError(err).Code != apperrors.CodeInsufficientAvailability {
		t.Errorf("expected insufficient availability, got %v", err)
	}
	if repoCalled {
		t.Error("no record may be written when the decrement fails")
	}
	if len(f.payments.requests) != 0 {
		t.Error("no payment intent may be opened for a failed submission")
	}

	if _, err := f.svc.GetDraft(actor, draft.ID); err != nil {
		t.Error("draft must survive a failed submission so the user can retry")
	}
}

func TestSubmitDraft_PaymentFailureCompensates(t *testing.T) {
	f := newFixture(t)
	actor := userClaims()
	draft := f.draftAtPaymentStage(t, actor)

	f.payments.createIntentFunc = func(req client.PaymentIntentRequest) (*client.PaymentIntent, error) {
		return nil, fmt.Errorf("processor down")
	}
	cancelCalled := false
	f.repo.cancelIfActiveFunc = func(ctx context.Context, id string) error {
		cancelCalled = true
		return nil
	}

	_, _, err := f.svc.SubmitDraft(context.Background(), actor, draft.ID)
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeUnavailable {
		t.Errorf("expected service unavailable, got %v", err)
	}
	if !cancelCalled {
		t.Error("the booking must be cancelled when the intent cannot be opened")
	}
	if f.ledger.restores != 1 {
		t.Errorf("expected the seats back after compensation, got %d restores", f.ledger.restores)
	}
}
