package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	bookingserrors "silvalley/internal/bookings/errors"
	"silvalley/internal/bookings/validator"
	"silvalley/internal/bookings/workflow"
	"silvalley/pkg/auth"
	"silvalley/pkg/client"
	"silvalley/pkg/config"
	mongotx "silvalley/pkg/db/mongo"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/logger"
	"silvalley/pkg/model"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	createFunc         func(ctx context.Context, booking *model.Booking) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc        func(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	countFunc          func(ctx context.Context, filter *model.BookingFilter) (int64, error)
	updateStatusFunc   func(ctx context.Context, id string, from string, to string) error
	cancelIfActiveFunc func(ctx context.Context, id string) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "66b000000000000000000099"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) UpdateStatusFrom(ctx context.Context, id string, from string, to string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	return nil
}

func (m *mockBookingRepository) CancelIfActive(ctx context.Context, id string) error {
	if m.cancelIfActiveFunc != nil {
		return m.cancelIfActiveFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockSpaceLedger struct {
	getSpaceFunc  func(ctx context.Context, spaceID string) (*model.Space, error)
	decrementFunc func(ctx context.Context, spaceID string, seats int) error
	restoreFunc   func(ctx context.Context, spaceID string, seats int) error

	decrements int
	restores   int
}

func (m *mockSpaceLedger) GetSpace(ctx context.Context, spaceID string) (*model.Space, error) {
	if m.getSpaceFunc != nil {
		return m.getSpaceFunc(ctx, spaceID)
	}
	return &model.Space{
		ID:             spaceID,
		Name:           "Sunny Loft",
		Location:       "Tel Aviv",
		PricePerDay:    35,
		AvailableDesks: 12,
	}, nil
}

func (m *mockSpaceLedger) DecrementIfAvailable(ctx context.Context, spaceID string, seats int) error {
	m.decrements++
	if m.decrementFunc != nil {
		return m.decrementFunc(ctx, spaceID, seats)
	}
	return nil
}

func (m *mockSpaceLedger) Restore(ctx context.Context, spaceID string, seats int) error {
	m.restores++
	if m.restoreFunc != nil {
		return m.restoreFunc(ctx, spaceID, seats)
	}
	return nil
}

type capturedEvent struct {
	eventType string
	event     *model.BookingEvent
}

type mockPublisher struct {
	events []capturedEvent
}

func (m *mockPublisher) PublishBookingEvent(ctx context.Context, eventType string, event *model.BookingEvent) error {
	m.events = append(m.events, capturedEvent{eventType, event})
	return nil
}

type mockPayments struct {
	createIntentFunc func(req client.PaymentIntentRequest) (*client.PaymentIntent, error)
	requests         []client.PaymentIntentRequest
}

func (m *mockPayments) CreateIntent(req client.PaymentIntentRequest) (*client.PaymentIntent, error) {
	m.requests = append(m.requests, req)
	if m.createIntentFunc != nil {
		return m.createIntentFunc(req)
	}
	return &client.PaymentIntent{ID: "pi_1", ClientSecret: "secret_1", Status: "requires_payment_method"}, nil
}

type serviceFixture struct {
	repo      *mockBookingRepository
	ledger    *mockSpaceLedger
	drafts    *workflow.InMemoryDraftStore
	publisher *mockPublisher
	payments  *mockPayments
	svc       BookingService
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:     "info",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxSeatsPerBooking: 10,
	}

	f := &serviceFixture{
		repo:      &mockBookingRepository{},
		ledger:    &mockSpaceLedger{},
		drafts:    workflow.NewInMemoryDraftStore(time.Minute),
		publisher: &mockPublisher{},
		payments:  &mockPayments{},
	}
	t.Cleanup(f.drafts.Stop)

	f.svc = NewBookingService(f.repo, f.ledger, f.drafts, validator.NewBookingValidator(), f.publisher, f.payments, cfg)
	return f
}

func userClaims() *auth.Claims {
	return &auth.Claims{UserID: "user-1", Email: "user@example.com", Role: model.RoleUser}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: "admin-1", Email: "admin@example.com", Role: model.RoleAdmin}
}

func futureDay(d int) time.Time {
	return time.Now().UTC().AddDate(0, 1, d)
}

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:         "66b000000000000000000099",
		SpaceID:    "66b000000000000000000001",
		SpaceName:  "Sunny Loft",
		UserID:     "user-1",
		UserEmail:  "user@example.com",
		StartDate:  futureDay(1),
		EndDate:    futureDay(3),
		Seats:      2,
		TotalPrice: 210,
		Status:     model.StatusPending,
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_ComputesPriceServerSide(t *testing.T) {
	f := newFixture(t)

	var created *model.Booking
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		created = booking
		booking.ID = "66b000000000000000000099"
		return nil
	}

	booking := &model.Booking{
		SpaceID:    "66b000000000000000000001",
		StartDate:  futureDay(1),
		EndDate:    futureDay(3),
		Seats:      2,
		TotalPrice: 1, // client-supplied price must be ignored
	}

	if err := f.svc.Create(context.Background(), userClaims(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected booking to be persisted")
	}
	// 35 per day * 2 seats * 3 inclusive days
	if created.TotalPrice != 210 {
		t.Errorf("expected server-computed total 210, got %v", created.TotalPrice)
	}
	if created.SpaceName != "Sunny Loft" {
		t.Errorf("expected denormalized space name, got %q", created.SpaceName)
	}
	if created.UserID != "user-1" || created.UserEmail != "user@example.com" {
		t.Error("booking identity must come from the token, not the payload")
	}
	if created.Status != model.StatusPending {
		t.Errorf("new bookings must start pending, got %s", created.Status)
	}
}

func TestCreate_SoldOutLeavesNoRecord(t *testing.T) {
	f := newFixture(t)

	f.ledger.decrementFunc = func(ctx context.Context, spaceID string, seats int) error {
		return fmt.Errorf("%w: space %s", bookingserrors.ErrInsufficientAvailability, spaceID)
	}
	repoCalled := false
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		repoCalled = true
		return nil
	}

	booking := &model.Booking{
		SpaceID:   "66b000000000000000000001",
		StartDate: futureDay(1),
		EndDate:   futureDay(3),
		Seats:     5,
	}

	err := f.svc.Create(context.Background(), userClaims(), booking)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInsufficientAvailability {
		t.Errorf("expected %s, got %s", apperrors.CodeInsufficientAvailability, appErr.Code)
	}
	if repoCalled {
		t.Error("no booking record may be written when the decrement fails")
	}
	if len(f.publisher.events) != 0 {
		t.Error("no event may be published for a failed booking")
	}
}

func TestCreate_SeatCapEnforced(t *testing.T) {
	f := newFixture(t)

	booking := &model.Booking{
		SpaceID:   "66b000000000000000000001",
		StartDate: futureDay(1),
		EndDate:   futureDay(3),
		Seats:     11,
	}

	err := f.svc.Create(context.Background(), userClaims(), booking)
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
	if f.ledger.decrements != 0 {
		t.Error("ledger must not be touched for an oversized request")
	}
}

func TestCreate_PublishesCreatedEvent(t *testing.T) {
	f := newFixture(t)

	booking := &model.Booking{
		SpaceID:   "66b000000000000000000001",
		StartDate: futureDay(1),
		EndDate:   futureDay(3),
		Seats:     2,
	}

	if err := f.svc.Create(context.Background(), userClaims(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.publisher.events))
	}
	ev := f.publisher.events[0]
	if ev.eventType != model.EventBookingCreated {
		t.Errorf("expected %s, got %s", model.EventBookingCreated, ev.eventType)
	}
	if ev.event.Status != model.StatusPending {
		t.Errorf("expected pending status in event, got %s", ev.event.Status)
	}
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func TestCancel_RestoresSeatsOnce(t *testing.T) {
	f := newFixture(t)

	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}

	booking, err := f.svc.Cancel(context.Background(), userClaims(), "66b000000000000000000099")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s", booking.Status)
	}
	if f.ledger.restores != 1 {
		t.Errorf("expected exactly 1 restore, got %d", f.ledger.restores)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].eventType != model.EventBookingCancelled {
		t.Errorf("expected a cancelled event, got %+v", f.publisher.events)
	}
}

func TestCancel_RepeatedCancelConflicts(t *testing.T) {
	f := newFixture(t)

	cancelled := pendingBooking()
	cancelled.Status = model.StatusCancelled
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return cancelled, nil
	}
	f.repo.cancelIfActiveFunc = func(ctx context.Context, id string) error {
		return fmt.Errorf("%w: %s", bookingserrors.ErrAlreadyCancelled, id)
	}

	_, err := f.svc.Cancel(context.Background(), userClaims(), "66b000000000000000000099")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
	if f.ledger.restores != 0 {
		t.Errorf("a repeated cancel must not restore seats again, got %d restores", f.ledger.restores)
	}
}

func TestCancel_OtherUsersBookingHidden(t *testing.T) {
	f := newFixture(t)

	other := pendingBooking()
	other.UserID = "someone-else"
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return other, nil
	}

	_, err := f.svc.Cancel(context.Background(), userClaims(), "66b000000000000000000099")
	if err == nil {
		t.Fatal("expected error")
	}
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("foreign bookings must look like 404, got %v", err)
	}
}

func TestCancel_AdminMayCancelAnyBooking(t *testing.T) {
	f := newFixture(t)

	other := pendingBooking()
	other.UserID = "someone-else"
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return other, nil
	}

	if _, err := f.svc.Cancel(context.Background(), adminClaims(), "66b000000000000000000099"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ledger.restores != 1 {
		t.Errorf("expected 1 restore, got %d", f.ledger.restores)
	}
}

// ────────────────────────────────────────────────
// SetStatus / webhook confirmation
// ────────────────────────────────────────────────

func TestSetStatus_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	err := f.svc.SetStatus(context.Background(), userClaims(), "66b000000000000000000099", model.StatusActive)
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestSetStatus_CancellationRestoresSeats(t *testing.T) {
	f := newFixture(t)

	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}

	err := f.svc.SetStatus(context.Background(), adminClaims(), "66b000000000000000000099", model.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ledger.restores != 1 {
		t.Errorf("cancelling via status change must restore seats, got %d restores", f.ledger.restores)
	}
}

func TestSetStatus_InvalidStatusRejected(t *testing.T) {
	f := newFixture(t)

	err := f.svc.SetStatus(context.Background(), adminClaims(), "66b000000000000000000099", "paused")
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestConfirmFromWebhook(t *testing.T) {
	tests := []struct {
		name         string
		status       string
		wantErr      string
		wantUpdate   bool
		wantNewEvent bool
	}{
		{"pending is confirmed", model.StatusPending, "", true, true},
		{"already confirmed is a no-op", model.StatusConfirmed, "", false, false},
		{"cancelled conflicts", model.StatusCancelled, apperrors.CodeConflict, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			booking := pendingBooking()
			booking.Status = tt.status
			f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
				return booking, nil
			}
			updated := false
			f.repo.updateStatusFunc = func(ctx context.Context, id string, from string, to string) error {
				updated = true
				if from != model.StatusPending {
					t.Errorf("confirmation must be conditional on pending, got %s", from)
				}
				if to != model.StatusConfirmed {
					t.Errorf("expected confirmed, got %s", to)
				}
				return nil
			}

			err := f.svc.ConfirmFromWebhook(context.Background(), "66b000000000000000000099")
			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if apperrors.AsAppError(err).Code != tt.wantErr {
					t.Errorf("expected %s, got %v", tt.wantErr, err)
				}
			}
			if updated != tt.wantUpdate {
				t.Errorf("update called = %v, want %v", updated, tt.wantUpdate)
			}
			gotEvent := len(f.publisher.events) > 0
			if gotEvent != tt.wantNewEvent {
				t.Errorf("event published = %v, want %v", gotEvent, tt.wantNewEvent)
			}
		})
	}
}

func TestConfirmFromWebhook_CancelRacingWebhookStaysCancelled(t *testing.T) {
	f := newFixture(t)

	// The first read still sees pending; by the time the write lands the
	// booking has been cancelled, so the compare-and-set loses.
	reads := 0
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		reads++
		booking := pendingBooking()
		if reads > 1 {
			booking.Status = model.StatusCancelled
		}
		return booking, nil
	}
	f.repo.updateStatusFunc = func(ctx context.Context, id string, from string, to string) error {
		return fmt.Errorf("%w: %s is no longer %s", bookingserrors.ErrStatusChanged, id, from)
	}

	err := f.svc.ConfirmFromWebhook(context.Background(), "66b000000000000000000099")
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("a cancelled booking must stay cancelled, got %v", err)
	}
	for _, event := range f.publisher.events {
		if event.eventType == model.EventBookingConfirmed {
			t.Error("no confirmed event may be published when the cancel wins")
		}
	}
}

func TestConfirmFromWebhook_DuplicateDeliveryRaceIsNoOp(t *testing.T) {
	f := newFixture(t)

	// A duplicate delivery confirmed the booking between our read and write;
	// the retry must be acknowledged, not reported as a conflict.
	reads := 0
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		reads++
		booking := pendingBooking()
		if reads > 1 {
			booking.Status = model.StatusConfirmed
		}
		return booking, nil
	}
	f.repo.updateStatusFunc = func(ctx context.Context, id string, from string, to string) error {
		return fmt.Errorf("%w: %s is no longer %s", bookingserrors.ErrStatusChanged, id, from)
	}

	if err := f.svc.ConfirmFromWebhook(context.Background(), "66b000000000000000000099"); err != nil {
		t.Errorf("expected a no-op for an already-confirmed booking, got %v", err)
	}
}

func TestSetStatus_ConcurrentStatusChangeConflicts(t *testing.T) {
	f := newFixture(t)

	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return pendingBooking(), nil
	}
	f.repo.updateStatusFunc = func(ctx context.Context, id string, from string, to string) error {
		if from != model.StatusPending {
			t.Errorf("update must be conditional on the observed status, got %s", from)
		}
		return fmt.Errorf("%w: %s is no longer %s", bookingserrors.ErrStatusChanged, id, from)
	}

	err := f.svc.SetStatus(context.Background(), adminClaims(), "66b000000000000000000099", model.StatusActive)
	if apperrors.AsAppError(err).Code != apperrors.CodeConflict {
		t.Errorf("expected conflict when the status moved underneath, got %v", err)
	}
	if len(f.publisher.events) != 0 {
		t.Errorf("no event may be published for a lost status update, got %d", len(f.publisher.events))
	}
}

// ────────────────────────────────────────────────
// Access control on reads
// ────────────────────────────────────────────────

func TestGetByID_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)

	other := pendingBooking()
	other.UserID = "someone-else"
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return other, nil
	}

	if _, err := f.svc.GetByID(context.Background(), userClaims(), "66b000000000000000000099"); apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Errorf("expected not found for foreign booking, got %v", err)
	}

	if _, err := f.svc.GetByID(context.Background(), adminClaims(), "66b000000000000000000099"); err != nil {
		t.Errorf("admin must see any booking, got %v", err)
	}
}

func TestGetAll_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.GetAll(context.Background(), userClaims(), nil, 10, 0)
	if apperrors.AsAppError(err).Code != apperrors.CodeForbidden {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGetMine_ScopesToActor(t *testing.T) {
	f := newFixture(t)

	var captured *model.BookingFilter
	f.repo.findAllFunc = func(ctx context.Context, filter *model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
		captured = filter
		return []*model.Booking{}, nil
	}

	if _, _, err := f.svc.GetMine(context.Background(), userClaims(), 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == nil || captured.UserID != "user-1" {
		t.Errorf("expected filter scoped to user-1, got %+v", captured)
	}
}
