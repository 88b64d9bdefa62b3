package workflow

import (
	"errors"
	"testing"
	"time"

	"silvalley/pkg/model"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testSpace() *model.Space {
	return &model.Space{
		ID:             "66b000000000000000000001",
		Name:           "Sunny Loft",
		Location:       "Tel Aviv",
		PricePerDay:    35,
		AvailableDesks: 12,
	}
}

func day(d int) time.Time {
	return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC)
}

func completedDraft(t *testing.T) *Draft {
	t.Helper()
	draft := NewDraft("d1", "user-1", testSpace())
	if err := draft.SetDateRange(day(10), day(12), testNow); err != nil {
		t.Fatalf("SetDateRange: %v", err)
	}
	if err := draft.SetSeats(2, 10); err != nil {
		t.Fatalf("SetSeats: %v", err)
	}
	return draft
}

func TestNewDraft_StartsAtSelection(t *testing.T) {
	draft := NewDraft("d1", "user-1", testSpace())

	if draft.Stage != StageSelectingDetails {
		t.Errorf("expected stage %s, got %s", StageSelectingDetails, draft.Stage)
	}
	if draft.PricePerDay != 35 {
		t.Errorf("expected snapshotted price 35, got %v", draft.PricePerDay)
	}
	if draft.SpaceName != "Sunny Loft" {
		t.Errorf("expected snapshotted space name, got %q", draft.SpaceName)
	}
}

func TestSetDateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"valid range", day(10), day(12), nil},
		{"single day", day(10), day(10), nil},
		{"reversed range rejected", day(12), day(10), ErrInvalidDateRange},
		{"start in the past", day(1).Add(-24 * time.Hour), day(10), ErrStartInPast},
		{"start today is allowed", day(1), day(2), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewDraft("d1", "user-1", testSpace())
			err := draft.SetDateRange(tt.start, tt.end, testNow)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSetSeats(t *testing.T) {
	tests := []struct {
		name    string
		seats   int
		limit   int
		wantErr bool
	}{
		{"within limit", 3, 10, false},
		{"exactly at limit", 10, 10, false},
		{"zero seats", 0, 10, true},
		{"negative seats", -1, 10, true},
		{"above limit", 11, 10, true},
		{"limit squeezed by availability", 5, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewDraft("d1", "user-1", testSpace())
			err := draft.SetSeats(tt.seats, tt.limit)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAdvance_FullFlow(t *testing.T) {
	draft := completedDraft(t)

	if err := draft.Advance(); err != nil {
		t.Fatalf("advance to review: %v", err)
	}
	if draft.Stage != StageReviewingBooking {
		t.Fatalf("expected %s, got %s", StageReviewingBooking, draft.Stage)
	}
	// 35 per day * 2 seats * 3 inclusive days
	if draft.TotalPrice != 210 {
		t.Errorf("expected total 210, got %v", draft.TotalPrice)
	}

	if err := draft.Advance(); err != nil {
		t.Fatalf("advance to payment: %v", err)
	}
	if draft.Stage != StageConfirmingPayment {
		t.Fatalf("expected %s, got %s", StageConfirmingPayment, draft.Stage)
	}
	if !draft.ReadyToSubmit() {
		t.Error("expected draft to be ready for submission")
	}

	if err := draft.Advance(); !errors.Is(err, ErrNotReadyToSubmit) {
		t.Errorf("expected %v at final stage, got %v", ErrNotReadyToSubmit, err)
	}
}

func TestAdvance_RequiresCompleteDetails(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *Draft)
	}{
		{"nothing set", func(d *Draft) {}},
		{"only dates", func(d *Draft) {
			if err := d.SetDateRange(day(10), day(12), testNow); err != nil {
				t.Fatal(err)
			}
		}},
		{"only seats", func(d *Draft) {
			if err := d.SetSeats(2, 10); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewDraft("d1", "user-1", testSpace())
			tt.setup(draft)
			if err := draft.Advance(); !errors.Is(err, ErrDetailsMissing) {
				t.Errorf("expected %v, got %v", ErrDetailsMissing, err)
			}
		})
	}
}

func TestBack_KeepsDetails(t *testing.T) {
	draft := completedDraft(t)
	if err := draft.Advance(); err != nil {
		t.Fatal(err)
	}
	if err := draft.Advance(); err != nil {
		t.Fatal(err)
	}

	if err := draft.Back(); err != nil {
		t.Fatalf("back to review: %v", err)
	}
	if draft.Stage != StageReviewingBooking {
		t.Fatalf("expected %s, got %s", StageReviewingBooking, draft.Stage)
	}

	if err := draft.Back(); err != nil {
		t.Fatalf("back to selection: %v", err)
	}
	if draft.Stage != StageSelectingDetails {
		t.Fatalf("expected %s, got %s", StageSelectingDetails, draft.Stage)
	}
	if draft.Seats != 2 || draft.StartDate.IsZero() {
		t.Error("going back must keep the selected details")
	}

	if err := draft.Back(); !errors.Is(err, ErrAtFirstStage) {
		t.Errorf("expected %v, got %v", ErrAtFirstStage, err)
	}
}

func TestEditsLockedOutsideSelection(t *testing.T) {
	draft := completedDraft(t)
	if err := draft.Advance(); err != nil {
		t.Fatal(err)
	}

	if err := draft.SetDateRange(day(11), day(13), testNow); !errors.Is(err, ErrNotEditable) {
		t.Errorf("expected %v for date edit in review, got %v", ErrNotEditable, err)
	}
	if err := draft.SetSeats(4, 10); !errors.Is(err, ErrNotEditable) {
		t.Errorf("expected %v for seat edit in review, got %v", ErrNotEditable, err)
	}
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		seats int
		price float64
		want  float64
	}{
		{"single day single seat", day(10), day(10), 1, 35, 35},
		{"three days two seats", day(10), day(12), 2, 35, 210},
		{"fractional price rounds to cents", day(10), day(11), 3, 33.333, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space := testSpace()
			space.PricePerDay = tt.price
			draft := NewDraft("d1", "user-1", space)
			if err := draft.SetDateRange(tt.start, tt.end, testNow); err != nil {
				t.Fatal(err)
			}
			if err := draft.SetSeats(tt.seats, 10); err != nil {
				t.Fatal(err)
			}
			got := draft.ComputeTotal()
			if got != tt.want {
				t.Errorf("ComputeTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToBooking(t *testing.T) {
	draft := completedDraft(t)
	if err := draft.Advance(); err != nil {
		t.Fatal(err)
	}
	if err := draft.Advance(); err != nil {
		t.Fatal(err)
	}

	booking := draft.ToBooking("user@example.com")

	if booking.Status != model.StatusPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
	if booking.SpaceID != draft.SpaceID || booking.UserID != draft.UserID {
		t.Error("booking must carry the draft's space and user")
	}
	if booking.UserEmail != "user@example.com" {
		t.Errorf("unexpected email %q", booking.UserEmail)
	}
	if booking.TotalPrice != 210 {
		t.Errorf("expected total 210, got %v", booking.TotalPrice)
	}
	if booking.Seats != 2 {
		t.Errorf("expected 2 seats, got %d", booking.Seats)
	}
}
