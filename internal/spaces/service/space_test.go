package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	spaceserrors "silvalley/internal/spaces/errors"
	"silvalley/internal/spaces/validator"
	"silvalley/pkg/config"
	mongotx "silvalley/pkg/db/mongo"
	apperrors "silvalley/pkg/errors"
	"silvalley/pkg/logger"
	"silvalley/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockSpaceRepository struct {
	createFunc   func(ctx context.Context, space *model.Space) error
	findByIDFunc func(ctx context.Context, id string) (*model.Space, error)
	findAllFunc  func(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, error)
	countFunc    func(ctx context.Context, filter *model.SpaceFilter) (int64, error)
}

func (m *mockSpaceRepository) Create(ctx context.Context, space *model.Space) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, space)
	}
	return nil
}

func (m *mockSpaceRepository) FindByID(ctx context.Context, id string) (*model.Space, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockSpaceRepository) FindAll(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Space{}, nil
}

func (m *mockSpaceRepository) Count(ctx context.Context, filter *model.SpaceFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockSpaceRepository) Update(ctx context.Context, id string, space *model.Space) (*mongo.UpdateResult, error) {
	return nil, nil
}

func (m *mockSpaceRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockSpaceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "info",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestCreate_SanitizesAndValidates(t *testing.T) {
	var created *model.Space
	mockRepo := &mockSpaceRepository{
		createFunc: func(ctx context.Context, space *model.Space) error {
			created = space
			return nil
		},
	}

	svc := NewSpaceService(mockRepo, validator.NewSpaceValidator(), testConfig())

	space := &model.Space{
		Name:           "  Sunny   Loft  ",
		Location:       " Tel  Aviv ",
		PricePerDay:    35,
		AvailableDesks: 12,
	}

	if err := svc.Create(context.Background(), space); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if created.Name != "Sunny Loft" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
	if created.Location != "Tel Aviv" {
		t.Errorf("expected normalized location, got %q", created.Location)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	mockRepo := &mockSpaceRepository{
		createFunc: func(ctx context.Context, space *model.Space) error {
			t.Error("repository should not be called when validation fails")
			return nil
		},
	}

	svc := NewSpaceService(mockRepo, validator.NewSpaceValidator(), testConfig())

	err := svc.Create(context.Background(), &model.Space{Name: "X"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestGetByID_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repoErr  error
		wantCode string
	}{
		{
			name:     "empty id",
			id:       "",
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "not found",
			id:       "66b000000000000000000001",
			repoErr:  fmt.Errorf("%w: 66b000000000000000000001", spaceserrors.ErrNotFound),
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "invalid id format",
			id:       "not-an-oid",
			repoErr:  fmt.Errorf("%w: not-an-oid", spaceserrors.ErrInvalidID),
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "repository failure",
			id:       "66b000000000000000000001",
			repoErr:  fmt.Errorf("connection reset"),
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockSpaceRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Space, error) {
					return nil, tt.repoErr
				},
			}
			svc := NewSpaceService(mockRepo, validator.NewSpaceValidator(), testConfig())

			_, err := svc.GetByID(context.Background(), tt.id)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, appErr.Code)
			}
		})
	}
}

func TestGetByID_EnrichesAvailability(t *testing.T) {
	mockRepo := &mockSpaceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Space, error) {
			return &model.Space{ID: id, Name: "Loft", AvailableDesks: 2}, nil
		},
	}
	svc := NewSpaceService(mockRepo, validator.NewSpaceValidator(), testConfig())

	space, err := svc.GetByID(context.Background(), "66b000000000000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if space.Availability != model.AvailabilityLow {
		t.Errorf("expected %s, got %s", model.AvailabilityLow, space.Availability)
	}
}

func TestGetAll_FilterValidation(t *testing.T) {
	tests := []struct {
		name   string
		filter *model.SpaceFilter
	}{
		{
			name:   "min exceeds max",
			filter: &model.SpaceFilter{MinPrice: floatPtr(50), MaxPrice: floatPtr(10)},
		},
		{
			name:   "negative min price",
			filter: &model.SpaceFilter{MinPrice: floatPtr(-1)},
		},
		{
			name:   "unknown amenity",
			filter: &model.SpaceFilter{Amenities: []string{"helipad"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockSpaceRepository{
				findAllFunc: func(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, error) {
					t.Error("repository should not be called for an invalid filter")
					return nil, nil
				},
			}
			svc := NewSpaceService(mockRepo, validator.NewSpaceValidator(), testConfig())

			_, _, err := svc.GetAll(context.Background(), tt.filter, 10, 0)
			if err == nil {
				t.Fatal("expected error")
			}
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
			}
		})
	}
}

func TestGetAll_NormalizesAmenityLabels(t *testing.T) {
	var captured *model.SpaceFilter
	mockRepo := &mockSpaceRepository{
		findAllFunc: func(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, error) {
			captured = filter
			return []*model.Space{}, nil
		},
	}
	svc := NewSpaceService(mockRepo, validator.NewSpaceValidator(), testConfig())

	_, _, err := svc.GetAll(context.Background(), &model.SpaceFilter{
		Amenities: []string{"Meeting Rooms", "WIFI"},
	}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured == nil {
		t.Fatal("expected repository FindAll to be called")
	}
	want := []string{model.AmenityMeetingRooms, model.AmenityWifi}
	if len(captured.Amenities) != len(want) {
		t.Fatalf("expected %v, got %v", want, captured.Amenities)
	}
	for i := range want {
		if captured.Amenities[i] != want[i] {
			t.Errorf("amenity[%d] = %q, want %q", i, captured.Amenities[i], want[i])
		}
	}
}

func TestGetAll_EnrichesAvailability(t *testing.T) {
	mockRepo := &mockSpaceRepository{
		countFunc: func(ctx context.Context, filter *model.SpaceFilter) (int64, error) {
			return 3, nil
		},
		findAllFunc: func(ctx context.Context, filter *model.SpaceFilter, limit int, offset int64) ([]*model.Space, error) {
			return []*model.Space{
				{ID: "1", AvailableDesks: 0},
				{ID: "2", AvailableDesks: 3},
				{ID: "3", AvailableDesks: 10},
			}, nil
		},
	}
	svc := NewSpaceService(mockRepo, validator.NewSpaceValidator(), testConfig())

	spaces, total, err := svc.GetAll(context.Background(), nil, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	wantStatuses := []string{model.AvailabilitySoldOut, model.AvailabilityLow, model.AvailabilityAvailable}
	for i, space := range spaces {
		if space.Availability != wantStatuses[i] {
			t.Errorf("space %s availability = %q, want %q", space.ID, space.Availability, wantStatuses[i])
		}
	}
}

func TestUpdate_MergePreservesIdentity(t *testing.T) {
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	existing := &model.Space{
		ID:             "66b000000000000000000001",
		Name:           "Old Name",
		Location:       "Haifa",
		PricePerDay:    20,
		AvailableDesks: 5,
		CreatedAt:      createdAt,
	}

	svc := &spaceService{cfg: testConfig()}

	merged := svc.mergeSpaceUpdates(existing, &model.SpaceUpdate{
		Name:        "New Name",
		PricePerDay: floatPtr(25),
	})

	if merged.ID != existing.ID {
		t.Errorf("merge must not change ID, got %s", merged.ID)
	}
	if !merged.CreatedAt.Equal(createdAt) {
		t.Errorf("merge must not change CreatedAt, got %v", merged.CreatedAt)
	}
	if merged.Name != "New Name" {
		t.Errorf("expected updated name, got %q", merged.Name)
	}
	if merged.PricePerDay != 25 {
		t.Errorf("expected updated price, got %v", merged.PricePerDay)
	}
	if merged.Location != "Haifa" {
		t.Errorf("unset fields must be preserved, got %q", merged.Location)
	}
}
