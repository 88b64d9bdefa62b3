package validator

import (
	"testing"

	"silvalley/pkg/model"
)

func validSpace() *model.Space {
	return &model.Space{
		Name:           "Sunny Loft",
		Location:       "Tel Aviv",
		Description:    "Bright space near the beach",
		PricePerDay:    35,
		AvailableDesks: 12,
		Rating:         4.5,
		ReviewCount:    20,
		ImageURL:       "https://example.com/loft.jpg",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *model.Space)
		wantErr bool
	}{
		{
			name:    "valid space",
			mutate:  func(s *model.Space) {},
			wantErr: false,
		},
		{
			name:    "missing name",
			mutate:  func(s *model.Space) { s.Name = "" },
			wantErr: true,
		},
		{
			name:    "name too short",
			mutate:  func(s *model.Space) { s.Name = "A" },
			wantErr: true,
		},
		{
			name:    "missing location",
			mutate:  func(s *model.Space) { s.Location = "" },
			wantErr: true,
		},
		{
			name:    "negative price",
			mutate:  func(s *model.Space) { s.PricePerDay = -1 },
			wantErr: true,
		},
		{
			name:    "negative desks",
			mutate:  func(s *model.Space) { s.AvailableDesks = -1 },
			wantErr: true,
		},
		{
			name:    "rating above five",
			mutate:  func(s *model.Space) { s.Rating = 5.5 },
			wantErr: true,
		},
		{
			name:    "rating without reviews",
			mutate:  func(s *model.Space) { s.ReviewCount = 0 },
			wantErr: true,
		},
		{
			name:    "invalid image url",
			mutate:  func(s *model.Space) { s.ImageURL = "not a url" },
			wantErr: true,
		},
		{
			name:    "empty optional fields",
			mutate:  func(s *model.Space) { s.Description = ""; s.ImageURL = ""; s.Rating = 0; s.ReviewCount = 0 },
			wantErr: false,
		},
	}

	v := NewSpaceValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			space := validSpace()
			tt.mutate(space)
			err := v.Validate(space)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidate_ErrorsCarryFieldNames(t *testing.T) {
	v := NewSpaceValidator()

	err := v.Validate(&model.Space{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	validationErrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	fields := make(map[string]bool)
	for _, ve := range validationErrs {
		fields[ve.Field] = true
	}
	if !fields["Name"] || !fields["Location"] {
		t.Errorf("expected Name and Location failures, got %v", validationErrs)
	}
}
