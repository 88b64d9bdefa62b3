package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "duplicates collapse after normalization",
			input: []string{"WiFi", "wifi", " wi-fi "},
			want:  []string{"wifi", "wi_fi"},
		},
		{
			name:  "empties dropped",
			input: []string{"", "   ", "parking"},
			want:  []string{"parking"},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
		{
			name:  "order preserved",
			input: []string{"coffee", "parking", "lockers"},
			want:  []string{"coffee", "parking", "lockers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmenities(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeAmenities(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
