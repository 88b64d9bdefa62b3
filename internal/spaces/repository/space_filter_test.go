package repository

import (
	"reflect"
	"testing"

	"silvalley/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestBuildSpaceFilter_Empty(t *testing.T) {
	tests := []struct {
		name   string
		filter *model.SpaceFilter
	}{
		{"nil filter", nil},
		{"zero filter", &model.SpaceFilter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSpaceFilter(tt.filter)
			if len(got) != 0 {
				t.Errorf("expected empty query, got %v", got)
			}
		})
	}
}

func TestBuildSpaceFilter_SearchMatchesNameOnly(t *testing.T) {
	got := buildSpaceFilter(&model.SpaceFilter{Search: "loft"})

	pattern, ok := got["name"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on name, got %v", got)
	}
	if pattern.Pattern != "loft" || pattern.Options != "i" {
		t.Errorf("unexpected regex %+v", pattern)
	}

	// The search must not widen to other text fields.
	if len(got) != 1 {
		t.Errorf("expected a single name clause, got %v", got)
	}
	if _, ok := got["$or"]; ok {
		t.Errorf("search must not produce an $or, got %v", got["$or"])
	}
	if _, ok := got["description"]; ok {
		t.Errorf("search must not match description, got %v", got["description"])
	}
}

func TestBuildSpaceFilter_SearchEscapesRegexMeta(t *testing.T) {
	got := buildSpaceFilter(&model.SpaceFilter{Search: "a+b (west)"})

	pattern := got["name"].(primitive.Regex)
	want := `a\+b \(west\)`
	if pattern.Pattern != want {
		t.Errorf("expected escaped pattern %q, got %q", want, pattern.Pattern)
	}
}

func TestBuildSpaceFilter_PriceRange(t *testing.T) {
	tests := []struct {
		name   string
		filter *model.SpaceFilter
		want   bson.M
	}{
		{
			name:   "min only",
			filter: &model.SpaceFilter{MinPrice: floatPtr(10)},
			want:   bson.M{"$gte": 10.0},
		},
		{
			name:   "max only",
			filter: &model.SpaceFilter{MaxPrice: floatPtr(50)},
			want:   bson.M{"$lte": 50.0},
		},
		{
			name:   "both bounds",
			filter: &model.SpaceFilter{MinPrice: floatPtr(10), MaxPrice: floatPtr(50)},
			want:   bson.M{"$gte": 10.0, "$lte": 50.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSpaceFilter(tt.filter)
			price, ok := got["price_per_day"].(bson.M)
			if !ok {
				t.Fatalf("expected price_per_day clause, got %v", got)
			}
			if !reflect.DeepEqual(price, tt.want) {
				t.Errorf("price clause = %v, want %v", price, tt.want)
			}
		})
	}
}

func TestBuildSpaceFilter_AmenitiesAreANDed(t *testing.T) {
	got := buildSpaceFilter(&model.SpaceFilter{
		Amenities: []string{model.AmenityWifi, model.AmenityParking},
	})

	if got["amenities.wifi"] != true {
		t.Errorf("expected amenities.wifi: true, got %v", got["amenities.wifi"])
	}
	if got["amenities.parking"] != true {
		t.Errorf("expected amenities.parking: true, got %v", got["amenities.parking"])
	}
	if len(got) != 2 {
		t.Errorf("expected exactly 2 clauses, got %v", got)
	}
}

func TestBuildSpaceFilter_CombinedCriteria(t *testing.T) {
	got := buildSpaceFilter(&model.SpaceFilter{
		Search:    "desk",
		Location:  "Tel Aviv",
		MinPrice:  floatPtr(20),
		Amenities: []string{model.AmenityKitchen},
	})

	for _, key := range []string{"name", "location", "price_per_day", "amenities.kitchen"} {
		if _, ok := got[key]; !ok {
			t.Errorf("expected %q clause in combined query %v", key, got)
		}
	}
}
