package model

import (
	"time"
)

// Availability buckets surfaced to clients. A space with a handful of desks
// left is flagged so the booking flow can warn before the ledger runs dry.
const (
	AvailabilitySoldOut   = "sold_out"
	AvailabilityLow       = "low"
	AvailabilityAvailable = "available"

	LowAvailabilityThreshold = 3
)

// Amenity flag names accepted by catalog filters.
const (
	AmenityWifi            = "wifi"
	AmenityKitchen         = "kitchen"
	AmenityMeetingRooms    = "meeting_rooms"
	AmenityAccess24x7      = "access_24_7"
	AmenityParking         = "parking"
	AmenityPrinting        = "printing"
	AmenitySecurity        = "security"
	AmenityAirConditioning = "air_conditioning"
)

var AmenityNames = []string{
	AmenityWifi,
	AmenityKitchen,
	AmenityMeetingRooms,
	AmenityAccess24x7,
	AmenityParking,
	AmenityPrinting,
	AmenitySecurity,
	AmenityAirConditioning,
}

type Amenities struct {
	Wifi            bool `json:"wifi" bson:"wifi"`
	Kitchen         bool `json:"kitchen" bson:"kitchen"`
	MeetingRooms    bool `json:"meeting_rooms" bson:"meeting_rooms"`
	Access24x7      bool `json:"access_24_7" bson:"access_24_7"`
	Parking         bool `json:"parking" bson:"parking"`
	Printing        bool `json:"printing" bson:"printing"`
	Security        bool `json:"security" bson:"security"`
	AirConditioning bool `json:"air_conditioning" bson:"air_conditioning"`
}

// Has reports whether the named amenity flag is set. Unknown names are false.
func (a Amenities) Has(name string) bool {
	switch name {
	case AmenityWifi:
		return a.Wifi
	case AmenityKitchen:
		return a.Kitchen
	case AmenityMeetingRooms:
		return a.MeetingRooms
	case AmenityAccess24x7:
		return a.Access24x7
	case AmenityParking:
		return a.Parking
	case AmenityPrinting:
		return a.Printing
	case AmenitySecurity:
		return a.Security
	case AmenityAirConditioning:
		return a.AirConditioning
	}
	return false
}

type Space struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location       string    `json:"location" bson:"location" validate:"required,min=2,max=100"`
	Description    string    `json:"description" bson:"description" validate:"omitempty,max=2000"`
	PricePerDay    float64   `json:"price_per_day" bson:"price_per_day" validate:"gte=0"`
	AvailableDesks int       `json:"available_desks" bson:"available_desks" validate:"gte=0"`
	Amenities      Amenities `json:"amenities" bson:"amenities"`
	Rating         float64   `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	ReviewCount    int       `json:"review_count" bson:"review_count" validate:"gte=0"`
	ImageURL       string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`

	// Availability is derived from AvailableDesks on the way out and never
	// persisted.
	Availability string `json:"availability_status,omitempty" bson:"-"`
}

func (s *Space) AvailabilityStatus() string {
	switch {
	case s.AvailableDesks <= 0:
		return AvailabilitySoldOut
	case s.AvailableDesks <= LowAvailabilityThreshold:
		return AvailabilityLow
	default:
		return AvailabilityAvailable
	}
}

type SpaceUpdate struct {
	Name           string     `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location       string     `json:"location,omitempty" validate:"omitempty,min=2,max=100"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	PricePerDay    *float64   `json:"price_per_day,omitempty" validate:"omitempty,gte=0"`
	AvailableDesks *int       `json:"available_desks,omitempty" validate:"omitempty,gte=0"`
	Amenities      *Amenities `json:"amenities,omitempty"`
	Rating         *float64   `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	ReviewCount    *int       `json:"review_count,omitempty" validate:"omitempty,gte=0"`
	ImageURL       *string    `json:"image_url,omitempty" validate:"omitempty,url"`
}

// SpaceFilter narrows catalog listings. Categories compose with logical AND;
// the amenity set itself is an AND over every named flag, not an OR.
type SpaceFilter struct {
	Search    string
	Location  string
	MinPrice  *float64
	MaxPrice  *float64
	Amenities []string
}

func (f *SpaceFilter) IsZero() bool {
	return f == nil ||
		(f.Search == "" && f.Location == "" && f.MinPrice == nil && f.MaxPrice == nil && len(f.Amenities) == 0)
}
