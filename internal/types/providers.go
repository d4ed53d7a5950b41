package types

import "time"

// FlightOption is the common return shape of the flight adapter and its
// estimate fallback, so callers never branch on provider availability.
type FlightOption struct {
	Price      float64     `json:"price"` // USD, whole party
	Airline    string      `json:"airline"`
	Stops      int         `json:"stops"`
	Duration   string      `json:"duration,omitempty"`
	BookingURL string      `json:"booking_url,omitempty"`
	Source     PriceSource `json:"source"`
	Err        error       `json:"-"`
}

type HotelOption struct {
	PricePerNight float64     `json:"price_per_night"` // USD
	TotalPrice    float64     `json:"total_price"`     // USD, whole stay
	Name          string      `json:"name"`
	Rating        float64     `json:"rating"`
	Location      string      `json:"location,omitempty"`
	BookingURL    string      `json:"booking_url,omitempty"`
	Source        PriceSource `json:"source"`
	Err           error       `json:"-"`
}

type ExchangeRates struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
	Source    PriceSource        `json:"source"` // api when fetched live, estimate for the static table
}

// VisaRequirementKind follows the passport-index dataset vocabulary.
type VisaRequirementKind string

const (
	VisaFree        VisaRequirementKind = "visa_free"
	VisaOnArrival   VisaRequirementKind = "visa_on_arrival"
	VisaEVisa       VisaRequirementKind = "e_visa"
	VisaRequired    VisaRequirementKind = "visa_required"
	VisaNoAdmission VisaRequirementKind = "no_admission"
)

type VisaSource string

const (
	VisaSourceCurated       VisaSource = "curated"
	VisaSourcePassportIndex VisaSource = "passport_index"
	VisaSourceAPI           VisaSource = "api"
)

// VisaRequirement describes one corridor (passport country, destination country).
type VisaRequirement struct {
	Passport    string              `json:"passport"`
	Destination string              `json:"destination"`
	Requirement VisaRequirementKind `json:"requirement"`
	AllowedDays int                 `json:"allowed_days,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Source      VisaSource          `json:"source"`
}

// GenAIItineraryResult is the worker result shape for the itinerary fan-out.
type GenAIItineraryResult struct {
	Days      []ItineraryDay
	FromCache bool
	Err       error
}
