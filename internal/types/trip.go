package types

import (
	"time"

	"github.com/google/uuid"
)

type TravelStyle string

const (
	TravelStyleBudget   TravelStyle = "budget"
	TravelStyleStandard TravelStyle = "standard"
	TravelStyleLuxury   TravelStyle = "luxury"
	TravelStyleCustom   TravelStyle = "custom"
)

type FeasibilityStatus string

const (
	FeasibilityPending FeasibilityStatus = "pending"
	FeasibilityYes     FeasibilityStatus = "yes"
	FeasibilityWarning FeasibilityStatus = "warning"
	FeasibilityNo      FeasibilityStatus = "no"
)

type ItineraryStatus string

const (
	ItineraryIdle       ItineraryStatus = "idle"
	ItineraryGenerating ItineraryStatus = "generating"
	ItineraryComplete   ItineraryStatus = "complete"
	ItineraryError      ItineraryStatus = "error"
)

// Trip is the central aggregate. Derived fields (feasibility, itinerary, lock
// metadata) are owned by the background processor, not the client.
type Trip struct {
	ID               int64       `json:"id"`
	VoyageUID        *uuid.UUID  `json:"voyage_uid,omitempty"` // anonymous owner; nil trips may be adopted later
	PassportCountry  string      `json:"passport_country"`
	ResidenceCountry string      `json:"residence_country,omitempty"`
	OriginCity       string      `json:"origin_city"`
	DestinationCity  string      `json:"destination_city"`
	DestinationImage string      `json:"destination_image,omitempty"`
	DateRange        string      `json:"date_range"`
	Currency         string      `json:"currency"`
	Budget           float64     `json:"budget"`
	Adults           int         `json:"adults"`
	Children         int         `json:"children"`
	Infants          int         `json:"infants"`
	TravelStyle      TravelStyle `json:"travel_style"`

	FeasibilityStatus FeasibilityStatus  `json:"feasibility_status"`
	FeasibilityReport *FeasibilityReport `json:"feasibility_report,omitempty"`
	FeasibilityError  *string            `json:"feasibility_error,omitempty"`

	Itinerary          *Itinerary      `json:"itinerary,omitempty"`
	ItineraryStatus    ItineraryStatus `json:"itinerary_status"`
	ItineraryLockedAt  *time.Time      `json:"itinerary_locked_at,omitempty"`
	ItineraryLockOwner *string         `json:"itinerary_lock_owner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupSize is the derived headcount used for budget floors and cost scaling.
func (t *Trip) GroupSize() int {
	return t.Adults + t.Children + t.Infants
}

type CreateTripRequest struct {
	PassportCountry  string      `json:"passport_country"`
	ResidenceCountry string      `json:"residence_country,omitempty"`
	OriginCity       string      `json:"origin_city"`
	DestinationCity  string      `json:"destination_city"`
	DateRange        string      `json:"date_range"`
	Currency         string      `json:"currency"`
	Budget           float64     `json:"budget"`
	Adults           int         `json:"adults"`
	Children         int         `json:"children"`
	Infants          int         `json:"infants"`
	TravelStyle      TravelStyle `json:"travel_style"`
}

func (r *CreateTripRequest) GroupSize() int {
	return r.Adults + r.Children + r.Infants
}

// UpdateTripRequest carries partial edits to a trip's request attributes.
// Applying any of these atomically resets feasibility and itinerary so the
// background processor re-runs against the new inputs.
type UpdateTripRequest struct {
	PassportCountry  *string      `json:"passport_country,omitempty"`
	ResidenceCountry *string      `json:"residence_country,omitempty"`
	OriginCity       *string      `json:"origin_city,omitempty"`
	DestinationCity  *string      `json:"destination_city,omitempty"`
	DateRange        *string      `json:"date_range,omitempty"`
	Currency         *string      `json:"currency,omitempty"`
	Budget           *float64     `json:"budget,omitempty"`
	Adults           *int         `json:"adults,omitempty"`
	Children         *int         `json:"children,omitempty"`
	Infants          *int         `json:"infants,omitempty"`
	TravelStyle      *TravelStyle `json:"travel_style,omitempty"`
}

func (r *UpdateTripRequest) IsEmpty() bool {
	return r.PassportCountry == nil && r.ResidenceCountry == nil &&
		r.OriginCity == nil && r.DestinationCity == nil && r.DateRange == nil &&
		r.Currency == nil && r.Budget == nil && r.Adults == nil &&
		r.Children == nil && r.Infants == nil && r.TravelStyle == nil
}
