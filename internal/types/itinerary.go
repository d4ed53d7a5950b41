package types

type ActivityType string

const (
	ActivityGeneral   ActivityType = "activity"
	ActivityMeal      ActivityType = "meal"
	ActivityTransport ActivityType = "transport"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Activity struct {
	Time          string       `json:"time"`
	Description   string       `json:"description"`
	Type          ActivityType `json:"type"`
	Location      string       `json:"location,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	EstimatedCost float64      `json:"estimated_cost"`
}

type ItineraryDay struct {
	DayNumber  int        `json:"day_number"`
	Date       string     `json:"date"` // ISO date
	Title      string     `json:"title"`
	Activities []Activity `json:"activities"`
}

type BudgetStatus string

const (
	BudgetWithin BudgetStatus = "within_budget"
	BudgetTight  BudgetStatus = "tight"
	BudgetOver   BudgetStatus = "over_budget"
)

type PriceSource string

const (
	SourceAPI      PriceSource = "api"
	SourceEstimate PriceSource = "estimate"
)

// LiveData annotates a cost breakdown with provider metadata so the UI can
// label what came from a real quote versus a synthesized estimate.
type LiveData struct {
	Airline          string      `json:"airline,omitempty"`
	FlightBookingURL string      `json:"flight_booking_url,omitempty"`
	FlightSource     PriceSource `json:"flight_source,omitempty"`
	HotelName        string      `json:"hotel_name,omitempty"`
	HotelRating      float64     `json:"hotel_rating,omitempty"`
	HotelBookingURL  string      `json:"hotel_booking_url,omitempty"`
	HotelSource      PriceSource `json:"hotel_source,omitempty"`
}

// CostBreakdown totals are always non-negative; GrandTotal is the sum of the
// category totals.
type CostBreakdown struct {
	Flights            float64      `json:"flights"`
	Accommodation      float64      `json:"accommodation"`
	Food               float64      `json:"food"`
	Activities         float64      `json:"activities"`
	LocalTransport     float64      `json:"local_transport"`
	IntercityTransport float64      `json:"intercity_transport"`
	Misc               float64      `json:"misc"`
	GrandTotal         float64      `json:"grand_total"`
	PerPerson          float64      `json:"per_person"`
	Currency           string       `json:"currency"`
	BudgetStatus       BudgetStatus `json:"budget_status"`
	LiveData           *LiveData    `json:"live_data,omitempty"`
}

type Itinerary struct {
	Destination   string         `json:"destination"`
	Days          []ItineraryDay `json:"days"`
	CostBreakdown *CostBreakdown `json:"cost_breakdown,omitempty"`
}

// DayTemplate is a cached, date-free day skeleton reusable across trips to the
// same destination. Dates and costs are re-derived per request.
type DayTemplate struct {
	Title      string             `json:"title"`
	Activities []ActivityTemplate `json:"activities"`
}

type ActivityTemplate struct {
	Time        string       `json:"time"`
	Description string       `json:"description"`
	Type        ActivityType `json:"type"`
	Location    string       `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}
