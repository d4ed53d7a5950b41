package types

import "time"

// ProcessStep is the fixed enumeration of background pipeline stages.
type ProcessStep int

const (
	StepStarting ProcessStep = iota
	StepFeasibility
	StepFlights
	StepHotels
	StepItinerary
	StepFinalizing
	StepComplete
)

const TotalProcessSteps = 6

func (s ProcessStep) String() string {
	switch s {
	case StepStarting:
		return "starting"
	case StepFeasibility:
		return "feasibility"
	case StepFlights:
		return "flights"
	case StepHotels:
		return "hotels"
	case StepItinerary:
		return "itinerary"
	case StepFinalizing:
		return "finalizing"
	case StepComplete:
		return "complete"
	}
	return "unknown"
}

// TripProgress is the in-memory progress record clients poll by trip id.
type TripProgress struct {
	TripID    int64       `json:"trip_id"`
	Step      ProcessStep `json:"step"`
	Message   string      `json:"message"`
	Details   string      `json:"details,omitempty"`
	Error     bool        `json:"error,omitempty"`
	StartedAt time.Time   `json:"started_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ProgressResponse is the wire shape of the progress polling endpoint.
type ProgressResponse struct {
	Step            ProcessStep `json:"step"`
	Message         string      `json:"message"`
	Details         string      `json:"details,omitempty"`
	ElapsedSeconds  float64     `json:"elapsed"`
	TotalSteps      int         `json:"total_steps"`
	PercentComplete int         `json:"percent_complete"`
}
