package types

type VisaRisk string

const (
	VisaRiskLow     VisaRisk = "low"
	VisaRiskMedium  VisaRisk = "medium"
	VisaRiskHigh    VisaRisk = "high"
	VisaRiskUnknown VisaRisk = "unknown"
)

type Direction string

const (
	DirectionUp          Direction = "up"
	DirectionDown        Direction = "down"
	DirectionSame        Direction = "same"
	DirectionUnavailable Direction = "unavailable"
)

// Delta is a null-safe numeric difference. Delta is nil whenever either side
// is unknown; unknown is never coerced to zero.
type Delta struct {
	Before    *float64  `json:"before"`
	After     *float64  `json:"after"`
	Delta     *float64  `json:"delta"`
	Direction Direction `json:"direction"`
}

// SnapshotCosts holds each category independently nullable. A nil field means
// "unknown", which must not be treated as "free".
type SnapshotCosts struct {
	Flights       *float64 `json:"flights"`
	Accommodation *float64 `json:"accommodation"`
	Food          *float64 `json:"food"`
	Activities    *float64 `json:"activities"`
	Transport     *float64 `json:"transport"`
	Misc          *float64 `json:"misc"`
	Total         *float64 `json:"total"`
}

type SnapshotCertainty struct {
	FeasibilityScore *float64 `json:"feasibility_score"`
	VisaRisk         VisaRisk `json:"visa_risk"`
	BufferDays       *int     `json:"buffer_days"`
}

type SnapshotItinerary struct {
	DayCount      int      `json:"day_count"`
	ActivityCount int      `json:"activity_count"`
	Highlights    []string `json:"highlights,omitempty"`
}

// PlanSnapshot is a trip normalized into comparable fields.
type PlanSnapshot struct {
	TripID      int64             `json:"trip_id"`
	Destination string            `json:"destination"`
	Passport    string            `json:"passport"`
	Travelers   int               `json:"travelers"`
	Budget      *float64          `json:"budget"`
	Certainty   SnapshotCertainty `json:"certainty"`
	Costs       SnapshotCosts     `json:"costs"`
	Itinerary   SnapshotItinerary `json:"itinerary"`
}

type Preferred string

const (
	PreferOriginal Preferred = "original"
	PreferUpdated  Preferred = "updated"
	PreferNeutral  Preferred = "neutral"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

type Recommendation struct {
	Preferred  Preferred  `json:"preferred"`
	Score      float64    `json:"score"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

type PlanComparison struct {
	IsComparable        bool           `json:"is_comparable"`
	IncomparableReason  string         `json:"incomparable_reason,omitempty"`
	Before              PlanSnapshot   `json:"before"`
	After               PlanSnapshot   `json:"after"`
	CertaintyDelta      Delta          `json:"certainty_delta"`
	TotalCostDelta      Delta          `json:"total_cost_delta"`
	CategoryCostDeltas  map[string]Delta `json:"category_cost_deltas"`
	VisaRiskBefore      VisaRisk       `json:"visa_risk_before"`
	VisaRiskAfter       VisaRisk       `json:"visa_risk_after"`
	BufferDaysBefore    *int           `json:"buffer_days_before"`
	BufferDaysAfter     *int           `json:"buffer_days_after"`
	Recommendation      Recommendation `json:"recommendation"`
}

// FixAction identifies the single remediation the rule engine proposes.
type FixAction string

const (
	FixRevertChange     FixAction = "REVERT_CHANGE"
	FixAddBufferDays    FixAction = "ADD_BUFFER_DAYS"
	FixLowerVisaRisk    FixAction = "LOWER_VISA_RISK"
	FixReduceCategory   FixAction = "REDUCE_CATEGORY_COST"
	FixReviewBudget     FixAction = "REVIEW_BUDGET"
	FixSimplifyItinerary FixAction = "SIMPLIFY_ITINERARY"
	FixRefreshPricing   FixAction = "REFRESH_PRICING"
	FixSaveVersion      FixAction = "SAVE_VERSION"
)

type NextFixSuggestion struct {
	Action     FixAction  `json:"action"`
	Target     string     `json:"target,omitempty"` // e.g. dominant cost category
	Title      string     `json:"title"`
	Detail     string     `json:"detail"`
	Confidence Confidence `json:"confidence"`
}
