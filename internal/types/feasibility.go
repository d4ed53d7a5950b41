package types

// DimensionStatus is the per-dimension verdict inside a feasibility breakdown.
type DimensionStatus string

const (
	DimensionOK      DimensionStatus = "ok"
	DimensionWarning DimensionStatus = "warning"
	DimensionBlocked DimensionStatus = "blocked"
)

type FeasibilityDimension struct {
	Status DimensionStatus `json:"status"`
	Detail string          `json:"detail,omitempty"`
}

type FeasibilityBreakdown struct {
	Visa          FeasibilityDimension  `json:"visa"`
	Budget        FeasibilityDimension  `json:"budget"`
	Safety        FeasibilityDimension  `json:"safety"`
	Accessibility *FeasibilityDimension `json:"accessibility,omitempty"`
}

// FeasibilityReport is produced once per processing run and later synchronized
// in place once actual itinerary costs are known.
type FeasibilityReport struct {
	Overall   FeasibilityStatus    `json:"overall"` // yes, warning or no
	Score     int                  `json:"score"`   // 0-100
	Breakdown FeasibilityBreakdown `json:"breakdown"`
	Summary   string               `json:"summary"`
}
