package compare

import (
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/api/daterange"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// minViableTripDays is the assumed minimum trip length; buffer days measure
// slack above it.
const minViableTripDays = 3

const maxHighlights = 5

// ExtractSnapshot normalizes a trip into comparable fields. Money fields stay
// nil when unknown: coercing "unknown" to 0 would corrupt every delta built
// on top of it.
func ExtractSnapshot(trip *types.Trip) types.PlanSnapshot {
	snap := types.PlanSnapshot{
		TripID:      trip.ID,
		Destination: normalize(trip.DestinationCity),
		Passport:    normalize(trip.PassportCountry),
		Travelers:   trip.GroupSize(),
	}
	if trip.Budget > 0 {
		snap.Budget = ptr(trip.Budget)
	}

	snap.Certainty = extractCertainty(trip)
	snap.Costs = extractCosts(trip)
	snap.Itinerary = extractItinerary(trip)
	return snap
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func ptr(v float64) *float64 { return &v }

func extractCertainty(trip *types.Trip) types.SnapshotCertainty {
	c := types.SnapshotCertainty{VisaRisk: types.VisaRiskUnknown}

	if trip.FeasibilityReport != nil {
		c.FeasibilityScore = ptr(float64(trip.FeasibilityReport.Score))
		c.VisaRisk = visaRiskBucket(trip.FeasibilityReport)
	}

	if r, err := daterange.Parse(trip.DateRange); err == nil {
		buffer := r.Days() - minViableTripDays
		c.BufferDays = &buffer
	}
	return c
}

// visaRiskBucket derives a coarse risk from the visa dimension first and the
// overall score second.
func visaRiskBucket(report *types.FeasibilityReport) types.VisaRisk {
	switch report.Breakdown.Visa.Status {
	case types.DimensionBlocked:
		return types.VisaRiskHigh
	case types.DimensionWarning:
		return types.VisaRiskMedium
	case types.DimensionOK:
		return types.VisaRiskLow
	}
	switch {
	case report.Score < 40:
		return types.VisaRiskHigh
	case report.Score < 70:
		return types.VisaRiskMedium
	default:
		return types.VisaRiskLow
	}
}

func extractCosts(trip *types.Trip) types.SnapshotCosts {
	var costs types.SnapshotCosts
	if trip.Itinerary == nil || trip.Itinerary.CostBreakdown == nil {
		return costs
	}
	cb := trip.Itinerary.CostBreakdown
	costs.Flights = ptr(cb.Flights)
	costs.Accommodation = ptr(cb.Accommodation)
	costs.Food = ptr(cb.Food)
	costs.Activities = ptr(cb.Activities)
	costs.Transport = ptr(cb.LocalTransport + cb.IntercityTransport)
	costs.Misc = ptr(cb.Misc)
	costs.Total = ptr(cb.GrandTotal)
	return costs
}

func extractItinerary(trip *types.Trip) types.SnapshotItinerary {
	var summary types.SnapshotItinerary
	if trip.Itinerary == nil {
		return summary
	}
	summary.DayCount = len(trip.Itinerary.Days)
	for _, day := range trip.Itinerary.Days {
		summary.ActivityCount += len(day.Activities)
		if len(summary.Highlights) < maxHighlights && len(day.Activities) > 0 {
			summary.Highlights = append(summary.Highlights, day.Activities[0].Description)
		}
	}
	return summary
}
