package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func comparableTrip(id int64) *types.Trip {
	return &types.Trip{
		ID:              id,
		PassportCountry: "Portugal",
		DestinationCity: "Tokyo, Japan",
		DateRange:       "2026-09-01 to 2026-09-10",
		Budget:          4000,
		Adults:          2,
		FeasibilityReport: &types.FeasibilityReport{
			Overall: types.FeasibilityYes,
			Score:   85,
			Breakdown: types.FeasibilityBreakdown{
				Visa:   types.FeasibilityDimension{Status: types.DimensionOK},
				Budget: types.FeasibilityDimension{Status: types.DimensionOK},
				Safety: types.FeasibilityDimension{Status: types.DimensionOK},
			},
		},
		Itinerary: &types.Itinerary{
			Destination: "Tokyo, Japan",
			Days: []types.ItineraryDay{
				{DayNumber: 1, Activities: []types.Activity{{Description: "Senso-ji temple"}}},
			},
			CostBreakdown: &types.CostBreakdown{
				Flights:       1200,
				Accommodation: 900,
				Food:          500,
				Activities:    300,
				GrandTotal:    2900,
			},
		},
	}
}

func TestComparePlans_IdenticalPlans(t *testing.T) {
	c := ComparePlans(comparableTrip(1), comparableTrip(2))

	require.True(t, c.IsComparable)
	require.NotNil(t, c.TotalCostDelta.Delta)
	assert.Zero(t, *c.TotalCostDelta.Delta)
	assert.Equal(t, types.DirectionSame, c.TotalCostDelta.Direction)
	assert.Equal(t, types.PreferNeutral, c.Recommendation.Preferred)
}

func TestComparePlans_IncomparableDestinations(t *testing.T) {
	original := comparableTrip(1)
	updated := comparableTrip(2)
	updated.DestinationCity = "Lisbon, Portugal"

	c := ComparePlans(original, updated)

	require.False(t, c.IsComparable)
	assert.NotEmpty(t, c.IncomparableReason)
	assert.Nil(t, c.TotalCostDelta.Delta)
	assert.Equal(t, types.DirectionUnavailable, c.TotalCostDelta.Direction)
	assert.Equal(t, types.PreferNeutral, c.Recommendation.Preferred)
	assert.Equal(t, types.ConfidenceLow, c.Recommendation.Confidence)
}

func TestComparePlans_TravelerCountGate(t *testing.T) {
	original := comparableTrip(1)
	updated := comparableTrip(2)
	updated.Children = 1

	c := ComparePlans(original, updated)
	assert.False(t, c.IsComparable)
}

func TestComparePlans_MissingCostsStayNil(t *testing.T) {
	original := comparableTrip(1)
	updated := comparableTrip(2)
	updated.Itinerary = nil // updated plan not yet processed

	c := ComparePlans(original, updated)

	require.True(t, c.IsComparable)
	// Unknown must never be coerced to zero: no delta, no direction guess.
	assert.Nil(t, c.TotalCostDelta.Delta)
	assert.Equal(t, types.DirectionUnavailable, c.TotalCostDelta.Direction)
	assert.Equal(t, types.ConfidenceLow, c.Recommendation.Confidence)
}

func TestComparePlans_PrefersCheaperEquivalentPlan(t *testing.T) {
	original := comparableTrip(1)
	updated := comparableTrip(2)
	updated.Itinerary.CostBreakdown.GrandTotal = 2000
	updated.Itinerary.CostBreakdown.Flights = 300

	c := ComparePlans(original, updated)

	require.True(t, c.IsComparable)
	assert.Equal(t, types.DirectionDown, c.TotalCostDelta.Direction)
	// A ~31% cost drop with everything else flat must clear the 0.3
	// preference threshold on the cost weight alone.
	assert.Equal(t, types.PreferUpdated, c.Recommendation.Preferred)
	assert.Greater(t, c.Recommendation.Score, preferThreshold)
	assert.Equal(t, types.ConfidenceHigh, c.Recommendation.Confidence)
}

func TestComparePlans_CertaintyDropPrefersOriginal(t *testing.T) {
	original := comparableTrip(1)
	updated := comparableTrip(2)
	updated.FeasibilityReport.Score = 45
	updated.FeasibilityReport.Breakdown.Visa.Status = types.DimensionBlocked

	c := ComparePlans(original, updated)

	require.True(t, c.IsComparable)
	assert.Equal(t, types.VisaRiskLow, c.VisaRiskBefore)
	assert.Equal(t, types.VisaRiskHigh, c.VisaRiskAfter)
	assert.Equal(t, types.PreferOriginal, c.Recommendation.Preferred)
	assert.Less(t, c.Recommendation.Score, 0.0)
}

func TestBuildWeights_Renormalization(t *testing.T) {
	t.Run("all signals use base weights", func(t *testing.T) {
		w := buildWeights(true, true, true, true)
		assert.InDelta(t, 0.5, w.Certainty, 1e-9)
		assert.InDelta(t, 0.3, w.Cost, 1e-9)
		assert.InDelta(t, 1.0, w.Certainty+w.Cost+w.Visa+w.Buffer, 1e-9)
	})

	t.Run("missing signals redistribute weight", func(t *testing.T) {
		w := buildWeights(false, true, true, false)
		assert.Zero(t, w.Certainty)
		assert.Zero(t, w.Buffer)
		assert.InDelta(t, 1.0, w.Cost+w.Visa, 1e-9)
		// Cost keeps its 0.30/0.45 share of the remaining mass.
		assert.InDelta(t, 0.3/0.45, w.Cost, 1e-9)
	})

	t.Run("no signals yields zero weights", func(t *testing.T) {
		w := buildWeights(false, false, false, false)
		assert.Zero(t, w.Certainty+w.Cost+w.Visa+w.Buffer)
	})
}

func TestExtractSnapshot(t *testing.T) {
	trip := comparableTrip(1)
	snap := ExtractSnapshot(trip)

	assert.Equal(t, "tokyo, japan", snap.Destination)
	assert.Equal(t, "portugal", snap.Passport)
	assert.Equal(t, 2, snap.Travelers)
	require.NotNil(t, snap.Certainty.FeasibilityScore)
	assert.Equal(t, 85.0, *snap.Certainty.FeasibilityScore)
	require.NotNil(t, snap.Certainty.BufferDays)
	// 10 trip days minus the 3-day minimum viable length.
	assert.Equal(t, 7, *snap.Certainty.BufferDays)
	require.NotNil(t, snap.Costs.Total)
	assert.Equal(t, 2900.0, *snap.Costs.Total)
}

func TestExtractSnapshot_UnprocessedTrip(t *testing.T) {
	trip := &types.Trip{ID: 1, DestinationCity: "Lisbon", PassportCountry: "Spain", Adults: 1, DateRange: "not a date"}
	snap := ExtractSnapshot(trip)

	assert.Nil(t, snap.Certainty.FeasibilityScore)
	assert.Equal(t, types.VisaRiskUnknown, snap.Certainty.VisaRisk)
	assert.Nil(t, snap.Certainty.BufferDays)
	assert.Nil(t, snap.Costs.Total)
	assert.Nil(t, snap.Budget)
}
