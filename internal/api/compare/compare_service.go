package compare

import (
	"fmt"
	"math"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Preference thresholds on the weighted score.
const (
	preferThreshold = 0.3

	// Full-signal normalization scales: a 20-point certainty swing, a 10%
	// cost swing and a 5-day buffer change each count as one unit of their
	// signal. Signals are linear and unclamped so a large swing in one
	// dimension can outweigh flatness everywhere else.
	certaintyScale = 20.0
	costPctScale   = 0.10
	bufferDayScale = 5.0
)

// ComparePlans diffs two trip states (e.g. before/after a chat-driven edit)
// and scores which is preferable. Plans for different destinations, passports
// or party sizes are not comparable: arithmetic across them would produce a
// meaningless score.
func ComparePlans(original, updated *types.Trip) *types.PlanComparison {
	before := ExtractSnapshot(original)
	after := ExtractSnapshot(updated)

	comparison := &types.PlanComparison{
		Before:           before,
		After:            after,
		VisaRiskBefore:   before.Certainty.VisaRisk,
		VisaRiskAfter:    after.Certainty.VisaRisk,
		BufferDaysBefore: before.Certainty.BufferDays,
		BufferDaysAfter:  after.Certainty.BufferDays,
	}

	if reason, ok := comparabilityGate(before, after); !ok {
		comparison.IsComparable = false
		comparison.IncomparableReason = reason
		comparison.CertaintyDelta = nullDelta()
		comparison.TotalCostDelta = nullDelta()
		comparison.Recommendation = types.Recommendation{
			Preferred:  types.PreferNeutral,
			Confidence: types.ConfidenceLow,
			Reason:     reason,
		}
		return comparison
	}

	comparison.IsComparable = true
	comparison.CertaintyDelta = diff(before.Certainty.FeasibilityScore, after.Certainty.FeasibilityScore)
	comparison.TotalCostDelta = diff(before.Costs.Total, after.Costs.Total)
	comparison.CategoryCostDeltas = map[string]types.Delta{
		"flights":       diff(before.Costs.Flights, after.Costs.Flights),
		"accommodation": diff(before.Costs.Accommodation, after.Costs.Accommodation),
		"food":          diff(before.Costs.Food, after.Costs.Food),
		"activities":    diff(before.Costs.Activities, after.Costs.Activities),
		"transport":     diff(before.Costs.Transport, after.Costs.Transport),
		"misc":          diff(before.Costs.Misc, after.Costs.Misc),
	}
	comparison.Recommendation = recommend(comparison)
	return comparison
}

func comparabilityGate(before, after types.PlanSnapshot) (string, bool) {
	if before.Destination != after.Destination {
		return fmt.Sprintf("plans target different destinations (%q vs %q)", before.Destination, after.Destination), false
	}
	if before.Passport != after.Passport {
		return "plans assume different passports", false
	}
	if before.Travelers != after.Travelers {
		return fmt.Sprintf("plans have different traveler counts (%d vs %d)", before.Travelers, after.Travelers), false
	}
	return "", true
}

func nullDelta() types.Delta {
	return types.Delta{Direction: types.DirectionUnavailable}
}

// diff computes a null-safe delta: nil whenever either side is unknown, with
// direction never guessed.
func diff(before, after *float64) types.Delta {
	d := types.Delta{Before: before, After: after}
	if before == nil || after == nil {
		d.Direction = types.DirectionUnavailable
		return d
	}
	delta := *after - *before
	d.Delta = &delta
	switch {
	case delta > 0:
		d.Direction = types.DirectionUp
	case delta < 0:
		d.Direction = types.DirectionDown
	default:
		d.Direction = types.DirectionSame
	}
	return d
}

func riskRank(risk types.VisaRisk) (float64, bool) {
	switch risk {
	case types.VisaRiskLow:
		return 0, true
	case types.VisaRiskMedium:
		return 1, true
	case types.VisaRiskHigh:
		return 2, true
	}
	return 0, false
}

// recommend builds the weighted linear score over the available signals.
// Positive favors the updated plan.
func recommend(c *types.PlanComparison) types.Recommendation {
	var certaintySignal, costSignal, visaSignal, bufferSignal float64

	hasCertainty := c.CertaintyDelta.Delta != nil
	if hasCertainty {
		certaintySignal = *c.CertaintyDelta.Delta / certaintyScale
	}

	hasCost := c.TotalCostDelta.Delta != nil
	if hasCost {
		base := 1.0
		if c.TotalCostDelta.Before != nil && *c.TotalCostDelta.Before > 0 {
			base = *c.TotalCostDelta.Before
		}
		// Cost going down is an improvement.
		costSignal = -(*c.TotalCostDelta.Delta / base) / costPctScale
	}

	rankBefore, okBefore := riskRank(c.VisaRiskBefore)
	rankAfter, okAfter := riskRank(c.VisaRiskAfter)
	hasVisa := okBefore && okAfter
	if hasVisa {
		visaSignal = (rankBefore - rankAfter) / 2
	}

	hasBuffer := c.BufferDaysBefore != nil && c.BufferDaysAfter != nil
	if hasBuffer {
		bufferSignal = float64(*c.BufferDaysAfter-*c.BufferDaysBefore) / bufferDayScale
	}

	w := buildWeights(hasCertainty, hasCost, hasVisa, hasBuffer)
	score := w.Certainty*certaintySignal + w.Cost*costSignal + w.Visa*visaSignal + w.Buffer*bufferSignal

	rec := types.Recommendation{Score: score}
	switch {
	case score > preferThreshold:
		rec.Preferred = types.PreferUpdated
		rec.Reason = "the updated plan improves on the original across the available signals"
	case score < -preferThreshold:
		rec.Preferred = types.PreferOriginal
		rec.Reason = "the original plan scores better than the update"
	default:
		rec.Preferred = types.PreferNeutral
		rec.Reason = "neither plan is clearly better"
	}

	rec.Confidence = scoreConfidence(score, hasCertainty, hasCost)
	return rec
}

// scoreConfidence downgrades to low whenever certainty or cost data is
// missing: a score built on partial data is less trustworthy no matter how
// extreme it is.
func scoreConfidence(score float64, hasCertainty, hasCost bool) types.Confidence {
	if !hasCertainty || !hasCost {
		return types.ConfidenceLow
	}
	abs := math.Abs(score)
	switch {
	case abs > 0.5:
		return types.ConfidenceHigh
	case abs > 0.15:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}
