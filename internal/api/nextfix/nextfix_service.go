package nextfix

import (
	"fmt"
	"math"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// Thresholds shared by the rules and the confidence classifier.
const (
	lowBufferDays      = 5
	criticalBufferDays = 3

	materialCostDelta = 150.0
	highCostDelta     = 300.0

	materialCertaintyDrop = 5.0
	highCertaintyDrop     = 10.0

	// A category owning at least this share of the total cost delta is the
	// dominant one worth targeting directly.
	dominantCategoryShare = 0.40
)

// SuggestNextFix deterministically selects one prioritized remediation from a
// plan comparison. Rules run in fixed priority order and the first match
// wins; priority encodes severity. No AI call is involved.
func SuggestNextFix(c *types.PlanComparison) *types.NextFixSuggestion {
	if c == nil {
		return nil
	}

	if fix := ruleIncomparable(c); fix != nil {
		return fix
	}
	if fix := ruleVisaAndBuffer(c); fix != nil {
		return fix
	}
	if fix := ruleCostIncrease(c); fix != nil {
		return fix
	}
	if fix := ruleCertaintyDrop(c); fix != nil {
		return fix
	}
	if fix := ruleMissingCostData(c); fix != nil {
		return fix
	}

	return &types.NextFixSuggestion{
		Action:     types.FixSaveVersion,
		Title:      "Looks good",
		Detail:     "No issues detected between the two versions. Save this version.",
		Confidence: types.ConfidenceMedium,
	}
}

func ruleIncomparable(c *types.PlanComparison) *types.NextFixSuggestion {
	if c.IsComparable {
		return nil
	}
	return &types.NextFixSuggestion{
		Action:     types.FixRevertChange,
		Title:      "Revert the change",
		Detail:     fmt.Sprintf("The updated plan is not comparable to the original: %s. Revert to keep a consistent trip.", c.IncomparableReason),
		Confidence: types.ConfidenceHigh,
	}
}

// ruleVisaAndBuffer fires on high visa risk or thin schedule slack. Checked
// before cost: a trip that may not be admissible outranks one that is merely
// expensive.
func ruleVisaAndBuffer(c *types.PlanComparison) *types.NextFixSuggestion {
	highRisk := c.VisaRiskAfter == types.VisaRiskHigh
	lowBuffer := c.BufferDaysAfter != nil && *c.BufferDaysAfter < lowBufferDays
	if !highRisk && !lowBuffer {
		return nil
	}

	confidence := types.ConfidenceMedium
	if highRisk || (c.BufferDaysAfter != nil && *c.BufferDaysAfter < criticalBufferDays) {
		confidence = types.ConfidenceHigh
	}

	if highRisk {
		return &types.NextFixSuggestion{
			Action:     types.FixLowerVisaRisk,
			Title:      "Reduce visa risk",
			Detail:     "This plan carries a high visa risk. Check the corridor requirements or extend the dates to leave time for a visa application.",
			Confidence: confidence,
		}
	}
	return &types.NextFixSuggestion{
		Action:     types.FixAddBufferDays,
		Title:      "Extend the dates",
		Detail:     fmt.Sprintf("Only %d buffer day(s) remain above the minimum viable trip length. Extend the dates to add slack.", *c.BufferDaysAfter),
		Confidence: confidence,
	}
}

func ruleCostIncrease(c *types.PlanComparison) *types.NextFixSuggestion {
	if c.TotalCostDelta.Delta == nil || *c.TotalCostDelta.Delta <= materialCostDelta {
		return nil
	}
	increase := *c.TotalCostDelta.Delta

	confidence := types.ConfidenceMedium
	if increase > highCostDelta {
		confidence = types.ConfidenceHigh
	}

	if category, share := dominantCategory(c); category != "" && share >= dominantCategoryShare {
		return &types.NextFixSuggestion{
			Action:     types.FixReduceCategory,
			Target:     category,
			Title:      fmt.Sprintf("Trim %s costs", category),
			Detail:     fmt.Sprintf("Total cost rose by $%.0f and %s accounts for %.0f%% of the increase. Review that category first.", increase, category, share*100),
			Confidence: confidence,
		}
	}

	// No single category explains the increase; a generic review is
	// inherently less actionable, so confidence drops one level.
	return &types.NextFixSuggestion{
		Action:     types.FixReviewBudget,
		Title:      "Review the budget",
		Detail:     fmt.Sprintf("Total cost rose by $%.0f across several categories. Review the budget breakdown.", increase),
		Confidence: downgrade(confidence),
	}
}

// dominantCategory finds the category with the largest share of the absolute
// total cost delta.
func dominantCategory(c *types.PlanComparison) (string, float64) {
	total := math.Abs(*c.TotalCostDelta.Delta)
	if total == 0 {
		return "", 0
	}
	var bestName string
	var bestShare float64
	for name, delta := range c.CategoryCostDeltas {
		if delta.Delta == nil {
			continue
		}
		share := math.Abs(*delta.Delta) / total
		if share > bestShare {
			bestName = name
			bestShare = share
		}
	}
	return bestName, bestShare
}

func ruleCertaintyDrop(c *types.PlanComparison) *types.NextFixSuggestion {
	if c.CertaintyDelta.Delta == nil || *c.CertaintyDelta.Delta >= -materialCertaintyDrop {
		return nil
	}
	drop := -*c.CertaintyDelta.Delta

	confidence := types.ConfidenceMedium
	if drop > highCertaintyDrop {
		confidence = types.ConfidenceHigh
	}

	if riskWorsened(c.VisaRiskBefore, c.VisaRiskAfter) {
		return &types.NextFixSuggestion{
			Action:     types.FixLowerVisaRisk,
			Title:      "Certainty dropped: visa risk rose",
			Detail:     fmt.Sprintf("Feasibility fell by %.0f points, driven by increased visa risk. Address the visa requirements.", drop),
			Confidence: confidence,
		}
	}
	if c.BufferDaysBefore != nil && c.BufferDaysAfter != nil && *c.BufferDaysAfter < *c.BufferDaysBefore {
		return &types.NextFixSuggestion{
			Action:     types.FixAddBufferDays,
			Title:      "Certainty dropped: schedule tightened",
			Detail:     fmt.Sprintf("Feasibility fell by %.0f points after buffer days shrank. Extend the dates.", drop),
			Confidence: confidence,
		}
	}

	return &types.NextFixSuggestion{
		Action:     types.FixSimplifyItinerary,
		Title:      "Simplify the itinerary",
		Detail:     fmt.Sprintf("Feasibility fell by %.0f points with no single cause. Simplifying the itinerary may recover it.", drop),
		Confidence: types.ConfidenceLow,
	}
}

func riskWorsened(before, after types.VisaRisk) bool {
	rank := map[types.VisaRisk]int{
		types.VisaRiskLow:    0,
		types.VisaRiskMedium: 1,
		types.VisaRiskHigh:   2,
	}
	rb, okB := rank[before]
	ra, okA := rank[after]
	return okB && okA && ra > rb
}

func ruleMissingCostData(c *types.PlanComparison) *types.NextFixSuggestion {
	if c.TotalCostDelta.Direction != types.DirectionUnavailable {
		return nil
	}
	return &types.NextFixSuggestion{
		Action:     types.FixRefreshPricing,
		Title:      "Refresh pricing",
		Detail:     "Cost data is unavailable for at least one version, so prices cannot be compared. Refresh pricing.",
		Confidence: types.ConfidenceMedium,
	}
}

func downgrade(c types.Confidence) types.Confidence {
	switch c {
	case types.ConfidenceHigh:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

// ClassifyConfidence is the shared severity classifier consulted by rules and
// exposed for callers that need a single confidence for a whole comparison.
func ClassifyConfidence(c *types.PlanComparison) types.Confidence {
	if c.VisaRiskAfter == types.VisaRiskHigh {
		return types.ConfidenceHigh
	}
	if c.BufferDaysAfter != nil && *c.BufferDaysAfter < criticalBufferDays {
		return types.ConfidenceHigh
	}
	if c.TotalCostDelta.Delta != nil && *c.TotalCostDelta.Delta > highCostDelta {
		return types.ConfidenceHigh
	}
	if c.CertaintyDelta.Delta != nil && *c.CertaintyDelta.Delta < -highCertaintyDrop {
		return types.ConfidenceHigh
	}

	if c.BufferDaysAfter != nil && *c.BufferDaysAfter < lowBufferDays {
		return types.ConfidenceMedium
	}
	if c.TotalCostDelta.Delta != nil && *c.TotalCostDelta.Delta > materialCostDelta {
		return types.ConfidenceMedium
	}
	if c.CertaintyDelta.Delta != nil && *c.CertaintyDelta.Delta < -materialCertaintyDrop {
		return types.ConfidenceMedium
	}
	return types.ConfidenceLow
}
