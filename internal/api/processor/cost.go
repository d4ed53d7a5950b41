package processor

import (
	"math"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// budgetComfortMargin draws the line between "within" and "tight": the trip is
// comfortably within budget only when the leftover margin is strictly more
// than 10% of the stated budget. A margin of exactly 10% counts as tight.
const budgetComfortMargin = 0.10

// overBudgetScoreCap bounds the feasibility score once real costs show the
// trip exceeds its budget, regardless of what the earlier AI pass said.
const overBudgetScoreCap = 65

const miscShare = 0.08

// Per-person daily USD defaults by activity type, used when a day came from a
// rehydrated template or the AI omitted a cost. Standard-style baseline.
var defaultActivityCost = map[types.ActivityType]float64{
	types.ActivityGeneral:   25,
	types.ActivityMeal:      20,
	types.ActivityTransport: 10,
}

var expensiveDestinations = []string{
	"tokyo", "japan", "zurich", "geneva", "switzerland", "oslo", "norway",
	"copenhagen", "denmark", "reykjavik", "iceland", "singapore", "new york",
	"london", "paris", "dubai", "sydney", "honolulu",
}

var budgetDestinations = []string{
	"bangkok", "thailand", "hanoi", "vietnam", "bali", "indonesia", "india",
	"delhi", "mumbai", "mexico", "colombia", "bolivia", "cambodia", "laos",
	"nepal", "egypt", "morocco", "philippines",
}

func destinationTierFactor(destination string) float64 {
	d := strings.ToLower(destination)
	for _, kw := range expensiveDestinations {
		if strings.Contains(d, kw) {
			return 1.5
		}
	}
	for _, kw := range budgetDestinations {
		if strings.Contains(d, kw) {
			return 0.6
		}
	}
	return 1.0
}

func styleCostFactor(style types.TravelStyle) float64 {
	switch style {
	case types.TravelStyleBudget:
		return 0.7
	case types.TravelStyleLuxury:
		return 2.0
	default:
		return 1.0
	}
}

// payingHeads is the headcount daily costs scale by: adults and children pay,
// infants do not meaningfully add food or activity spend.
func payingHeads(trip *types.Trip) float64 {
	heads := trip.Adults + trip.Children
	if heads < 1 {
		heads = 1
	}
	return float64(heads)
}

// fillActivityCosts assigns estimated costs to activities that have none,
// scaled by destination tier and travel style. Costs stay per person; the
// breakdown pass multiplies by the party.
func fillActivityCosts(days []types.ItineraryDay, trip *types.Trip) {
	factor := destinationTierFactor(trip.DestinationCity) * styleCostFactor(trip.TravelStyle)
	for di := range days {
		for ai := range days[di].Activities {
			act := &days[di].Activities[ai]
			if act.EstimatedCost > 0 {
				continue
			}
			base, ok := defaultActivityCost[act.Type]
			if !ok {
				base = defaultActivityCost[types.ActivityGeneral]
			}
			act.EstimatedCost = math.Round(base * factor)
		}
	}
}

// buildCostBreakdown aggregates day activities with the flight and hotel
// quotes into the category breakdown. All inputs are USD; currency conversion
// happens afterwards on the finished breakdown.
func buildCostBreakdown(trip *types.Trip, days []types.ItineraryDay, flight *types.FlightOption, hotel *types.HotelOption) *types.CostBreakdown {
	cb := &types.CostBreakdown{Currency: "USD"}
	heads := payingHeads(trip)

	for _, day := range days {
		for _, act := range day.Activities {
			cost := act.EstimatedCost * heads
			switch act.Type {
			case types.ActivityMeal:
				cb.Food += cost
			case types.ActivityTransport:
				cb.LocalTransport += cost
			default:
				cb.Activities += cost
			}
		}
	}

	live := &types.LiveData{}
	if flight != nil {
		cb.Flights = flight.Price
		live.Airline = flight.Airline
		live.FlightBookingURL = flight.BookingURL
		live.FlightSource = flight.Source
	}
	if hotel != nil {
		cb.Accommodation = hotel.TotalPrice
		live.HotelName = hotel.Name
		live.HotelRating = hotel.Rating
		live.HotelBookingURL = hotel.BookingURL
		live.HotelSource = hotel.Source
	}
	cb.LiveData = live

	// Intercity transport only matters when the origin differs from the
	// destination and no flight quote covers it; the flight price already
	// includes the long haul, so keep this as local ground transfers.
	cb.IntercityTransport = math.Round(40 * heads * destinationTierFactor(trip.DestinationCity))

	subtotal := cb.Flights + cb.Accommodation + cb.Food + cb.Activities + cb.LocalTransport + cb.IntercityTransport
	cb.Misc = math.Round(subtotal * miscShare)
	cb.GrandTotal = math.Round(subtotal + cb.Misc)
	if size := trip.GroupSize(); size > 0 {
		cb.PerPerson = math.Round(cb.GrandTotal / float64(size))
	}
	return cb
}

// classifyBudget compares a total against the stated budget in the same
// currency. Any total above the budget is over; totals under budget but
// within the comfort margin are tight.
func classifyBudget(total, budget float64) types.BudgetStatus {
	if budget <= 0 {
		return types.BudgetWithin
	}
	margin := budget - total
	switch {
	case margin > budget*budgetComfortMargin:
		return types.BudgetWithin
	case margin >= 0:
		return types.BudgetTight
	default:
		return types.BudgetOver
	}
}

// syncFeasibilityWithCosts reconciles the early AI feasibility verdict with
// the real synthesized costs. The AI pass runs before prices exist, so an
// optimistic budget dimension gets corrected here rather than re-asking the
// model.
func syncFeasibilityWithCosts(report *types.FeasibilityReport, status types.BudgetStatus) {
	if report == nil {
		return
	}
	switch status {
	case types.BudgetOver:
		report.Breakdown.Budget.Status = types.DimensionWarning
		report.Breakdown.Budget.Detail = "Estimated costs exceed the stated budget."
		if report.Score > overBudgetScoreCap {
			report.Score = overBudgetScoreCap
		}
		if report.Overall == types.FeasibilityYes {
			report.Overall = types.FeasibilityWarning
		}
	case types.BudgetTight:
		if report.Breakdown.Budget.Status == types.DimensionOK {
			report.Breakdown.Budget.Status = types.DimensionWarning
			report.Breakdown.Budget.Detail = "Estimated costs run close to the stated budget."
		}
	}
}
