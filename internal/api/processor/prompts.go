package processor

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// itineraryTokensPerDay sizes the completion budget so long trips do not get
// silently truncated mid-object. Bounded because provider limits are hard.
const (
	itineraryTokensPerDay = 280
	itineraryTokensBase   = 400
	itineraryTokensMax    = 8192

	feasibilityMaxTokens = 1024
)

func itineraryTokenBudget(days int) int32 {
	budget := itineraryTokensBase + days*itineraryTokensPerDay
	if budget > itineraryTokensMax {
		budget = itineraryTokensMax
	}
	return int32(budget)
}

func buildFeasibilityPrompt(trip *types.Trip, visa *types.VisaRequirement) string {
	var b strings.Builder
	b.WriteString("You are a travel feasibility analyst. Assess whether this trip is realistic and return ONLY a JSON object.\n\n")
	fmt.Fprintf(&b, "Trip: %s -> %s, dates %s, party of %d (%d adults, %d children, %d infants), budget %.0f %s, style %s.\n",
		trip.OriginCity, trip.DestinationCity, trip.DateRange,
		trip.GroupSize(), trip.Adults, trip.Children, trip.Infants,
		trip.Budget, trip.Currency, trip.TravelStyle)
	fmt.Fprintf(&b, "Traveler passport: %s.\n", trip.PassportCountry)
	if trip.ResidenceCountry != "" && trip.ResidenceCountry != trip.PassportCountry {
		fmt.Fprintf(&b, "Country of residence: %s.\n", trip.ResidenceCountry)
	}
	if visa != nil {
		fmt.Fprintf(&b, "Known visa requirement for this corridor: %s (source: %s).", visa.Requirement, visa.Source)
		if visa.AllowedDays > 0 {
			fmt.Fprintf(&b, " Allowed stay: %d days.", visa.AllowedDays)
		}
		b.WriteString(" Treat this as authoritative for the visa dimension.\n")
	}
	b.WriteString(`
Return exactly this JSON shape:
{
  "overall": "yes" | "warning" | "no",
  "score": <integer 0-100>,
  "breakdown": {
    "visa": {"status": "ok" | "warning" | "blocked", "detail": "<one sentence>"},
    "budget": {"status": "ok" | "warning" | "blocked", "detail": "<one sentence>"},
    "safety": {"status": "ok" | "warning" | "blocked", "detail": "<one sentence>"},
    "accessibility": {"status": "ok" | "warning" | "blocked", "detail": "<one sentence>"}
  },
  "summary": "<two sentences max>"
}
No markdown, no commentary, JSON only.`)
	return b.String()
}

func buildItineraryPrompt(trip *types.Trip, tripDays int) string {
	var b strings.Builder
	b.WriteString("You are a travel planner. Produce a day-by-day itinerary and return ONLY a JSON object.\n\n")
	fmt.Fprintf(&b, "Destination: %s. Trip length: %d days starting within %s. Party of %d, travel style %s, total budget %.0f %s.\n",
		trip.DestinationCity, tripDays, trip.DateRange, trip.GroupSize(), trip.TravelStyle, trip.Budget, trip.Currency)
	b.WriteString(`
Return exactly this JSON shape:
{
  "days": [
    {
      "day_number": 1,
      "title": "<short day theme>",
      "activities": [
        {"time": "09:00", "description": "<what to do>", "type": "activity" | "meal" | "transport", "location": "<place>", "estimated_cost": <number, USD per person>}
      ]
    }
  ]
}
Rules: one entry per day for all days. Day 1 starts after a 14:00 arrival; the last day ends by 15:00 for departure. 4 to 5 activities per day with realistic time gaps between them, include at least one meal per day, keep descriptions under 15 words. No markdown fences, JSON only.`)
	return b.String()
}
