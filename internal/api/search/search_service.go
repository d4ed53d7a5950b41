package search

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const requestTimeout = 10 * time.Second

// Passenger-class multipliers applied to the per-adult fare.
const (
	childFareFactor  = 0.75
	infantFareFactor = 0.10
)

var _ Service = (*ServiceImpl)(nil)

// Service wraps the paid flight/hotel search API. Every call degrades to a
// synthesized estimate with the same shape, so callers only ever branch on the
// Source tag for trust labeling.
type Service interface {
	SearchFlights(ctx context.Context, params FlightParams) *types.FlightOption
	SearchHotels(ctx context.Context, params HotelParams) *types.HotelOption
}

type FlightParams struct {
	Origin      string
	Destination string
	DepartDate  string // ISO date
	ReturnDate  string // ISO date
	Adults      int
	Children    int
	Infants     int
	TravelStyle types.TravelStyle
	// DatesInPast skips the provider call entirely: search APIs cannot quote
	// historical fares.
	DatesInPast bool
}

type HotelParams struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Nights      int
	Adults      int
	Children    int
	TravelStyle types.TravelStyle
	DatesInPast bool
}

type ServiceImpl struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewServiceImpl(baseURL, apiKey string, logger *slog.Logger) *ServiceImpl {
	if apiKey == "" {
		logger.Warn("Search API key not set, flight/hotel search will use estimate fallbacks")
	}
	return &ServiceImpl{
		logger:  logger,
		client:  &http.Client{Timeout: requestTimeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// partyPrice scales a per-adult fare to the whole party: adults pay full
// price, children ~75%, infants ~10%.
func partyPrice(perAdult float64, adults, children, infants int) float64 {
	if adults < 1 {
		adults = 1
	}
	total := perAdult * float64(adults)
	total += perAdult * childFareFactor * float64(children)
	total += perAdult * infantFareFactor * float64(infants)
	return total
}

func styleFareFactor(style types.TravelStyle) float64 {
	switch style {
	case types.TravelStyleBudget:
		return 0.75
	case types.TravelStyleLuxury:
		return 1.8
	default:
		return 1.0
	}
}
