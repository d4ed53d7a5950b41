package search

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// SearchFlights queries the provider for the cheapest round trip and falls
// back to a synthesized estimate on any failure, missing API key or past
// travel dates.
func (s *ServiceImpl) SearchFlights(ctx context.Context, params FlightParams) *types.FlightOption {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "SearchFlights")
	defer span.End()
	span.SetAttributes(
		attribute.String("flight.origin", params.Origin),
		attribute.String("flight.destination", params.Destination),
	)

	if s.apiKey == "" || params.DatesInPast {
		span.SetAttributes(attribute.String("flight.source", "estimate"))
		return s.estimateFlight(params)
	}

	option, err := s.fetchFlight(ctx, params)
	if err != nil {
		s.logger.WarnContext(ctx, "Flight search failed, using estimate",
			slog.String("origin", params.Origin),
			slog.String("destination", params.Destination),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "flight search failed")
		return s.estimateFlight(params)
	}

	span.SetStatus(codes.Ok, "flight search succeeded")
	return option
}

func (s *ServiceImpl) fetchFlight(ctx context.Context, params FlightParams) (*types.FlightOption, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("origin", params.Origin)
	q.Set("destination", params.Destination)
	q.Set("depart_date", params.DepartDate)
	q.Set("return_date", params.ReturnDate)
	q.Set("currency", "USD")
	q.Set("token", s.apiKey)

	reqURL := fmt.Sprintf("%s/v1/prices/cheap?%s", strings.TrimSuffix(s.baseURL, "/"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build flight request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight provider returned status %d", resp.StatusCode)
	}

	var payload struct {
		Success bool `json:"success"`
		Data    map[string]map[string]struct {
			Price   float64 `json:"price"`
			Airline string  `json:"airline"`
			Stops   int     `json:"number_of_changes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode flight payload: %w", err)
	}

	best := (*types.FlightOption)(nil)
	for _, byClass := range payload.Data {
		for _, offer := range byClass {
			if offer.Price <= 0 {
				continue
			}
			if best == nil || offer.Price < best.Price {
				best = &types.FlightOption{
					Price:   offer.Price,
					Airline: offer.Airline,
					Stops:   offer.Stops,
					Source:  types.SourceAPI,
				}
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("flight provider returned no offers")
	}

	best.Price = partyPrice(best.Price, params.Adults, params.Children, params.Infants)
	best.BookingURL = fmt.Sprintf("https://www.aviasales.com/search/%s%s", params.Origin, params.Destination)
	return best, nil
}

// estimateFlight synthesizes a plausible round-trip fare when the provider is
// unavailable. Same shape as a live result, tagged Source=estimate.
func (s *ServiceImpl) estimateFlight(params FlightParams) *types.FlightOption {
	perAdult := baseFare(params.Origin, params.Destination) * styleFareFactor(params.TravelStyle)
	price := partyPrice(perAdult, params.Adults, params.Children, params.Infants)
	// Round to a believable step.
	price = float64(int(price/5) * 5)

	return &types.FlightOption{
		Price:   price,
		Airline: estimateAirline(params.Origin, params.Destination),
		Stops:   1,
		Source:  types.SourceEstimate,
	}
}

// baseFare is a rough per-adult round-trip fare keyed on known corridors,
// with a deterministic spread for unknown routes so repeated estimates for the
// same route agree.
func baseFare(origin, destination string) float64 {
	known := map[string]float64{
		"london-paris":    180,
		"london-new york": 520,
		"new york-london": 520,
		"berlin-london":   160,
		"tokyo-seoul":     260,
		"paris-rome":      170,
		"dubai-london":    430,
	}
	key := strings.ToLower(strings.TrimSpace(origin)) + "-" + strings.ToLower(strings.TrimSpace(destination))
	if fare, ok := known[key]; ok {
		return fare
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	// 300-700 USD band for unknown long-haul routes.
	return 300 + float64(h.Sum32()%400)
}

func estimateAirline(origin, destination string) string {
	carriers := []string{"Turkish Airlines", "Lufthansa", "Emirates", "Air France", "KLM"}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(origin + destination)))
	return carriers[h.Sum32()%uint32(len(carriers))]
}
