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

// SearchHotels returns the best hotel offer for the stay, degrading to a
// synthesized estimate on provider failure, missing key or past dates.
func (s *ServiceImpl) SearchHotels(ctx context.Context, params HotelParams) *types.HotelOption {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "SearchHotels")
	defer span.End()
	span.SetAttributes(
		attribute.String("hotel.destination", params.Destination),
		attribute.Int("hotel.nights", params.Nights),
	)

	if s.apiKey == "" || params.DatesInPast {
		span.SetAttributes(attribute.String("hotel.source", "estimate"))
		return s.estimateHotel(params)
	}

	option, err := s.fetchHotel(ctx, params)
	if err != nil {
		s.logger.WarnContext(ctx, "Hotel search failed, using estimate",
			slog.String("destination", params.Destination),
			slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "hotel search failed")
		return s.estimateHotel(params)
	}

	span.SetStatus(codes.Ok, "hotel search succeeded")
	return option
}

func (s *ServiceImpl) fetchHotel(ctx context.Context, params HotelParams) (*types.HotelOption, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("location", params.Destination)
	q.Set("checkIn", params.CheckIn)
	q.Set("checkOut", params.CheckOut)
	q.Set("adults", fmt.Sprintf("%d", params.Adults))
	q.Set("currency", "USD")
	q.Set("token", s.apiKey)

	reqURL := fmt.Sprintf("%s/api/v2/cache.json?%s", strings.TrimSuffix(s.baseURL, "/"), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build hotel request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hotel request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hotel provider returned status %d", resp.StatusCode)
	}

	var offers []struct {
		HotelName string  `json:"hotelName"`
		Stars     float64 `json:"stars"`
		PriceFrom float64 `json:"priceFrom"`
		Location  struct {
			Name string `json:"name"`
		} `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&offers); err != nil {
		return nil, fmt.Errorf("failed to decode hotel payload: %w", err)
	}
	if len(offers) == 0 {
		return nil, fmt.Errorf("hotel provider returned no offers")
	}

	best := offers[0]
	for _, o := range offers[1:] {
		if o.PriceFrom > 0 && (best.PriceFrom <= 0 || o.PriceFrom < best.PriceFrom) {
			best = o
		}
	}
	if best.PriceFrom <= 0 {
		return nil, fmt.Errorf("hotel provider returned no priced offers")
	}

	nights := params.Nights
	if nights < 1 {
		nights = 1
	}
	return &types.HotelOption{
		PricePerNight: best.PriceFrom,
		TotalPrice:    best.PriceFrom * float64(nights),
		Name:          best.HotelName,
		Rating:        best.Stars,
		Location:      best.Location.Name,
		BookingURL:    fmt.Sprintf("https://search.hotellook.com/?destination=%s", url.QueryEscape(params.Destination)),
		Source:        types.SourceAPI,
	}, nil
}

var expensiveCityKeywords = []string{
	"tokyo", "zurich", "geneva", "london", "new york", "singapore", "paris",
	"dubai", "sydney", "oslo", "copenhagen", "reykjavik", "hong kong",
}

var budgetCityKeywords = []string{
	"bangkok", "hanoi", "bali", "lisbon", "mexico city", "istanbul", "cairo",
	"delhi", "manila", "tbilisi", "budapest", "kathmandu",
}

func (s *ServiceImpl) estimateHotel(params HotelParams) *types.HotelOption {
	nightly := 110.0
	dest := strings.ToLower(params.Destination)
	for _, kw := range expensiveCityKeywords {
		if strings.Contains(dest, kw) {
			nightly = 220.0
			break
		}
	}
	for _, kw := range budgetCityKeywords {
		if strings.Contains(dest, kw) {
			nightly = 45.0
			break
		}
	}
	nightly *= styleFareFactor(params.TravelStyle)
	if params.Adults+params.Children > 2 {
		// Second room or family suite.
		nightly *= 1.6
	}

	nights := params.Nights
	if nights < 1 {
		nights = 1
	}

	h := fnv.New32a()
	h.Write([]byte(dest))
	names := []string{"Central Plaza Hotel", "Old Town Boutique Stay", "Riverside Inn", "Grand Meridian", "City Garden Hotel"}

	return &types.HotelOption{
		PricePerNight: nightly,
		TotalPrice:    nightly * float64(nights),
		Name:          names[h.Sum32()%uint32(len(names))],
		Rating:        3.5 + float64(h.Sum32()%15)/10.0,
		Location:      params.Destination,
		Source:        types.SourceEstimate,
	}
}
