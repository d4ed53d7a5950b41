package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPartyPrice(t *testing.T) {
	t.Run("adults pay full fare", func(t *testing.T) {
		assert.Equal(t, 400.0, partyPrice(200, 2, 0, 0))
	})

	t.Run("children pay three quarters", func(t *testing.T) {
		assert.Equal(t, 350.0, partyPrice(200, 1, 1, 0))
	})

	t.Run("infants pay a tenth", func(t *testing.T) {
		assert.Equal(t, 220.0, partyPrice(200, 1, 0, 1))
	})

	t.Run("at least one adult is assumed", func(t *testing.T) {
		assert.Equal(t, 200.0, partyPrice(200, 0, 0, 0))
	})
}

func TestStyleFareFactor(t *testing.T) {
	assert.Equal(t, 0.75, styleFareFactor(types.TravelStyleBudget))
	assert.Equal(t, 1.0, styleFareFactor(types.TravelStyleStandard))
	assert.Equal(t, 1.8, styleFareFactor(types.TravelStyleLuxury))
	assert.Equal(t, 1.0, styleFareFactor(types.TravelStyleCustom))
}

func TestSearchFlights_EstimateFallbacks(t *testing.T) {
	params := FlightParams{
		Origin:      "Lisbon",
		Destination: "Tokyo",
		Adults:      2,
		TravelStyle: types.TravelStyleStandard,
	}

	t.Run("missing API key uses estimate", func(t *testing.T) {
		svc := NewServiceImpl("http://unused.invalid", "", testLogger())
		option := svc.SearchFlights(context.Background(), params)
		require.NotNil(t, option)
		assert.Equal(t, types.SourceEstimate, option.Source)
		assert.Greater(t, option.Price, 0.0)
	})

	t.Run("past dates skip the provider", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer server.Close()

		svc := NewServiceImpl(server.URL, "key", testLogger())
		p := params
		p.DatesInPast = true
		option := svc.SearchFlights(context.Background(), p)
		assert.Equal(t, types.SourceEstimate, option.Source)
		assert.Zero(t, calls)
	})

	t.Run("estimates are deterministic per route", func(t *testing.T) {
		svc := NewServiceImpl("http://unused.invalid", "", testLogger())
		first := svc.SearchFlights(context.Background(), params)
		second := svc.SearchFlights(context.Background(), params)
		assert.Equal(t, first.Price, second.Price)
		assert.Equal(t, first.Airline, second.Airline)
	})

	t.Run("provider error falls back to estimate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		svc := NewServiceImpl(server.URL, "key", testLogger())
		option := svc.SearchFlights(context.Background(), params)
		require.NotNil(t, option)
		assert.Equal(t, types.SourceEstimate, option.Source)
	})
}

func TestSearchFlights_ProviderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Lisbon", r.URL.Query().Get("origin"))
		assert.Equal(t, "key", r.URL.Query().Get("token"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"TYO": map[string]any{
					"0": map[string]any{"price": 650.0, "airline": "NH", "number_of_changes": 0},
					"1": map[string]any{"price": 480.0, "airline": "TK", "number_of_changes": 1},
				},
			},
		})
	}))
	defer server.Close()

	svc := NewServiceImpl(server.URL, "key", testLogger())
	option := svc.SearchFlights(context.Background(), FlightParams{
		Origin:      "Lisbon",
		Destination: "Tokyo",
		Adults:      2,
		Children:    1,
	})

	require.NotNil(t, option)
	assert.Equal(t, types.SourceAPI, option.Source)
	assert.Equal(t, "TK", option.Airline) // cheapest offer wins
	// 480 per adult: 2 adults + 1 child at 75%
	assert.Equal(t, 480.0*2+480.0*0.75, option.Price)
	assert.NotEmpty(t, option.BookingURL)
}

func TestSearchFlights_NoOffersFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{}})
	}))
	defer server.Close()

	svc := NewServiceImpl(server.URL, "key", testLogger())
	option := svc.SearchFlights(context.Background(), FlightParams{Origin: "A", Destination: "B", Adults: 1})
	assert.Equal(t, types.SourceEstimate, option.Source)
}

func TestSearchHotels_ProviderSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Tokyo", r.URL.Query().Get("location"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"hotelName": "Shinjuku Stay", "stars": 4.0, "priceFrom": 140.0, "location": map[string]any{"name": "Shinjuku"}},
			{"hotelName": "Ginza Grand", "stars": 5.0, "priceFrom": 300.0, "location": map[string]any{"name": "Ginza"}},
		})
	}))
	defer server.Close()

	svc := NewServiceImpl(server.URL, "key", testLogger())
	option := svc.SearchHotels(context.Background(), HotelParams{
		Destination: "Tokyo",
		Nights:      6,
		Adults:      2,
	})

	require.NotNil(t, option)
	assert.Equal(t, types.SourceAPI, option.Source)
	assert.Equal(t, "Shinjuku Stay", option.Name) // cheapest priced offer wins
	assert.Equal(t, 140.0, option.PricePerNight)
	assert.Equal(t, 840.0, option.TotalPrice)
}

func TestSearchHotels_Estimates(t *testing.T) {
	svc := NewServiceImpl("http://unused.invalid", "", testLogger())

	t.Run("expensive city raises the nightly rate", func(t *testing.T) {
		tokyo := svc.SearchHotels(context.Background(), HotelParams{Destination: "Tokyo, Japan", Nights: 2, Adults: 2})
		bangkok := svc.SearchHotels(context.Background(), HotelParams{Destination: "Bangkok, Thailand", Nights: 2, Adults: 2})
		assert.Equal(t, types.SourceEstimate, tokyo.Source)
		assert.Greater(t, tokyo.PricePerNight, bangkok.PricePerNight)
	})

	t.Run("large parties pay the family premium", func(t *testing.T) {
		couple := svc.SearchHotels(context.Background(), HotelParams{Destination: "Rome", Nights: 1, Adults: 2})
		family := svc.SearchHotels(context.Background(), HotelParams{Destination: "Rome", Nights: 1, Adults: 2, Children: 2})
		assert.InDelta(t, couple.PricePerNight*1.6, family.PricePerNight, 0.01)
	})

	t.Run("total scales by nights with a one-night floor", func(t *testing.T) {
		stay := svc.SearchHotels(context.Background(), HotelParams{Destination: "Rome", Nights: 0, Adults: 1})
		assert.Equal(t, stay.PricePerNight, stay.TotalPrice)
	})
}
