package rates

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

func TestGetRates_LiveFetchAndCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		json.NewEncoder(w).Encode(map[string]any{
			"rates": map[string]float64{"EUR": 0.9, "GBP": 0.8},
		})
	}))
	defer server.Close()

	svc := NewServiceImpl(server.URL, testLogger())
	ctx := context.Background()

	rates := svc.GetRates(ctx)
	require.NotNil(t, rates)
	assert.Equal(t, types.SourceAPI, rates.Source)
	assert.Equal(t, 0.9, rates.Rates["EUR"])

	// Second call is served from cache.
	svc.GetRates(ctx)
	assert.Equal(t, 1, calls)
}

func TestGetRates_FallsBackOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := NewServiceImpl(server.URL, testLogger())
	rates := svc.GetRates(context.Background())

	require.NotNil(t, rates)
	assert.Equal(t, types.SourceEstimate, rates.Source)
	assert.Equal(t, 1.0, rates.Rates["USD"])
	assert.NotZero(t, rates.Rates["EUR"])
}

func TestGetRates_EmptyTableFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"rates": map[string]float64{}})
	}))
	defer server.Close()

	svc := NewServiceImpl(server.URL, testLogger())
	rates := svc.GetRates(context.Background())
	assert.Equal(t, types.SourceEstimate, rates.Source)
}

func TestConvert(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"rates": map[string]float64{"EUR": 0.5, "GBP": 0.25},
		})
	}))
	defer server.Close()

	svc := NewServiceImpl(server.URL, testLogger())
	ctx := context.Background()

	t.Run("same currency passes through", func(t *testing.T) {
		assert.Equal(t, 100.0, svc.Convert(ctx, 100, "USD", "USD"))
		assert.Equal(t, 100.0, svc.Convert(ctx, 100, "eur", "EUR"))
	})

	t.Run("zero amount passes through", func(t *testing.T) {
		assert.Zero(t, svc.Convert(ctx, 0, "EUR", "USD"))
	})

	t.Run("converts via USD base", func(t *testing.T) {
		assert.Equal(t, 200.0, svc.Convert(ctx, 100, "EUR", "USD"))
		assert.Equal(t, 50.0, svc.Convert(ctx, 100, "USD", "EUR"))
		// EUR -> GBP crosses through USD.
		assert.Equal(t, 50.0, svc.Convert(ctx, 100, "EUR", "GBP"))
	})

	t.Run("unknown codes pass the amount through", func(t *testing.T) {
		assert.Equal(t, 100.0, svc.Convert(ctx, 100, "XXX", "USD"))
		assert.Equal(t, 100.0, svc.Convert(ctx, 100, "USD", "ZZZ"))
	})

	t.Run("case and whitespace are normalized", func(t *testing.T) {
		assert.Equal(t, 200.0, svc.Convert(ctx, 100, " eur ", "usd"))
	})
}
