package visa

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

func newTestService(t *testing.T, apiURL, apiKey string) *ServiceImpl {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc, err := NewServiceImpl(apiURL, apiKey, logger)
	require.NoError(t, err)
	return svc
}

func TestNormalizeCountry(t *testing.T) {
	cases := map[string]string{
		"  United States ": "united states",
		"USA":              "united states",
		"us":               "united states",
		"UK":               "united kingdom",
		"Great Britain":    "united kingdom",
		"UAE":              "united arab emirates",
		"Tokyo, Japan":     "japan",
		"Paris, France":    "france",
		"Portugal":         "portugal",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCountry(in), "input: %q", in)
	}
}

func TestLookup_CuratedBeatsPassportIndex(t *testing.T) {
	svc := newTestService(t, "", "")

	// The bulk index also carries united kingdom -> france; the curated file
	// must win and bring its notes along.
	req := svc.Lookup(context.Background(), "United Kingdom", "Paris, France")
	require.NotNil(t, req)
	assert.Equal(t, types.VisaSourceCurated, req.Source)
	assert.Equal(t, types.VisaFree, req.Requirement)
	assert.Equal(t, 90, req.AllowedDays)
	assert.NotEmpty(t, req.Notes)
}

func TestLookup_PassportIndex(t *testing.T) {
	svc := newTestService(t, "", "")

	req := svc.Lookup(context.Background(), "United Kingdom", "Bangkok, Thailand")
	require.NotNil(t, req)
	assert.Equal(t, types.VisaSourcePassportIndex, req.Source)
	assert.Equal(t, types.VisaFree, req.Requirement)
	assert.Equal(t, 30, req.AllowedDays)
}

func TestLookup_AliasResolution(t *testing.T) {
	svc := newTestService(t, "", "")

	req := svc.Lookup(context.Background(), "USA", "Tokyo, Japan")
	require.NotNil(t, req)
	// Alias and city folding both applied; curated corridor wins.
	assert.Equal(t, types.VisaSourceCurated, req.Source)
	assert.Equal(t, types.VisaFree, req.Requirement)
}

func TestLookup_ConservativeDefault(t *testing.T) {
	svc := newTestService(t, "", "")

	req := svc.Lookup(context.Background(), "Atlantis", "Narnia")
	require.NotNil(t, req)
	assert.Equal(t, types.VisaRequired, req.Requirement)
	assert.NotEmpty(t, req.Notes)
}

func TestLookup_APIFallback(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "atlantis", r.URL.Query().Get("passport"))
		json.NewEncoder(w).Encode(map[string]any{
			"requirement":  "e_visa",
			"allowed_days": 30,
			"notes":        "Apply online.",
		})
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, "secret")
	ctx := context.Background()

	req := svc.Lookup(ctx, "Atlantis", "Japan")
	require.NotNil(t, req)
	assert.Equal(t, types.VisaSourceAPI, req.Source)
	assert.Equal(t, types.VisaEVisa, req.Requirement)
	assert.Equal(t, 30, req.AllowedDays)

	// Second lookup for the same corridor is served from the 30-day cache.
	svc.Lookup(ctx, "Atlantis", "Japan")
	assert.Equal(t, 1, calls)
}

func TestLookup_APIFailureFallsBackConservative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestService(t, server.URL, "secret")
	req := svc.Lookup(context.Background(), "Atlantis", "Narnia")
	require.NotNil(t, req)
	assert.Equal(t, types.VisaRequired, req.Requirement)
}
