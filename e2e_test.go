package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// E2ETestSuite exercises the full client workflow against a mock API server:
// create a trip, poll progress, fetch the processed result, compare plans.
type E2ETestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  *http.Client
	baseURL string

	mu      sync.Mutex
	trips   map[int64]*types.Trip
	nextID  int64
	voyage  uuid.UUID
}

func (suite *E2ETestSuite) SetupSuite() {
	suite.trips = make(map[int64]*types.Trip)
	suite.nextID = 1
	suite.voyage = uuid.New()
	suite.server = httptest.NewServer(suite.buildMockAPI())
	suite.client = &http.Client{Timeout: 5 * time.Second}
	suite.baseURL = suite.server.URL
}

func (suite *E2ETestSuite) TearDownSuite() {
	suite.server.Close()
}

// buildMockAPI simulates the trip endpoints with the background pipeline
// collapsed to an immediate synchronous completion.
func (suite *E2ETestSuite) buildMockAPI() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/trips", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req types.CreateTripRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.DestinationCity == "" || req.Adults < 1 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid trip request"})
			return
		}

		suite.mu.Lock()
		trip := &types.Trip{
			ID:                suite.nextID,
			PassportCountry:   req.PassportCountry,
			OriginCity:        req.OriginCity,
			DestinationCity:   req.DestinationCity,
			DateRange:         req.DateRange,
			Currency:          req.Currency,
			Budget:            req.Budget,
			Adults:            req.Adults,
			TravelStyle:       req.TravelStyle,
			FeasibilityStatus: types.FeasibilityPending,
			ItineraryStatus:   types.ItineraryIdle,
			CreatedAt:         time.Now(),
		}
		suite.nextID++
		suite.trips[trip.ID] = trip
		snapshot := *trip
		suite.mu.Unlock()

		// Simulated pipeline: by the time the client polls, processing is done.
		go suite.completeProcessing(snapshot.ID)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(snapshot)
	})

	mux.HandleFunc("/api/v1/trips/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/v1/trips/")
		parts := strings.Split(rest, "/")

		var id int64
		fmt.Sscanf(parts[0], "%d", &id)

		suite.mu.Lock()
		trip, ok := suite.trips[id]
		var snapshot types.Trip
		if ok {
			snapshot = *trip
		}
		suite.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if len(parts) > 1 && parts[1] == "progress" {
			resp := types.ProgressResponse{
				Step:            types.StepComplete,
				Message:         "Trip processing complete",
				TotalSteps:      types.TotalProcessSteps,
				PercentComplete: 100,
			}
			if snapshot.Itinerary == nil {
				resp.Step = types.StepItinerary
				resp.Message = "Generating itinerary"
				resp.PercentComplete = 66
			}
			json.NewEncoder(w).Encode(resp)
			return
		}

		json.NewEncoder(w).Encode(snapshot)
	})

	return mux
}

// completeProcessing fills in the derived fields the way the real pipeline
// would: a feasibility verdict, a full-length itinerary, and a cost breakdown.
func (suite *E2ETestSuite) completeProcessing(tripID int64) {
	suite.mu.Lock()
	defer suite.mu.Unlock()

	trip := suite.trips[tripID]
	days := make([]types.ItineraryDay, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, types.ItineraryDay{
			DayNumber: i + 1,
			Date:      fmt.Sprintf("2026-09-%02d", i+1),
			Title:     "Exploring " + trip.DestinationCity,
			Activities: []types.Activity{
				{Time: "09:00", Description: "Morning walk", Type: types.ActivityGeneral, EstimatedCost: 20},
				{Time: "12:30", Description: "Local lunch", Type: types.ActivityMeal, EstimatedCost: 25},
			},
		})
	}

	trip.FeasibilityStatus = types.FeasibilityYes
	trip.FeasibilityReport = &types.FeasibilityReport{
		Overall: types.FeasibilityYes,
		Score:   82,
		Summary: "Well within reach for this party and budget.",
		Breakdown: types.FeasibilityBreakdown{
			Visa:   types.FeasibilityDimension{Status: types.DimensionOK},
			Budget: types.FeasibilityDimension{Status: types.DimensionOK},
			Safety: types.FeasibilityDimension{Status: types.DimensionOK},
		},
	}
	trip.Itinerary = &types.Itinerary{
		Destination: trip.DestinationCity,
		Days:        days,
		CostBreakdown: &types.CostBreakdown{
			Currency:      trip.Currency,
			Flights:       1100,
			Accommodation: 850,
			Food:          350,
			Activities:    280,
			GrandTotal:    2580,
			PerPerson:     1290,
		},
	}
	trip.ItineraryStatus = types.ItineraryComplete
}

func (suite *E2ETestSuite) createTrip(req types.CreateTripRequest) *types.Trip {
	body, err := json.Marshal(req)
	require.NoError(suite.T(), err)

	httpReq, err := http.NewRequest(http.MethodPost, suite.baseURL+"/api/v1/trips", bytes.NewReader(body))
	require.NoError(suite.T(), err)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Voyage-UID", suite.voyage.String())

	resp, err := suite.client.Do(httpReq)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()
	require.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	var trip types.Trip
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&trip))
	return &trip
}

func (suite *E2ETestSuite) TestTripLifecycle() {
	trip := suite.createTrip(types.CreateTripRequest{
		PassportCountry: "Portugal",
		OriginCity:      "Lisbon",
		DestinationCity: "Tokyo, Japan",
		DateRange:       "2026-09-01 to 2026-09-07",
		Currency:        "EUR",
		Budget:          4000,
		Adults:          2,
		TravelStyle:     types.TravelStyleStandard,
	})

	assert.NotZero(suite.T(), trip.ID)
	assert.Equal(suite.T(), types.FeasibilityPending, trip.FeasibilityStatus)
	assert.Nil(suite.T(), trip.Itinerary)

	// Poll progress until the pipeline reports completion.
	deadline := time.Now().Add(3 * time.Second)
	var progress types.ProgressResponse
	for time.Now().Before(deadline) {
		resp, err := suite.client.Get(fmt.Sprintf("%s/api/v1/trips/%d/progress", suite.baseURL, trip.ID))
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&progress))
		resp.Body.Close()
		if progress.Step == types.StepComplete {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	require.Equal(suite.T(), types.StepComplete, progress.Step)
	assert.Equal(suite.T(), 100, progress.PercentComplete)

	// The processed trip carries a full week of days and synthesized costs.
	resp, err := suite.client.Get(fmt.Sprintf("%s/api/v1/trips/%d", suite.baseURL, trip.ID))
	require.NoError(suite.T(), err)
	defer resp.Body.Close()

	var processed types.Trip
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&processed))
	assert.Equal(suite.T(), types.FeasibilityYes, processed.FeasibilityStatus)
	require.NotNil(suite.T(), processed.Itinerary)
	assert.Len(suite.T(), processed.Itinerary.Days, 7)
	require.NotNil(suite.T(), processed.Itinerary.CostBreakdown)
	assert.Greater(suite.T(), processed.Itinerary.CostBreakdown.GrandTotal, 0.0)
	assert.Equal(suite.T(), types.ItineraryComplete, processed.ItineraryStatus)
}

func (suite *E2ETestSuite) TestCreateTripValidation() {
	body := []byte(`{"passport_country": "Portugal", "adults": 0}`)
	httpReq, err := http.NewRequest(http.MethodPost, suite.baseURL+"/api/v1/trips", bytes.NewReader(body))
	require.NoError(suite.T(), err)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := suite.client.Do(httpReq)
	require.NoError(suite.T(), err)
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *E2ETestSuite) TestGetUnknownTrip() {
	resp, err := suite.client.Get(suite.baseURL + "/api/v1/trips/999999")
	require.NoError(suite.T(), err)
	defer resp.Body.Close()
	assert.Equal(suite.T(), http.StatusNotFound, resp.StatusCode)
}

func TestE2ETestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end suite in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
