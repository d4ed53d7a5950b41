package trip

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/api/daterange"
	"github.com/FACorreiaa/go-trip-planner/internal/api/processor"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// customBudgetFloorPerPersonDay is the minimum viable daily spend per person
// a custom-style trip must budget for. Below it the trip cannot be planned
// honestly, so creation is rejected up front.
const customBudgetFloorPerPersonDay = 50.0

// ValidationError distinguishes client-fixable input problems from internal
// failures; handlers map it to a 400 carrying the field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var _ Service = (*ServiceImpl)(nil)

// Service owns trip lifecycle: synchronous validation and persistence, with
// all derived data produced by the background processor.
type Service interface {
	CreateTrip(ctx context.Context, voyageUID *uuid.UUID, req *types.CreateTripRequest) (*types.Trip, error)
	GetTrip(ctx context.Context, tripID int64) (*types.Trip, error)
	ListTrips(ctx context.Context, voyageUID uuid.UUID) ([]*types.Trip, error)
	UpdateTrip(ctx context.Context, tripID int64, req *types.UpdateTripRequest) (*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID int64) error
	UpdateTripImage(ctx context.Context, tripID int64, imageURL string) error
	AdoptTrips(ctx context.Context, voyageUID uuid.UUID, tripIDs []int64) (int64, error)
	GetProgress(ctx context.Context, tripID int64) (*types.ProgressResponse, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	processor processor.Service
	rates     processor.RateConverter
	now       func() time.Time
}

func NewServiceImpl(repo Repository, proc processor.Service, rates processor.RateConverter, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		processor: proc,
		rates:     rates,
		now:       time.Now,
	}
}

// CreateTrip validates, persists, and fires the background pipeline. The
// response returns immediately with pending derived fields; clients poll
// progress and re-fetch.
func (s *ServiceImpl) CreateTrip(ctx context.Context, voyageUID *uuid.UUID, req *types.CreateTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateTrip")
	defer span.End()

	if err := s.validateCreate(ctx, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}
	if req.TravelStyle == "" {
		req.TravelStyle = types.TravelStyleStandard
	}

	trip, err := s.repo.CreateTrip(ctx, voyageUID, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.launchProcessing(trip)
	metrics.Get().TripsCreatedTotal.Add(ctx, 1)

	span.SetAttributes(attribute.Int64("trip.id", trip.ID))
	span.SetStatus(codes.Ok, "trip created")
	return trip, nil
}

// launchProcessing starts the pipeline detached from the request context; the
// run must outlive the HTTP request that triggered it.
func (s *ServiceImpl) launchProcessing(trip *types.Trip) {
	s.logger.Info("Launching background trip processing",
		slog.Int64("tripID", trip.ID),
		slog.String("destination", trip.DestinationCity))
	go s.processor.ProcessTrip(context.Background(), trip)
}

func (s *ServiceImpl) validateCreate(ctx context.Context, req *types.CreateTripRequest) error {
	switch {
	case req.PassportCountry == "":
		return &ValidationError{Field: "passport_country", Message: "passport country is required"}
	case req.OriginCity == "":
		return &ValidationError{Field: "origin_city", Message: "origin city is required"}
	case req.DestinationCity == "":
		return &ValidationError{Field: "destination_city", Message: "destination city is required"}
	case req.Currency == "":
		return &ValidationError{Field: "currency", Message: "currency is required"}
	case req.Budget <= 0:
		return &ValidationError{Field: "budget", Message: "budget must be positive"}
	case req.Adults < 1:
		return &ValidationError{Field: "adults", Message: "at least one adult is required"}
	case req.Children < 0 || req.Infants < 0:
		return &ValidationError{Field: "children", Message: "traveler counts cannot be negative"}
	}

	switch req.TravelStyle {
	case "", types.TravelStyleBudget, types.TravelStyleStandard, types.TravelStyleLuxury, types.TravelStyleCustom:
	default:
		return &ValidationError{Field: "travel_style", Message: "unknown travel style"}
	}

	dates, err := daterange.Parse(req.DateRange)
	if err != nil {
		return &ValidationError{Field: "date_range", Message: err.Error()}
	}
	if dates.InPast(s.now()) {
		return &ValidationError{Field: "date_range", Message: "trip dates are entirely in the past"}
	}

	// Custom style means the traveler set the budget by hand; hold it to the
	// minimum viable spend so the pipeline is not asked for the impossible.
	if req.TravelStyle == types.TravelStyleCustom {
		budgetUSD := s.rates.Convert(ctx, req.Budget, req.Currency, "USD")
		floor := customBudgetFloorPerPersonDay * float64(req.GroupSize()) * float64(dates.Days())
		if budgetUSD < floor {
			return &ValidationError{Field: "budget", Message: "budget is below the minimum viable spend for this party and trip length"}
		}
	}
	return nil
}

func (s *ServiceImpl) GetTrip(ctx context.Context, tripID int64) (*types.Trip, error) {
	return s.repo.GetTrip(ctx, tripID)
}

func (s *ServiceImpl) ListTrips(ctx context.Context, voyageUID uuid.UUID) ([]*types.Trip, error) {
	return s.repo.ListTrips(ctx, voyageUID)
}

// UpdateTrip applies a partial edit, which resets all derived data, then
// relaunches the pipeline against the merged attributes.
func (s *ServiceImpl) UpdateTrip(ctx context.Context, tripID int64, req *types.UpdateTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateTrip")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	if req.IsEmpty() {
		return nil, &ValidationError{Field: "body", Message: "no fields to update"}
	}
	if err := s.validateUpdate(req); err != nil {
		span.RecordError(err)
		return nil, err
	}

	trip, err := s.repo.UpdateTrip(ctx, tripID, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.launchProcessing(trip)
	span.SetStatus(codes.Ok, "trip updated")
	return trip, nil
}

func (s *ServiceImpl) validateUpdate(req *types.UpdateTripRequest) error {
	if req.Budget != nil && *req.Budget <= 0 {
		return &ValidationError{Field: "budget", Message: "budget must be positive"}
	}
	if req.Adults != nil && *req.Adults < 1 {
		return &ValidationError{Field: "adults", Message: "at least one adult is required"}
	}
	if (req.Children != nil && *req.Children < 0) || (req.Infants != nil && *req.Infants < 0) {
		return &ValidationError{Field: "children", Message: "traveler counts cannot be negative"}
	}
	if req.TravelStyle != nil {
		switch *req.TravelStyle {
		case types.TravelStyleBudget, types.TravelStyleStandard, types.TravelStyleLuxury, types.TravelStyleCustom:
		default:
			return &ValidationError{Field: "travel_style", Message: "unknown travel style"}
		}
	}
	if req.DateRange != nil {
		dates, err := daterange.Parse(*req.DateRange)
		if err != nil {
			return &ValidationError{Field: "date_range", Message: err.Error()}
		}
		if dates.InPast(s.now()) {
			return &ValidationError{Field: "date_range", Message: "trip dates are entirely in the past"}
		}
	}
	return nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, tripID int64) error {
	return s.repo.DeleteTrip(ctx, tripID)
}

func (s *ServiceImpl) UpdateTripImage(ctx context.Context, tripID int64, imageURL string) error {
	if imageURL == "" {
		return &ValidationError{Field: "image_url", Message: "image URL is required"}
	}
	return s.repo.UpdateTripImage(ctx, tripID, imageURL)
}

func (s *ServiceImpl) AdoptTrips(ctx context.Context, voyageUID uuid.UUID, tripIDs []int64) (int64, error) {
	adopted, err := s.repo.AdoptTrips(ctx, voyageUID, tripIDs)
	if err != nil {
		return 0, err
	}
	if adopted > 0 {
		s.logger.InfoContext(ctx, "Adopted orphan trips",
			slog.String("voyageUID", voyageUID.String()),
			slog.Int64("adopted", adopted))
	}
	return adopted, nil
}

// GetProgress prefers the live in-memory record. After a restart (or once the
// record has been retired) progress is derived from the persisted trip state
// so the client never sees a 404 for a trip that exists.
func (s *ServiceImpl) GetProgress(ctx context.Context, tripID int64) (*types.ProgressResponse, error) {
	if resp, ok := s.processor.Progress(tripID); ok {
		return resp, nil
	}

	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return deriveProgress(trip), nil
}

// deriveProgress reconstructs a coarse progress response from persisted
// columns alone.
func deriveProgress(trip *types.Trip) *types.ProgressResponse {
	resp := &types.ProgressResponse{TotalSteps: types.TotalProcessSteps}
	switch {
	case trip.Itinerary != nil:
		resp.Step = types.StepComplete
		resp.Message = "Trip processing complete"
		resp.PercentComplete = 100
	case trip.FeasibilityStatus != types.FeasibilityPending:
		resp.Step = types.StepItinerary
		resp.Message = "Generating itinerary"
		step := float64(resp.Step)
		resp.PercentComplete = int(step / types.TotalProcessSteps * 100)
	default:
		resp.Step = types.StepStarting
		resp.Message = "Waiting for processing to start"
		resp.PercentComplete = 0
	}
	if trip.FeasibilityError != nil {
		resp.Details = *trip.FeasibilityError
	}
	return resp
}

// IsValidationError reports whether err is a client input problem.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
