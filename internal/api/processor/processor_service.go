package processor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/api/daterange"
	"github.com/FACorreiaa/go-trip-planner/internal/api/feasibilitycache"
	"github.com/FACorreiaa/go-trip-planner/internal/api/itinerarylock"
	"github.com/FACorreiaa/go-trip-planner/internal/api/search"
	"github.com/FACorreiaa/go-trip-planner/internal/api/templatecache"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// processTimeout bounds a full pipeline run; it stays under the lock lease so
// a hung run times out before its lease can be taken over mid-write.
const processTimeout = 8 * time.Minute

// AIGenerator is the slice of the Gemini client the pipeline needs.
type AIGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, maxTokens int32) (string, error)
}

// VisaLookup is the slice of the visa service the pipeline needs.
type VisaLookup interface {
	Lookup(ctx context.Context, passport, destination string) *types.VisaRequirement
}

// RateConverter is the slice of the exchange-rate service the pipeline needs.
type RateConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) float64
}

// TripStore is the persistence slice the pipeline writes through.
type TripStore interface {
	UpdateTripFeasibility(ctx context.Context, tripID int64, status types.FeasibilityStatus, report *types.FeasibilityReport) error
	UpdateTripItinerary(ctx context.Context, tripID int64, itinerary *types.Itinerary) error
	// RecordProcessingError stores the failure message without clobbering
	// whatever feasibility data was already persisted this run.
	RecordProcessingError(ctx context.Context, tripID int64, message string) error
}

var _ Service = (*ServiceImpl)(nil)

// Service runs the background trip pipeline: feasibility, pricing, itinerary
// generation and cost synthesis, guarded by the per-trip generation lock.
type Service interface {
	ProcessTrip(ctx context.Context, trip *types.Trip)
	Progress(tripID int64) (*types.ProgressResponse, bool)
}

type ServiceImpl struct {
	logger    *slog.Logger
	store     TripStore
	ai        AIGenerator
	visa      VisaLookup
	flights   search.Service
	rates     RateConverter
	lock      itinerarylock.Service
	feasCache *feasibilitycache.Cache
	templates *templatecache.Cache
	progress  *ProgressTracker
}

func NewServiceImpl(
	store TripStore,
	ai AIGenerator,
	visa VisaLookup,
	flights search.Service,
	rates RateConverter,
	lock itinerarylock.Service,
	feasCache *feasibilitycache.Cache,
	templates *templatecache.Cache,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		store:     store,
		ai:        ai,
		visa:      visa,
		flights:   flights,
		rates:     rates,
		lock:      lock,
		feasCache: feasCache,
		templates: templates,
		progress:  NewProgressTracker(),
	}
}

func (s *ServiceImpl) Progress(tripID int64) (*types.ProgressResponse, bool) {
	return s.progress.Response(tripID)
}

// ProcessTrip executes the whole pipeline for one trip. It is launched on its
// own goroutine by the trip service, so it never returns an error: failures
// are persisted onto the trip row and reflected in the progress record.
func (s *ServiceImpl) ProcessTrip(ctx context.Context, trip *types.Trip) {
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	ctx, span := otel.Tracer("ProcessorService").Start(ctx, "ProcessTrip")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("trip.id", trip.ID),
		attribute.String("trip.destination", trip.DestinationCity),
	)

	l := s.logger.With(slog.Int64("tripID", trip.ID))
	s.progress.Start(trip.ID)
	started := time.Now()
	defer func() {
		metrics.Get().TripProcessingDurationSeconds.Record(ctx, time.Since(started).Seconds())
	}()

	acquire, err := s.lock.Acquire(ctx, trip.ID)
	if err != nil {
		s.fail(ctx, l, span, trip, "", fmt.Errorf("lock acquisition failed: %w", err))
		return
	}
	if !acquire.Acquired {
		l.InfoContext(ctx, "Skipping processing, another run holds the generation lock")
		s.progress.Fail(trip.ID, "Another generation run is already in progress")
		span.SetStatus(codes.Ok, "lock held elsewhere")
		return
	}
	owner := acquire.LockOwner

	heartbeatCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go s.lock.Heartbeat(heartbeatCtx, trip.ID, owner)

	report := s.runFeasibility(ctx, l, trip)
	if err := s.store.UpdateTripFeasibility(ctx, trip.ID, report.Overall, report); err != nil {
		s.fail(ctx, l, span, trip, owner, fmt.Errorf("persisting feasibility failed: %w", err))
		return
	}

	// A hard "no" verdict ends the run: generating an itinerary for a trip
	// the traveler cannot take would only lend it false credibility.
	if report.Overall == types.FeasibilityNo {
		l.InfoContext(ctx, "Trip judged not feasible, skipping itinerary generation")
		if err := s.lock.Release(ctx, trip.ID, owner, types.ItineraryIdle); err != nil {
			l.WarnContext(ctx, "Failed to release generation lock", slog.Any("error", err))
		}
		s.progress.Complete(trip.ID)
		span.SetStatus(codes.Ok, "not feasible, itinerary skipped")
		return
	}

	dates, err := daterange.Parse(trip.DateRange)
	if err != nil {
		s.fail(ctx, l, span, trip, owner, fmt.Errorf("invalid date range: %w", err))
		return
	}

	days, flight, hotel, err := s.gatherItineraryAndPrices(ctx, l, trip, dates)
	if err != nil {
		s.fail(ctx, l, span, trip, owner, err)
		return
	}

	s.progress.Update(trip.ID, types.StepFinalizing, "Calculating costs and saving", "")
	fillActivityCosts(days, trip)
	breakdown := buildCostBreakdown(trip, days, flight, hotel)

	budgetUSD := s.rates.Convert(ctx, trip.Budget, trip.Currency, "USD")
	status := classifyBudget(breakdown.GrandTotal, budgetUSD)
	breakdown.BudgetStatus = status
	syncFeasibilityWithCosts(report, status)

	s.convertBreakdown(ctx, breakdown, trip)

	itinerary := &types.Itinerary{
		Destination:   trip.DestinationCity,
		Days:          days,
		CostBreakdown: breakdown,
	}
	if err := s.store.UpdateTripItinerary(ctx, trip.ID, itinerary); err != nil {
		s.fail(ctx, l, span, trip, owner, fmt.Errorf("persisting itinerary failed: %w", err))
		return
	}
	// Feasibility may have been downgraded by the cost sync; persist again so
	// the stored report matches what clients will read.
	if err := s.store.UpdateTripFeasibility(ctx, trip.ID, report.Overall, report); err != nil {
		l.WarnContext(ctx, "Failed to persist synced feasibility", slog.Any("error", err))
	}

	if err := s.lock.Release(ctx, trip.ID, owner, types.ItineraryComplete); err != nil {
		l.WarnContext(ctx, "Failed to release generation lock", slog.Any("error", err))
	}
	s.progress.Complete(trip.ID)
	l.InfoContext(ctx, "Trip processing complete",
		slog.Int("days", len(days)),
		slog.String("budgetStatus", string(status)))
	span.SetStatus(codes.Ok, "trip processed")
}

// fail persists the error onto the trip, releases the lock if held, and
// leaves the progress record pointing at the failed step.
func (s *ServiceImpl) fail(ctx context.Context, l *slog.Logger, span trace.Span, trip *types.Trip, owner string, err error) {
	l.ErrorContext(ctx, "Trip processing failed", slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "trip processing failed")
	metrics.Get().TripProcessingErrorsTotal.Add(ctx, 1)

	msg := err.Error()
	if persistErr := s.store.RecordProcessingError(ctx, trip.ID, msg); persistErr != nil {
		l.ErrorContext(ctx, "Failed to persist processing error", slog.Any("error", persistErr))
	}
	if owner != "" {
		if relErr := s.lock.Release(ctx, trip.ID, owner, types.ItineraryError); relErr != nil {
			l.WarnContext(ctx, "Failed to release lock after error", slog.Any("error", relErr))
		}
	}
	s.progress.Fail(trip.ID, msg)
}

// runFeasibility serves the verdict from the corridor cache when possible and
// otherwise asks the model, seeded with the deterministic visa lookup. It
// always returns a usable report: an unreachable model degrades to a neutral
// warning rather than blocking the pipeline.
func (s *ServiceImpl) runFeasibility(ctx context.Context, l *slog.Logger, trip *types.Trip) *types.FeasibilityReport {
	s.progress.Update(trip.ID, types.StepFeasibility, "Checking trip feasibility", "")

	if cached := s.feasCache.Get(trip.PassportCountry, trip.DestinationCity); cached != nil {
		l.InfoContext(ctx, "Feasibility served from cache")
		metrics.Get().FeasibilityCacheHitsTotal.Add(ctx, 1)
		// Copy so the later cost sync does not mutate the cached verdict.
		report := *cached
		return &report
	}

	visa := s.visa.Lookup(ctx, trip.PassportCountry, trip.DestinationCity)
	prompt := buildFeasibilityPrompt(trip, visa)

	raw, err := s.ai.GenerateJSON(ctx, prompt, feasibilityMaxTokens)
	if err != nil {
		l.WarnContext(ctx, "Feasibility AI call failed, using neutral fallback", slog.Any("error", err))
		return fallbackFeasibility(visa)
	}

	var report types.FeasibilityReport
	if err := parseJSONObject(raw, &report); err != nil {
		l.WarnContext(ctx, "Feasibility response unparseable, using neutral fallback", slog.Any("error", err))
		return fallbackFeasibility(visa)
	}
	sanitizeFeasibility(&report)

	s.feasCache.Set(trip.PassportCountry, trip.DestinationCity, &report)
	copied := report
	return &copied
}

// fallbackFeasibility is the neutral verdict used when the model is
// unavailable. The visa dimension still reflects the deterministic lookup.
func fallbackFeasibility(visa *types.VisaRequirement) *types.FeasibilityReport {
	report := &types.FeasibilityReport{
		Overall: types.FeasibilityWarning,
		Score:   50,
		Breakdown: types.FeasibilityBreakdown{
			Visa:   types.FeasibilityDimension{Status: types.DimensionWarning, Detail: "Could not verify visa requirements."},
			Budget: types.FeasibilityDimension{Status: types.DimensionWarning, Detail: "Could not assess the budget."},
			Safety: types.FeasibilityDimension{Status: types.DimensionWarning, Detail: "Could not assess safety conditions."},
		},
		Summary: "Automated feasibility assessment was unavailable; review this trip manually.",
	}
	if visa != nil {
		switch visa.Requirement {
		case types.VisaFree, types.VisaOnArrival:
			report.Breakdown.Visa = types.FeasibilityDimension{Status: types.DimensionOK, Detail: "No advance visa needed for this corridor."}
		case types.VisaEVisa:
			report.Breakdown.Visa = types.FeasibilityDimension{Status: types.DimensionWarning, Detail: "An e-visa must be obtained before travel."}
		case types.VisaRequired:
			report.Breakdown.Visa = types.FeasibilityDimension{Status: types.DimensionWarning, Detail: "A visa must be arranged before travel."}
		case types.VisaNoAdmission:
			report.Breakdown.Visa = types.FeasibilityDimension{Status: types.DimensionBlocked, Detail: "Entry is not permitted for this passport."}
			report.Overall = types.FeasibilityNo
			report.Score = 10
		}
	}
	return report
}

// sanitizeFeasibility clamps model output into the documented ranges.
func sanitizeFeasibility(report *types.FeasibilityReport) {
	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}
	switch report.Overall {
	case types.FeasibilityYes, types.FeasibilityWarning, types.FeasibilityNo:
	default:
		report.Overall = types.FeasibilityWarning
	}
	for _, dim := range []*types.FeasibilityDimension{&report.Breakdown.Visa, &report.Breakdown.Budget, &report.Breakdown.Safety} {
		switch dim.Status {
		case types.DimensionOK, types.DimensionWarning, types.DimensionBlocked:
		default:
			dim.Status = types.DimensionWarning
		}
	}
}

// gatherItineraryAndPrices fans out the three independent slow calls. The
// flight and hotel adapters never fail (they degrade to estimates), so only
// the itinerary branch can abort the run.
func (s *ServiceImpl) gatherItineraryAndPrices(ctx context.Context, l *slog.Logger, trip *types.Trip, dates daterange.Range) ([]types.ItineraryDay, *types.FlightOption, *types.HotelOption, error) {
	tripDays := dates.Days()
	inPast := dates.InPast(time.Now())

	var (
		days   []types.ItineraryDay
		flight *types.FlightOption
		hotel  *types.HotelOption
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.progress.Update(trip.ID, types.StepFlights, "Searching flights", "")
		flight = s.flights.SearchFlights(gctx, search.FlightParams{
			Origin:      trip.OriginCity,
			Destination: trip.DestinationCity,
			DepartDate:  dates.Start.Format("2006-01-02"),
			ReturnDate:  dates.End.Format("2006-01-02"),
			Adults:      trip.Adults,
			Children:    trip.Children,
			Infants:     trip.Infants,
			TravelStyle: trip.TravelStyle,
			DatesInPast: inPast,
		})
		return nil
	})

	g.Go(func() error {
		s.progress.Update(trip.ID, types.StepHotels, "Searching hotels", "")
		hotel = s.flights.SearchHotels(gctx, search.HotelParams{
			Destination: trip.DestinationCity,
			CheckIn:     dates.Start.Format("2006-01-02"),
			CheckOut:    dates.End.Format("2006-01-02"),
			Nights:      dates.Nights(),
			Adults:      trip.Adults,
			Children:    trip.Children,
			TravelStyle: trip.TravelStyle,
			DatesInPast: inPast,
		})
		return nil
	})

	g.Go(func() error {
		s.progress.Update(trip.ID, types.StepItinerary, "Generating itinerary",
			fmt.Sprintf("%d days in %s", tripDays, trip.DestinationCity))
		generated, err := s.generateDays(gctx, l, trip, dates, tripDays)
		if err != nil {
			return err
		}
		days = generated
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return days, flight, hotel, nil
}

// generateDays serves rehydrated templates when the destination is cached and
// otherwise asks the model, repairing whatever comes back. Successful fresh
// generations feed the template cache for the next trip to this destination.
func (s *ServiceImpl) generateDays(ctx context.Context, l *slog.Logger, trip *types.Trip, dates daterange.Range, tripDays int) ([]types.ItineraryDay, error) {
	if templates, found := s.templates.Get(trip.DestinationCity); found {
		l.InfoContext(ctx, "Itinerary rehydrated from template cache",
			slog.String("destination", trip.DestinationCity))
		if days := templatecache.Rehydrate(templates, dates.Start, tripDays); len(days) > 0 {
			metrics.Get().TemplateCacheHitsTotal.Add(ctx, 1)
			return days, nil
		}
	}

	raw, err := s.ai.GenerateJSON(ctx, buildItineraryPrompt(trip, tripDays), itineraryTokenBudget(tripDays))
	if err != nil {
		return nil, fmt.Errorf("itinerary generation failed: %w", err)
	}

	payloadDays, err := parseItineraryResponse(raw)
	if err != nil {
		return nil, err
	}

	days := make([]types.ItineraryDay, 0, tripDays)
	for i, pd := range payloadDays {
		if i >= tripDays {
			break
		}
		day := types.ItineraryDay{
			DayNumber: i + 1,
			Date:      dates.Start.AddDate(0, 0, i).Format("2006-01-02"),
			Title:     pd.Title,
		}
		for _, pa := range pd.Activities {
			day.Activities = append(day.Activities, types.Activity{
				Time:          pa.Time,
				Description:   pa.Description,
				Type:          normalizeActivityType(pa.Type),
				Location:      pa.Location,
				EstimatedCost: math.Max(0, pa.EstimatedCost),
			})
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("itinerary response contained no usable days")
	}

	// A truncated response may cover fewer days than the trip; cycle the
	// parsed days to full length rather than leaving a hole.
	for len(days) < tripDays {
		src := days[len(days)%len(payloadDays)]
		next := src
		next.DayNumber = len(days) + 1
		next.Date = dates.Start.AddDate(0, 0, len(days)).Format("2006-01-02")
		days = append(days, next)
	}

	s.templates.Put(trip.DestinationCity, days)
	return days, nil
}

func normalizeActivityType(raw string) types.ActivityType {
	switch types.ActivityType(raw) {
	case types.ActivityMeal:
		return types.ActivityMeal
	case types.ActivityTransport:
		return types.ActivityTransport
	default:
		return types.ActivityGeneral
	}
}

// convertBreakdown translates a USD breakdown into the trip currency in
// place. A USD trip is a no-op. The grand total and per-person figures are
// recomputed from the rounded category values so the total always equals the
// sum of its categories in the currency clients actually see.
func (s *ServiceImpl) convertBreakdown(ctx context.Context, cb *types.CostBreakdown, trip *types.Trip) {
	currency := trip.Currency
	if currency == "" || currency == "USD" {
		return
	}
	convert := func(v float64) float64 {
		return math.Round(s.rates.Convert(ctx, v, "USD", currency))
	}
	cb.Flights = convert(cb.Flights)
	cb.Accommodation = convert(cb.Accommodation)
	cb.Food = convert(cb.Food)
	cb.Activities = convert(cb.Activities)
	cb.LocalTransport = convert(cb.LocalTransport)
	cb.IntercityTransport = convert(cb.IntercityTransport)
	cb.Misc = convert(cb.Misc)
	cb.GrandTotal = cb.Flights + cb.Accommodation + cb.Food + cb.Activities +
		cb.LocalTransport + cb.IntercityTransport + cb.Misc
	if size := trip.GroupSize(); size > 0 {
		cb.PerPerson = math.Round(cb.GrandTotal / float64(size))
	}
	cb.Currency = currency
}
