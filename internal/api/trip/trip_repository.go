package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*PostgresTripRepo)(nil)

type Repository interface {
	CreateTrip(ctx context.Context, voyageUID *uuid.UUID, req *types.CreateTripRequest) (*types.Trip, error)
	GetTrip(ctx context.Context, tripID int64) (*types.Trip, error)
	ListTrips(ctx context.Context, voyageUID uuid.UUID) ([]*types.Trip, error)
	UpdateTrip(ctx context.Context, tripID int64, req *types.UpdateTripRequest) (*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID int64) error

	UpdateTripFeasibility(ctx context.Context, tripID int64, status types.FeasibilityStatus, report *types.FeasibilityReport) error
	RecordProcessingError(ctx context.Context, tripID int64, message string) error
	UpdateTripItinerary(ctx context.Context, tripID int64, itinerary *types.Itinerary) error
	UpdateTripImage(ctx context.Context, tripID int64, imageURL string) error
	// AdoptTrips assigns ownerless trips to a voyage UID, returning how many
	// rows were claimed. Trips that already have an owner are left alone.
	AdoptTrips(ctx context.Context, voyageUID uuid.UUID, tripIDs []int64) (int64, error)
}

type PostgresTripRepo struct {
	logger *slog.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresTripRepo(pgpool *pgxpool.Pool, logger *slog.Logger) *PostgresTripRepo {
	return &PostgresTripRepo{logger: logger, pgpool: pgpool}
}

// observeQuery feeds the db query instruments after the statement settles.
func observeQuery(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

const tripColumns = `id, voyage_uid, passport_country, residence_country, origin_city,
	destination_city, destination_image, date_range, currency, budget,
	adults, children, infants, travel_style,
	feasibility_status, feasibility_report, feasibility_error,
	itinerary, itinerary_status, itinerary_locked_at, itinerary_lock_owner,
	created_at, updated_at`

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var t types.Trip
	var reportJSON, itineraryJSON []byte

	err := row.Scan(
		&t.ID, &t.VoyageUID, &t.PassportCountry, &t.ResidenceCountry, &t.OriginCity,
		&t.DestinationCity, &t.DestinationImage, &t.DateRange, &t.Currency, &t.Budget,
		&t.Adults, &t.Children, &t.Infants, &t.TravelStyle,
		&t.FeasibilityStatus, &reportJSON, &t.FeasibilityError,
		&itineraryJSON, &t.ItineraryStatus, &t.ItineraryLockedAt, &t.ItineraryLockOwner,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(reportJSON) > 0 {
		var report types.FeasibilityReport
		if err := json.Unmarshal(reportJSON, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feasibility report: %w", err)
		}
		t.FeasibilityReport = &report
	}
	if len(itineraryJSON) > 0 {
		var itinerary types.Itinerary
		if err := json.Unmarshal(itineraryJSON, &itinerary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal itinerary: %w", err)
		}
		t.Itinerary = &itinerary
	}
	return &t, nil
}

func (r *PostgresTripRepo) CreateTrip(ctx context.Context, voyageUID *uuid.UUID, req *types.CreateTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "CreateTrip")
	defer span.End()

	query := fmt.Sprintf(`
        INSERT INTO trips (
            voyage_uid, passport_country, residence_country, origin_city,
            destination_city, date_range, currency, budget,
            adults, children, infants, travel_style,
            feasibility_status, itinerary_status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING %s`, tripColumns)

	start := time.Now()
	row := r.pgpool.QueryRow(ctx, query,
		voyageUID, req.PassportCountry, req.ResidenceCountry, req.OriginCity,
		req.DestinationCity, req.DateRange, req.Currency, req.Budget,
		req.Adults, req.Children, req.Infants, req.TravelStyle,
		types.FeasibilityPending, types.ItineraryIdle,
	)
	trip, err := scanTrip(row)
	observeQuery(ctx, "create_trip", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	span.SetAttributes(attribute.Int64("trip.id", trip.ID))
	span.SetStatus(codes.Ok, "trip created")
	return trip, nil
}

func (r *PostgresTripRepo) GetTrip(ctx context.Context, tripID int64) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "GetTrip")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	query := fmt.Sprintf("SELECT %s FROM trips WHERE id = $1", tripColumns)
	start := time.Now()
	trip, err := scanTrip(r.pgpool.QueryRow(ctx, query, tripID))
	observeQuery(ctx, "get_trip", start, err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("trip %d not found", tripID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch trip %d: %w", tripID, err)
	}
	return trip, nil
}

func (r *PostgresTripRepo) ListTrips(ctx context.Context, voyageUID uuid.UUID) ([]*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "ListTrips")
	defer span.End()

	query := fmt.Sprintf("SELECT %s FROM trips WHERE voyage_uid = $1 ORDER BY created_at DESC", tripColumns)
	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, voyageUID)
	observeQuery(ctx, "list_trips", start, err)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	var trips []*types.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan trip row: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trip listing failed: %w", err)
	}
	return trips, nil
}

// UpdateTrip applies the partial edit and atomically resets every derived
// column in the same statement, so a poll between the edit and the next
// processing run can never observe stale feasibility or itinerary data.
func (r *PostgresTripRepo) UpdateTrip(ctx context.Context, tripID int64, req *types.UpdateTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "UpdateTrip")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.PassportCountry != nil {
		add("passport_country", *req.PassportCountry)
	}
	if req.ResidenceCountry != nil {
		add("residence_country", *req.ResidenceCountry)
	}
	if req.OriginCity != nil {
		add("origin_city", *req.OriginCity)
	}
	if req.DestinationCity != nil {
		add("destination_city", *req.DestinationCity)
	}
	if req.DateRange != nil {
		add("date_range", *req.DateRange)
	}
	if req.Currency != nil {
		add("currency", *req.Currency)
	}
	if req.Budget != nil {
		add("budget", *req.Budget)
	}
	if req.Adults != nil {
		add("adults", *req.Adults)
	}
	if req.Children != nil {
		add("children", *req.Children)
	}
	if req.Infants != nil {
		add("infants", *req.Infants)
	}
	if req.TravelStyle != nil {
		add("travel_style", *req.TravelStyle)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	add("feasibility_status", types.FeasibilityPending)
	add("itinerary_status", types.ItineraryIdle)
	sets = append(sets,
		"feasibility_report = NULL",
		"feasibility_error = NULL",
		"itinerary = NULL",
		"itinerary_locked_at = NULL",
		"itinerary_lock_owner = NULL",
		"updated_at = NOW()",
	)

	args = append(args, tripID)
	query := fmt.Sprintf("UPDATE trips SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), tripColumns)

	start := time.Now()
	trip, err := scanTrip(r.pgpool.QueryRow(ctx, query, args...))
	observeQuery(ctx, "update_trip", start, err)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("trip %d not found", tripID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("failed to update trip %d: %w", tripID, err)
	}
	span.SetStatus(codes.Ok, "trip updated")
	return trip, nil
}

func (r *PostgresTripRepo) DeleteTrip(ctx context.Context, tripID int64) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "DeleteTrip")
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, "DELETE FROM trips WHERE id = $1", tripID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete trip %d: %w", tripID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %d not found", tripID)
	}
	return nil
}

func (r *PostgresTripRepo) UpdateTripFeasibility(ctx context.Context, tripID int64, status types.FeasibilityStatus, report *types.FeasibilityReport) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "UpdateTripFeasibility")
	defer span.End()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal feasibility report: %w", err)
	}

	start := time.Now()
	_, err = r.pgpool.Exec(ctx, `
        UPDATE trips
        SET feasibility_status = $2, feasibility_report = $3, feasibility_error = NULL, updated_at = NOW()
        WHERE id = $1`,
		tripID, status, reportJSON)
	observeQuery(ctx, "update_trip_feasibility", start, err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to persist feasibility for trip %d: %w", tripID, err)
	}
	return nil
}

func (r *PostgresTripRepo) RecordProcessingError(ctx context.Context, tripID int64, message string) error {
	_, err := r.pgpool.Exec(ctx, `
        UPDATE trips SET feasibility_error = $2, updated_at = NOW() WHERE id = $1`,
		tripID, message)
	if err != nil {
		return fmt.Errorf("failed to record processing error for trip %d: %w", tripID, err)
	}
	return nil
}

func (r *PostgresTripRepo) UpdateTripItinerary(ctx context.Context, tripID int64, itinerary *types.Itinerary) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "UpdateTripItinerary")
	defer span.End()

	itineraryJSON, err := json.Marshal(itinerary)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	start := time.Now()
	_, err = r.pgpool.Exec(ctx, `
        UPDATE trips SET itinerary = $2, updated_at = NOW() WHERE id = $1`,
		tripID, itineraryJSON)
	observeQuery(ctx, "update_trip_itinerary", start, err)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to persist itinerary for trip %d: %w", tripID, err)
	}
	return nil
}

// UpdateTripImage stores the destination image URL without resetting any
// derived state; the image is presentation only.
func (r *PostgresTripRepo) UpdateTripImage(ctx context.Context, tripID int64, imageURL string) error {
	tag, err := r.pgpool.Exec(ctx, `
        UPDATE trips SET destination_image = $2, updated_at = NOW() WHERE id = $1`,
		tripID, imageURL)
	if err != nil {
		return fmt.Errorf("failed to update trip image for trip %d: %w", tripID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %d not found", tripID)
	}
	return nil
}

func (r *PostgresTripRepo) AdoptTrips(ctx context.Context, voyageUID uuid.UUID, tripIDs []int64) (int64, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "AdoptTrips")
	defer span.End()

	if len(tripIDs) == 0 {
		return 0, nil
	}
	tag, err := r.pgpool.Exec(ctx, `
        UPDATE trips SET voyage_uid = $1, updated_at = NOW()
        WHERE id = ANY($2) AND voyage_uid IS NULL`,
		voyageUID, tripIDs)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to adopt trips: %w", err)
	}
	return tag.RowsAffected(), nil
}
