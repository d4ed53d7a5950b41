package itinerarylock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists lock state on the trips row. Every mutation is a single
// conditional UPDATE so two concurrent acquirers cannot both win: there is no
// separate check-then-set window.
type Repository interface {
	// TryAcquire atomically takes the lock when it is not generating, or when
	// the current holder's lease is older than staleBefore. Returns true only
	// when this call's UPDATE committed.
	TryAcquire(ctx context.Context, tripID int64, owner string, now, staleBefore time.Time) (bool, error)
	// Release clears the lock and sets the final status, gated on the owner
	// token. Returns false (no-op) when the owner no longer matches.
	Release(ctx context.Context, tripID int64, owner string, finalStatus types.ItineraryStatus) (bool, error)
	// Refresh bumps the lease timestamp while the holder is still working.
	Refresh(ctx context.Context, tripID int64, owner string, now time.Time) (bool, error)
	GetLockState(ctx context.Context, tripID int64) (*LockState, error)
}

// LockState is the raw lock columns from the trips row.
type LockState struct {
	Status   types.ItineraryStatus
	Owner    *string
	LockedAt *time.Time
}

// PGXPool is the slice of pgxpool.Pool the repository uses; narrowed so tests
// can substitute a mock pool.
type PGXPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewRepositoryImpl(pgpool PGXPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

func (r *RepositoryImpl) TryAcquire(ctx context.Context, tripID int64, owner string, now, staleBefore time.Time) (bool, error) {
	ctx, span := otel.Tracer("LockRepository").Start(ctx, "TryAcquire")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	tag, err := r.pgpool.Exec(ctx, `
        UPDATE trips
        SET itinerary_status = $2,
            itinerary_lock_owner = $3,
            itinerary_locked_at = $4,
            updated_at = $4
        WHERE id = $1
          AND (itinerary_status IS DISTINCT FROM $2 OR itinerary_locked_at < $5)`,
		tripID, types.ItineraryGenerating, owner, now, staleBefore)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire update failed")
		return false, fmt.Errorf("failed to acquire itinerary lock: %w", err)
	}

	acquired := tag.RowsAffected() > 0
	span.SetAttributes(attribute.Bool("lock.acquired", acquired))
	return acquired, nil
}

func (r *RepositoryImpl) Release(ctx context.Context, tripID int64, owner string, finalStatus types.ItineraryStatus) (bool, error) {
	ctx, span := otel.Tracer("LockRepository").Start(ctx, "Release")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	tag, err := r.pgpool.Exec(ctx, `
        UPDATE trips
        SET itinerary_status = $3,
            itinerary_lock_owner = NULL,
            itinerary_locked_at = NULL,
            updated_at = NOW()
        WHERE id = $1
          AND itinerary_lock_owner = $2`,
		tripID, owner, finalStatus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "release update failed")
		return false, fmt.Errorf("failed to release itinerary lock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) Refresh(ctx context.Context, tripID int64, owner string, now time.Time) (bool, error) {
	tag, err := r.pgpool.Exec(ctx, `
        UPDATE trips
        SET itinerary_locked_at = $3
        WHERE id = $1
          AND itinerary_lock_owner = $2
          AND itinerary_status = $4`,
		tripID, owner, now, types.ItineraryGenerating)
	if err != nil {
		return false, fmt.Errorf("failed to refresh itinerary lock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) GetLockState(ctx context.Context, tripID int64) (*LockState, error) {
	var state LockState
	err := r.pgpool.QueryRow(ctx, `
        SELECT itinerary_status, itinerary_lock_owner, itinerary_locked_at
        FROM trips
        WHERE id = $1`, tripID).Scan(&state.Status, &state.Owner, &state.LockedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("trip %d not found", tripID)
		}
		return nil, fmt.Errorf("failed to read lock state: %w", err)
	}
	return &state, nil
}
