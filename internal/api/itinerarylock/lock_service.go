package itinerarylock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const (
	// LockTimeout is the lease length. A holder that has not refreshed within
	// this window is presumed crashed and may be taken over.
	LockTimeout = 10 * time.Minute
	// HeartbeatInterval keeps a legitimate long-running generation from being
	// mistaken for stale (1/10th of the timeout).
	HeartbeatInterval = 1 * time.Minute
)

// AcquireResult reports the outcome of an acquisition attempt. A denial is
// normal control flow, not an error: the caller should poll instead of
// duplicating generation work.
type AcquireResult struct {
	Acquired      bool   `json:"acquired"`
	LockOwner     string `json:"lock_owner,omitempty"`
	IsStale       bool   `json:"is_stale,omitempty"` // acquisition took over a stale lease
	ExistingOwner string `json:"existing_owner,omitempty"`
}

// LockStatus is the read-only view for UI polling.
type LockStatus struct {
	Status   types.ItineraryStatus `json:"status"`
	Locked   bool                  `json:"locked"`
	IsFresh  bool                  `json:"is_fresh"`
	LockedAt *time.Time            `json:"locked_at,omitempty"`
}

var _ Service = (*ServiceImpl)(nil)

// Service implements the mutual-exclusion lease guarding AI itinerary
// generation per trip.
type Service interface {
	Acquire(ctx context.Context, tripID int64) (*AcquireResult, error)
	Release(ctx context.Context, tripID int64, owner string, finalStatus types.ItineraryStatus) error
	Refresh(ctx context.Context, tripID int64, owner string) error
	GetStatus(ctx context.Context, tripID int64) (*LockStatus, error)
	// Heartbeat refreshes the lease every HeartbeatInterval until ctx is done.
	Heartbeat(ctx context.Context, tripID int64, owner string)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	now    func() time.Time
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, now: time.Now}
}

// Acquire takes the lock with a fresh owner token, takes over a stale lease,
// or denies and reports the existing owner. The repository's conditional
// UPDATE is the single authority; the preceding read only classifies the
// outcome for the caller.
func (s *ServiceImpl) Acquire(ctx context.Context, tripID int64) (*AcquireResult, error) {
	ctx, span := otel.Tracer("LockService").Start(ctx, "Acquire")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	before, err := s.repo.GetLockState(ctx, tripID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := s.now()
	wasGenerating := before.Status == types.ItineraryGenerating
	wasStale := wasGenerating && before.LockedAt != nil && now.Sub(*before.LockedAt) > LockTimeout

	owner := uuid.NewString()
	acquired, err := s.repo.TryAcquire(ctx, tripID, owner, now, now.Add(-LockTimeout))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire failed")
		return nil, err
	}

	if !acquired {
		// Lost the race or the lease is fresh: report the current holder.
		after, err := s.repo.GetLockState(ctx, tripID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		existing := ""
		if after.Owner != nil {
			existing = *after.Owner
		}
		s.logger.InfoContext(ctx, "Itinerary lock denied, generation already in flight",
			slog.Int64("tripID", tripID))
		span.SetStatus(codes.Ok, "lock denied")
		return &AcquireResult{Acquired: false, ExistingOwner: existing}, nil
	}

	if wasStale {
		s.logger.WarnContext(ctx, "Took over stale itinerary lock",
			slog.Int64("tripID", tripID),
			slog.Time("previousLockedAt", *before.LockedAt))
	}
	span.SetAttributes(attribute.Bool("lock.stale_takeover", wasStale))
	span.SetStatus(codes.Ok, "lock acquired")
	return &AcquireResult{Acquired: true, LockOwner: owner, IsStale: wasStale}, nil
}

// Release clears the lock only while the caller's token still matches; a
// non-matching release is a no-op so a slow, superseded process cannot
// clobber a newer holder's final state.
func (s *ServiceImpl) Release(ctx context.Context, tripID int64, owner string, finalStatus types.ItineraryStatus) error {
	ctx, span := otel.Tracer("LockService").Start(ctx, "Release")
	defer span.End()
	span.SetAttributes(attribute.Int64("trip.id", tripID))

	switch finalStatus {
	case types.ItineraryComplete, types.ItineraryError, types.ItineraryIdle:
	default:
		return fmt.Errorf("invalid final lock status %q", finalStatus)
	}

	released, err := s.repo.Release(ctx, tripID, owner, finalStatus)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "release failed")
		return err
	}
	if !released {
		s.logger.WarnContext(ctx, "Ignored lock release from non-owner",
			slog.Int64("tripID", tripID))
		span.SetAttributes(attribute.Bool("lock.release_ignored", true))
	}
	span.SetStatus(codes.Ok, "release handled")
	return nil
}

func (s *ServiceImpl) Refresh(ctx context.Context, tripID int64, owner string) error {
	refreshed, err := s.repo.Refresh(ctx, tripID, owner, s.now())
	if err != nil {
		return err
	}
	if !refreshed {
		return fmt.Errorf("lock refresh rejected for trip %d: owner no longer holds the lease", tripID)
	}
	return nil
}

func (s *ServiceImpl) GetStatus(ctx context.Context, tripID int64) (*LockStatus, error) {
	state, err := s.repo.GetLockState(ctx, tripID)
	if err != nil {
		return nil, err
	}

	locked := state.Status == types.ItineraryGenerating
	fresh := locked && state.LockedAt != nil && s.now().Sub(*state.LockedAt) <= LockTimeout
	return &LockStatus{
		Status:   state.Status,
		Locked:   locked,
		IsFresh:  fresh,
		LockedAt: state.LockedAt,
	}, nil
}

func (s *ServiceImpl) Heartbeat(ctx context.Context, tripID int64, owner string) {
	ticker := time.NewTicker(HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx, tripID, owner); err != nil {
				s.logger.WarnContext(ctx, "Lock heartbeat failed, stopping",
					slog.Int64("tripID", tripID), slog.Any("error", err))
				return
			}
		}
	}
}
