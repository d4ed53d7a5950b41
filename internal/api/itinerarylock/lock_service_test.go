package itinerarylock

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// MockLockRepository is a mock implementation of Repository
type MockLockRepository struct {
	mock.Mock
}

func (m *MockLockRepository) TryAcquire(ctx context.Context, tripID int64, owner string, now, staleBefore time.Time) (bool, error) {
	args := m.Called(ctx, tripID, owner, now, staleBefore)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockRepository) Release(ctx context.Context, tripID int64, owner string, finalStatus types.ItineraryStatus) (bool, error) {
	args := m.Called(ctx, tripID, owner, finalStatus)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockRepository) Refresh(ctx context.Context, tripID int64, owner string, now time.Time) (bool, error) {
	args := m.Called(ctx, tripID, owner, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockRepository) GetLockState(ctx context.Context, tripID int64) (*LockState, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*LockState), args.Error(1)
}

func setupLockServiceTest(now time.Time) (*ServiceImpl, *MockLockRepository) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	mockRepo := new(MockLockRepository)
	service := NewServiceImpl(mockRepo, logger)
	service.now = func() time.Time { return now }
	return service, mockRepo
}

func TestLockService_Acquire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tripID := int64(42)

	t.Run("acquires when idle", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		mockRepo.On("GetLockState", mock.Anything, tripID).
			Return(&LockState{Status: types.ItineraryIdle}, nil).Once()
		mockRepo.On("TryAcquire", mock.Anything, tripID, mock.AnythingOfType("string"), now, now.Add(-LockTimeout)).
			Return(true, nil).Once()

		result, err := service.Acquire(ctx, tripID)
		require.NoError(t, err)
		assert.True(t, result.Acquired)
		assert.NotEmpty(t, result.LockOwner)
		assert.False(t, result.IsStale)
		mockRepo.AssertExpectations(t)
	})

	t.Run("denies while a fresh lease is held", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		lockedAt := now.Add(-2 * time.Minute)
		holder := "existing-owner-token"
		mockRepo.On("GetLockState", mock.Anything, tripID).
			Return(&LockState{Status: types.ItineraryGenerating, Owner: &holder, LockedAt: &lockedAt}, nil).Twice()
		mockRepo.On("TryAcquire", mock.Anything, tripID, mock.AnythingOfType("string"), now, now.Add(-LockTimeout)).
			Return(false, nil).Once()

		result, err := service.Acquire(ctx, tripID)
		require.NoError(t, err)
		assert.False(t, result.Acquired)
		assert.Equal(t, holder, result.ExistingOwner)
		mockRepo.AssertExpectations(t)
	})

	t.Run("takes over a stale lease", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		lockedAt := now.Add(-LockTimeout - time.Minute)
		holder := "crashed-owner"
		mockRepo.On("GetLockState", mock.Anything, tripID).
			Return(&LockState{Status: types.ItineraryGenerating, Owner: &holder, LockedAt: &lockedAt}, nil).Once()
		mockRepo.On("TryAcquire", mock.Anything, tripID, mock.AnythingOfType("string"), now, now.Add(-LockTimeout)).
			Return(true, nil).Once()

		result, err := service.Acquire(ctx, tripID)
		require.NoError(t, err)
		assert.True(t, result.Acquired)
		assert.True(t, result.IsStale)
		mockRepo.AssertExpectations(t)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		repoErr := errors.New("connection refused")
		mockRepo.On("GetLockState", mock.Anything, tripID).Return(nil, repoErr).Once()

		_, err := service.Acquire(ctx, tripID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, repoErr))
		mockRepo.AssertExpectations(t)
	})
}

func TestLockService_Release(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tripID := int64(42)

	t.Run("releases with a terminal status", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		mockRepo.On("Release", mock.Anything, tripID, "owner-1", types.ItineraryComplete).
			Return(true, nil).Once()

		err := service.Release(ctx, tripID, "owner-1", types.ItineraryComplete)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects a non-terminal final status", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)

		err := service.Release(ctx, tripID, "owner-1", types.ItineraryGenerating)
		require.Error(t, err)
		mockRepo.AssertNotCalled(t, "Release")
	})

	t.Run("non-owner release is a silent no-op", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		mockRepo.On("Release", mock.Anything, tripID, "stale-owner", types.ItineraryError).
			Return(false, nil).Once()

		err := service.Release(ctx, tripID, "stale-owner", types.ItineraryError)
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestLockService_GetStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tripID := int64(7)

	t.Run("fresh lock", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		lockedAt := now.Add(-3 * time.Minute)
		mockRepo.On("GetLockState", mock.Anything, tripID).
			Return(&LockState{Status: types.ItineraryGenerating, LockedAt: &lockedAt}, nil).Once()

		status, err := service.GetStatus(ctx, tripID)
		require.NoError(t, err)
		assert.True(t, status.Locked)
		assert.True(t, status.IsFresh)
	})

	t.Run("stale lock is reported locked but not fresh", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		lockedAt := now.Add(-LockTimeout - time.Second)
		mockRepo.On("GetLockState", mock.Anything, tripID).
			Return(&LockState{Status: types.ItineraryGenerating, LockedAt: &lockedAt}, nil).Once()

		status, err := service.GetStatus(ctx, tripID)
		require.NoError(t, err)
		assert.True(t, status.Locked)
		assert.False(t, status.IsFresh)
	})

	t.Run("idle trip is unlocked", func(t *testing.T) {
		service, mockRepo := setupLockServiceTest(now)
		mockRepo.On("GetLockState", mock.Anything, tripID).
			Return(&LockState{Status: types.ItineraryIdle}, nil).Once()

		status, err := service.GetStatus(ctx, tripID)
		require.NoError(t, err)
		assert.False(t, status.Locked)
		assert.False(t, status.IsFresh)
	})
}
