package processor

import (
	"sync"
	"time"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// completedRetention keeps a finished progress record around long enough for
// a polling client to observe the terminal step before it is dropped.
const completedRetention = 2 * time.Minute

// ProgressTracker holds in-memory pipeline progress per trip. Records are
// process-local; a restart loses them and the progress endpoint falls back to
// deriving progress from the persisted trip row.
type ProgressTracker struct {
	mu      sync.Mutex
	records map[int64]*types.TripProgress
	now     func() time.Time
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		records: make(map[int64]*types.TripProgress),
		now:     time.Now,
	}
}

// Start registers a fresh record at the starting step, replacing any stale
// record from a previous run for the same trip.
func (t *ProgressTracker) Start(tripID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.records[tripID] = &types.TripProgress{
		TripID:    tripID,
		Step:      types.StepStarting,
		Message:   "Starting trip processing",
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Update advances the record to a step. Unknown trips are ignored.
func (t *ProgressTracker) Update(tripID int64, step types.ProcessStep, message, details string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.records[tripID]
	if !ok {
		return
	}
	p.Step = step
	p.Message = message
	p.Details = details
	p.UpdatedAt = t.now()
}

// Fail marks the record as errored without advancing the step, so the client
// sees where processing stopped.
func (t *ProgressTracker) Fail(tripID int64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.records[tripID]
	if !ok {
		return
	}
	p.Error = true
	p.Message = message
	p.UpdatedAt = t.now()
	t.scheduleRemoval(tripID)
}

// Complete marks the terminal step and schedules removal after the retention
// window.
func (t *ProgressTracker) Complete(tripID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.records[tripID]
	if !ok {
		return
	}
	p.Step = types.StepComplete
	p.Message = "Trip processing complete"
	p.UpdatedAt = t.now()
	t.scheduleRemoval(tripID)
}

// scheduleRemoval drops the record after the retention window, unless a new
// run has replaced it in the meantime. Caller holds the mutex.
func (t *ProgressTracker) scheduleRemoval(tripID int64) {
	started := t.records[tripID].StartedAt
	time.AfterFunc(completedRetention, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if p, ok := t.records[tripID]; ok && p.StartedAt.Equal(started) {
			delete(t.records, tripID)
		}
	})
}

// Get returns a copy of the record, or false when no run is tracked.
func (t *ProgressTracker) Get(tripID int64) (types.TripProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.records[tripID]
	if !ok {
		return types.TripProgress{}, false
	}
	return *p, true
}

// Response shapes a record for the polling endpoint.
func (t *ProgressTracker) Response(tripID int64) (*types.ProgressResponse, bool) {
	p, ok := t.Get(tripID)
	if !ok {
		return nil, false
	}
	percent := int(float64(p.Step) / float64(types.TotalProcessSteps) * 100)
	if percent > 100 {
		percent = 100
	}
	return &types.ProgressResponse{
		Step:            p.Step,
		Message:         p.Message,
		Details:         p.Details,
		ElapsedSeconds:  t.now().Sub(p.StartedAt).Seconds(),
		TotalSteps:      types.TotalProcessSteps,
		PercentComplete: percent,
	}, true
}
