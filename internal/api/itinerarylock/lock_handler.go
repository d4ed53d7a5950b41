package itinerarylock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type Handler struct {
	lockService Service
	logger      *slog.Logger
}

func NewHandler(lockService Service, logger *slog.Logger) *Handler {
	return &Handler{lockService: lockService, logger: logger}
}

func tripIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Acquire attempts to take the generation lock. A denial returns 409 with the
// existing owner so the caller can back off and poll.
func (h *Handler) Acquire(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LockHandler").Start(r.Context(), "Acquire", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/{id}/itinerary/lock"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "AcquireLock"))

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	result, err := h.lockService.Acquire(ctx, tripID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to acquire lock", slog.Int64("tripID", tripID), slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to acquire lock")
		return
	}

	status := http.StatusOK
	if !result.Acquired {
		status = http.StatusConflict
	}
	api.WriteJSONResponse(w, r, status, result)
}

// Release clears the lock for the supplied owner token. Non-matching owners
// are a silent no-op by design.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LockHandler").Start(r.Context(), "Release")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ReleaseLock"))

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	var req struct {
		LockOwner   string                `json:"lock_owner"`
		FinalStatus types.ItineraryStatus `json:"final_status"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.LockOwner == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "lock_owner is required")
		return
	}
	if req.FinalStatus == "" {
		req.FinalStatus = types.ItineraryIdle
	}

	if err := h.lockService.Release(ctx, tripID, req.LockOwner, req.FinalStatus); err != nil {
		l.ErrorContext(ctx, "Failed to release lock", slog.Int64("tripID", tripID), slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to release lock")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// GetStatus reports whether the lock is held and still fresh, for UI polling.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LockHandler").Start(r.Context(), "GetStatus")
	defer span.End()

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	status, err := h.lockService.GetStatus(ctx, tripID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to read lock status", slog.Int64("tripID", tripID), slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, status)
}
