package compare

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/api/nextfix"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

// TripGetter is the slice of the trip repository the comparison endpoint
// needs.
type TripGetter interface {
	GetTrip(ctx context.Context, tripID int64) (*types.Trip, error)
}

type Handler struct {
	trips  TripGetter
	logger *slog.Logger
}

func NewHandler(trips TripGetter, logger *slog.Logger) *Handler {
	return &Handler{trips: trips, logger: logger}
}

type compareRequest struct {
	OriginalTripID int64 `json:"original_trip_id"`
	UpdatedTripID  int64 `json:"updated_trip_id"`
}

type compareResponse struct {
	Comparison *types.PlanComparison    `json:"comparison"`
	NextFix    *types.NextFixSuggestion `json:"next_fix"`
}

// ComparePlans loads both trip versions, diffs them and attaches the single
// prioritized next-fix suggestion.
func (h *Handler) ComparePlans(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CompareHandler").Start(r.Context(), "ComparePlans", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips/compare"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ComparePlans"))

	var req compareRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.OriginalTripID == 0 || req.UpdatedTripID == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "original_trip_id and updated_trip_id are required")
		return
	}

	original, err := h.trips.GetTrip(ctx, req.OriginalTripID)
	if err != nil {
		l.WarnContext(ctx, "Original trip not found", slog.Int64("tripID", req.OriginalTripID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, "Original trip not found")
		return
	}
	updated, err := h.trips.GetTrip(ctx, req.UpdatedTripID)
	if err != nil {
		l.WarnContext(ctx, "Updated trip not found", slog.Int64("tripID", req.UpdatedTripID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, "Updated trip not found")
		return
	}

	comparison := ComparePlans(original, updated)
	resp := compareResponse{
		Comparison: comparison,
		NextFix:    nextfix.SuggestNextFix(comparison),
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
