package trip

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

type Handler struct {
	tripService Service
	logger      *slog.Logger
}

func NewHandler(tripService Service, logger *slog.Logger) *Handler {
	return &Handler{tripService: tripService, logger: logger}
}

func tripIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := IsValidationError(err); ok {
		api.ValidationErrorResponse(w, r, ve.Field, ve.Message)
		return
	}
	api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
}

// CreateTrip accepts the trip request, responds 201 immediately with pending
// derived fields and lets the background pipeline fill them in.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "CreateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateTrip"))

	var req types.CreateTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var voyageUID *uuid.UUID
	if uid, ok := appMiddleware.GetVoyageUIDFromContext(ctx); ok {
		voyageUID = &uid
	}

	trip, err := h.tripService.CreateTrip(ctx, voyageUID, &req)
	if err != nil {
		if _, ok := IsValidationError(err); !ok {
			l.ErrorContext(ctx, "Failed to create trip", slog.Any("error", err))
			span.RecordError(err)
		}
		h.respondServiceError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetTrip")
	defer span.End()

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	trip, err := h.tripService.GetTrip(ctx, tripID)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// ListTrips returns the requesting voyage's trips, newest first. Without a
// voyage header there is nothing to list.
func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ListTrips")
	defer span.End()

	uid, ok := appMiddleware.GetVoyageUIDFromContext(ctx)
	if !ok {
		api.WriteJSONResponse(w, r, http.StatusOK, []*types.Trip{})
		return
	}

	trips, err := h.tripService.ListTrips(ctx, uid)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list trips", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list trips")
		return
	}
	if trips == nil {
		trips = []*types.Trip{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// UpdateTrip applies a partial edit. Derived data resets and reprocessing
// starts before the response is written.
func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "UpdateTrip")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateTrip"))

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	var req types.UpdateTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.tripService.UpdateTrip(ctx, tripID, &req)
	if err != nil {
		if _, ok := IsValidationError(err); !ok {
			l.ErrorContext(ctx, "Failed to update trip", slog.Int64("tripID", tripID), slog.Any("error", err))
			span.RecordError(err)
		}
		h.respondServiceError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "DeleteTrip")
	defer span.End()

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	if err := h.tripService.DeleteTrip(ctx, tripID); err != nil {
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// UpdateTripImage stores a destination image URL without triggering
// reprocessing.
func (h *Handler) UpdateTripImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "UpdateTripImage")
	defer span.End()

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	var req struct {
		ImageURL string `json:"image_url"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.tripService.UpdateTripImage(ctx, tripID, req.ImageURL); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// AdoptTrips claims ownerless trips for the requesting voyage, for clients
// that created trips before persisting their identity.
func (h *Handler) AdoptTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "AdoptTrips")
	defer span.End()

	uid, ok := appMiddleware.GetVoyageUIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "X-Voyage-UID header is required")
		return
	}

	var req struct {
		TripIDs []int64 `json:"trip_ids"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.TripIDs) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "trip_ids must not be empty")
		return
	}

	adopted, err := h.tripService.AdoptTrips(ctx, uid, req.TripIDs)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to adopt trips", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to adopt trips")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]int64{"adopted": adopted})
}

// GetProgress serves the polling endpoint backing the processing progress UI.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetProgress")
	defer span.End()

	tripID, err := tripIDFromURL(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	progress, err := h.tripService.GetProgress(ctx, tripID)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, progress)
}
