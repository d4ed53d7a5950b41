package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appMiddleware "github.com/FACorreiaa/go-trip-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-planner/internal/container"
)

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(c *container.Container) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", appMiddleware.VoyageHeader},
		ExposedHeaders:   []string{"Link", appMiddleware.VoyageHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Anonymous identity: every route may carry a voyage UID, none requires it.
	r.Use(appMiddleware.VoyageIdentity)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/trips", func(r chi.Router) {
			r.Post("/", c.TripHandler.CreateTrip)
			r.Get("/", c.TripHandler.ListTrips)
			r.Post("/adopt", c.TripHandler.AdoptTrips)
			r.Post("/compare", c.CompareHandler.ComparePlans)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", c.TripHandler.GetTrip)
				r.Put("/", c.TripHandler.UpdateTrip)
				r.Delete("/", c.TripHandler.DeleteTrip)
				r.Patch("/image", c.TripHandler.UpdateTripImage)
				r.Get("/progress", c.TripHandler.GetProgress)

				r.Route("/itinerary/lock", func(r chi.Router) {
					r.Post("/", c.LockHandler.Acquire)
					r.Delete("/", c.LockHandler.Release)
					r.Get("/", c.LockHandler.GetStatus)
				})
			})
		})
	})

	return r
}
