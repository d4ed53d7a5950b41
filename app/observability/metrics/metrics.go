package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	TripsCreatedTotal             metric.Int64Counter
	TripProcessingDurationSeconds metric.Float64Histogram
	TripProcessingErrorsTotal     metric.Int64Counter
	FeasibilityCacheHitsTotal     metric.Int64Counter
	TemplateCacheHitsTotal        metric.Int64Counter
	AIRequestsTotal               metric.Int64Counter
	DbQueryDurationSeconds        metric.Float64Histogram
	DbQueryErrorsTotal            metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TripPlanner")
		var err error
		m := &AppMetrics{}

		m.TripsCreatedTotal, err = meter.Int64Counter(
			"trips_created_total",
			metric.WithDescription("Total number of trips created"),
			metric.WithUnit("{trip}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trips_created_total: %v", err)
		}

		m.TripProcessingDurationSeconds, err = meter.Float64Histogram(
			"trip_processing_duration_seconds",
			metric.WithDescription("Duration of full background trip processing runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_processing_duration_seconds: %v", err)
		}

		m.TripProcessingErrorsTotal, err = meter.Int64Counter(
			"trip_processing_errors_total",
			metric.WithDescription("Total number of failed trip processing runs"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create trip_processing_errors_total: %v", err)
		}

		m.FeasibilityCacheHitsTotal, err = meter.Int64Counter(
			"feasibility_cache_hits_total",
			metric.WithDescription("Feasibility verdicts served from the corridor cache"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create feasibility_cache_hits_total: %v", err)
		}

		m.TemplateCacheHitsTotal, err = meter.Int64Counter(
			"template_cache_hits_total",
			metric.WithDescription("Itineraries rehydrated from the destination template cache"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create template_cache_hits_total: %v", err)
		}

		m.AIRequestsTotal, err = meter.Int64Counter(
			"ai_requests_total",
			metric.WithDescription("Total number of generative AI completions requested"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_requests_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, initializing it
// against the current global MeterProvider on first use. Callers that run
// before InitTracingAndMetrics get no-op instruments, which is fine.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
