package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	GeocodeRequestsTotal    metric.Int64Counter
	GeocodeFallbacksTotal   metric.Int64Counter
	ItineraryItemsGenerated metric.Int64Counter
	ReorderBatchesTotal     metric.Int64Counter
	DBQueryDurationSeconds  metric.Float64Histogram
	DBQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments only once. It gets
// the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("adventurelog")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.GeocodeRequestsTotal, err = meter.Int64Counter(
			"geocode_requests_total",
			metric.WithDescription("Total number of reverse-geocode and search requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_requests_total: %v", err)
		}

		m.GeocodeFallbacksTotal, err = meter.Int64Counter(
			"geocode_fallbacks_total",
			metric.WithDescription("Times the primary geocoding provider failed and the fallback was used"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_fallbacks_total: %v", err)
		}

		m.ItineraryItemsGenerated, err = meter.Int64Counter(
			"itinerary_items_generated_total",
			metric.WithDescription("Itinerary items created by the auto-generator"),
			metric.WithUnit("{item}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_items_generated_total: %v", err)
		}

		m.ReorderBatchesTotal, err = meter.Int64Counter(
			"itinerary_reorder_batches_total",
			metric.WithDescription("Bulk reorder batches applied"),
			metric.WithUnit("{batch}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_reorder_batches_total: %v", err)
		}

		m.DBQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DBQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, initializing
// against the current global MeterProvider on first use.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
