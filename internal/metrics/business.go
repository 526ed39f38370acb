package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Instruments start as no-ops so packages can record before (or without) Init.
var (
	// Conversion metrics
	ConversionsTotal   metric.Int64Counter     = noop.Int64Counter{}
	ConversionDuration metric.Float64Histogram = noop.Float64Histogram{}

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter     = noop.Int64Counter{}
	ExternalAPIDuration   metric.Float64Histogram = noop.Float64Histogram{}

	// AI metrics
	AIGenerationDuration metric.Float64Histogram = noop.Float64Histogram{}

	// Rate limiting
	RateLimitRejectionsTotal metric.Int64Counter = noop.Int64Counter{}
)

// Init creates the instruments against the current global meter provider.
// Call it after telemetry has installed its provider.
func Init() error {
	meter := otel.Meter("thermochef/business")

	var err error

	ConversionsTotal, err = meter.Int64Counter(
		"recipe.conversions.total",
		metric.WithDescription("Total number of recipe conversions by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ConversionDuration, err = meter.Float64Histogram(
		"recipe.conversion.duration",
		metric.WithDescription("Duration of recipe conversion requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	AIGenerationDuration, err = meter.Float64Histogram(
		"ai.generation.duration",
		metric.WithDescription("Duration of AI recipe conversion"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	RateLimitRejectionsTotal, err = meter.Int64Counter(
		"ratelimit.rejections.total",
		metric.WithDescription("Total number of requests rejected by the rate limiter"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
