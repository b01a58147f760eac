package prediction

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They are no-ops until InitMetrics runs so the client is
// usable from tests and the CLI without a meter provider.
var (
	requestCounter  metric.Int64Counter     = noop.Int64Counter{}
	requestDuration metric.Float64Histogram = noop.Float64Histogram{}
	failureCounter  metric.Int64Counter     = noop.Int64Counter{}
	salaryGauge     metric.Float64Gauge     = noop.Float64Gauge{}
)

// InitMetrics registers the prediction client instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("prediction")

	var err error

	requestCounter, err = meter.Int64Counter("prediction.requests.total",
		metric.WithDescription("Total number of prediction requests sent"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("creating request counter: %w", err)
	}

	requestDuration, err = meter.Float64Histogram("prediction.request.duration",
		metric.WithDescription("Round trip time of prediction requests in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	)
	if err != nil {
		return fmt.Errorf("creating request histogram: %w", err)
	}

	failureCounter, err = meter.Int64Counter("prediction.failures.total",
		metric.WithDescription("Total number of failed predictions by kind"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return fmt.Errorf("creating failure counter: %w", err)
	}

	salaryGauge, err = meter.Float64Gauge("prediction.last_salary",
		metric.WithDescription("The most recently predicted salary"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return fmt.Errorf("creating salary gauge: %w", err)
	}

	return nil
}
