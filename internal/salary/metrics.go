package salary

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They are no-ops until InitMetrics runs.
var (
	submissionCounter  metric.Int64Counter = noop.Int64Counter{}
	fieldUpdateCounter metric.Int64Counter = noop.Int64Counter{}
	errorCounter       metric.Int64Counter = noop.Int64Counter{}
)

// InitMetrics registers the form endpoint instruments.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("salary")

	var err error

	submissionCounter, err = meter.Int64Counter("salary.submissions.total",
		metric.WithDescription("Total number of form submissions by outcome"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return fmt.Errorf("creating submission counter: %w", err)
	}

	fieldUpdateCounter, err = meter.Int64Counter("salary.field_updates.total",
		metric.WithDescription("Total number of accepted field edits"),
		metric.WithUnit("{update}"),
	)
	if err != nil {
		return fmt.Errorf("creating field update counter: %w", err)
	}

	errorCounter, err = meter.Int64Counter("salary.errors.total",
		metric.WithDescription("Total number of rejected form requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}
