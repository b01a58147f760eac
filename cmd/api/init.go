package main

import (
	"context"

	"salary-predictor/internal/observability"
	"salary-predictor/internal/prediction"
	"salary-predictor/internal/salary"
)

// initMetrics initialises the meter provider and every domain's metric
// instruments.
func initMetrics(ctx context.Context, enabled bool) (func(context.Context) error, error) {
	shutdown, err := observability.InitMetrics(ctx, enabled)
	if err != nil {
		return nil, err
	}

	if err := prediction.InitMetrics(); err != nil {
		return nil, err
	}
	if err := salary.InitMetrics(); err != nil {
		return nil, err
	}

	return shutdown, nil
}
