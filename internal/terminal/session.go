package terminal

import (
	"context"
	"fmt"

	"salary-predictor/internal/form"
	"salary-predictor/internal/profile"
)

// Run walks the user through every field, submits, prints the outcome and
// offers another round. Previous answers become the next round's defaults.
func Run(ctx context.Context, ctrl *form.Controller, p Prompter) error {
	for {
		if err := fill(ctx, ctrl, p); err != nil {
			return err
		}

		if err := p.Info(ctx, ctrl.Snapshot().Indicator()); err != nil {
			return err
		}
		_, err := ctrl.Submit(ctx)
		if err != nil {
			return err
		}
		if err := p.Info(ctx, Result(ctrl.Snapshot())); err != nil {
			return err
		}

		again, err := p.Confirm(ctx, ConfirmConfig{Message: "Predict again?"})
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

func fill(ctx context.Context, ctrl *form.Controller, p Prompter) error {
	for _, f := range profile.Fields() {
		current := ctrl.Snapshot().Values.Get(f)

		value, err := ask(ctx, p, f, current)
		if err != nil {
			return err
		}
		if _, err := ctrl.UpdateField(f, value); err != nil {
			return err
		}
	}
	return nil
}

func ask(ctx context.Context, p Prompter, f profile.Field, current string) (string, error) {
	if !f.Enumerated() {
		return p.Input(ctx, InputConfig{
			Message: f.Label() + ":",
			Default: current,
			Help:    f.Placeholder(),
		})
	}

	opts := f.Options()
	if len(opts) == 1 {
		return opts[0].Value, nil
	}

	labels := make([]string, len(opts))
	def := 0
	for i, opt := range opts {
		labels[i] = opt.Label
		if opt.Value == current {
			def = i
		}
	}

	idx, err := p.Select(ctx, SelectConfig{
		Message:      f.Label() + ":",
		Options:      labels,
		DefaultIndex: def,
		PageSize:     12,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(opts) {
		return "", fmt.Errorf("%w: %s choice %d", profile.ErrUnknownOption, f, idx)
	}
	return opts[idx].Value, nil
}

// Result is the one-line outcome of a settled snapshot.
func Result(s form.Snapshot) string {
	switch {
	case s.Error != "":
		return "Error: " + s.Error
	case s.Prediction.Valid:
		return "Predicted Annual Salary (USD): $" + s.FormattedPrediction()
	default:
		return ""
	}
}
