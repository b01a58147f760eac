// Package form holds the state machine behind the salary form: field edits,
// the in-flight guard on submission, and the settled result.
package form

import (
	"context"
	"errors"
	"sync"

	"salary-predictor/internal/prediction"
	"salary-predictor/internal/profile"

	"github.com/shopspring/decimal"
)

var (
	// ErrSubmitInFlight is returned by Submit and Reset while a submission is
	// still waiting for the prediction service.
	ErrSubmitInFlight = errors.New("form: submission already in flight")
	// ErrClosed is returned once the controller has been torn down.
	ErrClosed = errors.New("form: controller closed")
)

// Predictor turns a profile into a salary estimate.
type Predictor interface {
	Predict(ctx context.Context, state profile.FormState) (decimal.Decimal, error)
}

// Controller owns one form's Snapshot. Every transition replaces the
// snapshot; readers never observe a partially applied change.
type Controller struct {
	predictor Predictor

	mu   sync.Mutex
	snap Snapshot

	// ctx spans the controller's lifetime; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Controller.
type Option func(*Controller)

// WithInitialState starts the form from state instead of the defaults.
func WithInitialState(state profile.FormState) Option {
	return func(c *Controller) {
		c.snap.Values = state
	}
}

// NewController returns an idle controller holding the default profile.
func NewController(p Predictor, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		predictor: p,
		snap:      Snapshot{Values: profile.DefaultState(), Status: StatusIdle},
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// UpdateField replaces one field's value. Edits are accepted while a
// submission is in flight; they do not affect the payload already sent.
func (c *Controller) UpdateField(field profile.Field, value string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return c.snap, ErrClosed
	}

	values, err := c.snap.Values.With(field, value)
	if err != nil {
		return c.snap, err
	}

	next := c.snap
	next.Values = values
	c.snap = next
	return next, nil
}

// SetValues replaces every field at once. Callers applying several edits
// build the state with profile.FormState.With first so a rejected edit leaves
// the form untouched.
func (c *Controller) SetValues(values profile.FormState) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return c.snap, ErrClosed
	}

	next := c.snap
	next.Values = values
	c.snap = next
	return next, nil
}

// Submit sends the current values to the predictor and settles the form with
// either a prediction or an error message. The call is bound to the
// controller's lifetime rather than ctx's cancellation, so a caller going away
// does not abort it; ctx still supplies trace and request values.
//
// Prediction failures are not returned as errors: they settle the form with
// an error message. The returned error is only ErrSubmitInFlight or ErrClosed.
func (c *Controller) Submit(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		snap := c.snap
		c.mu.Unlock()
		return snap, ErrClosed
	}
	if c.snap.Status == StatusInFlight {
		snap := c.snap
		c.mu.Unlock()
		return snap, ErrSubmitInFlight
	}

	payload := c.snap.Values
	c.snap = Snapshot{Values: payload, Status: StatusInFlight}
	c.mu.Unlock()

	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()
	defer cancel()

	amount, err := c.predictor.Predict(callCtx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return c.snap, ErrClosed
	}

	next := c.snap
	next.Status = StatusSettled
	if err != nil {
		next.Prediction = decimal.NullDecimal{}
		next.Error = prediction.Message(err)
	} else {
		next.Prediction = decimal.NullDecimal{Decimal: amount, Valid: true}
		next.Error = ""
	}
	c.snap = next
	return next, nil
}

// Reset restores the default profile and clears any result.
func (c *Controller) Reset() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return c.snap, ErrClosed
	}
	if c.snap.Status == StatusInFlight {
		return c.snap, ErrSubmitInFlight
	}

	c.snap = Snapshot{Values: profile.DefaultState(), Status: StatusIdle}
	return c.snap, nil
}

// Close tears the controller down. An in-flight request is cancelled and its
// result is discarded.
func (c *Controller) Close() {
	c.cancel()
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	return c.ctx.Err() != nil
}
