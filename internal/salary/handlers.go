// Package salary serves the salary form over HTTP: an HTML page and a JSON
// API, both driving one form controller per browser session.
package salary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"salary-predictor/internal/form"
	"salary-predictor/internal/handlers"
	"salary-predictor/internal/observability"
	"salary-predictor/internal/profile"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("salary")

const (
	busyNotice   = "A prediction is already in progress."
	closedNotice = "Your session has expired. Please try again."
)

// Handler holds the dependencies of the form endpoints.
type Handler struct {
	sessions *Sessions
	view     *View
}

func NewHandler(sessions *Sessions, view *View) *Handler {
	return &Handler{sessions: sessions, view: view}
}

// ---------------------------------------------------------------------------
// HTML
// ---------------------------------------------------------------------------

// Page handles GET /
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctrl := h.sessions.Controller(w, r)
	h.render(w, r, http.StatusOK, ctrl.Snapshot(), "")
}

// SubmitPage handles POST /. It applies every posted field, then submits.
func (h *Handler) SubmitPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "salary.submit_page")
	defer span.End()
	logger := observability.LoggerWithTrace(ctx)

	ctrl := h.sessions.Controller(w, r)

	if err := r.ParseForm(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid form body")
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "submit_page")))
		h.render(w, r, http.StatusBadRequest, ctrl.Snapshot(), "The form could not be read.")
		return
	}

	values := ctrl.Snapshot().Values
	var changed []profile.Field
	for _, f := range profile.Fields() {
		if !r.PostForm.Has(f.String()) {
			continue
		}
		next, err := values.With(f, r.PostForm.Get(f.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid field")
			errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "submit_page")))
			logger.Info("form field rejected", zap.String("field", f.String()), zap.Error(err))
			h.render(w, r, http.StatusUnprocessableEntity, ctrl.Snapshot(), fmt.Sprintf("%s: invalid value.", f.Label()))
			return
		}
		values = next
		changed = append(changed, f)
	}

	if _, err := ctrl.SetValues(values); err != nil {
		span.SetStatus(codes.Error, err.Error())
		h.render(w, r, http.StatusServiceUnavailable, ctrl.Snapshot(), closedNotice)
		return
	}
	for _, f := range changed {
		fieldUpdateCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("field", f.String())))
	}

	snap, err := ctrl.Submit(ctx)
	switch {
	case errors.Is(err, form.ErrSubmitInFlight):
		span.SetStatus(codes.Error, err.Error())
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "submit_page")))
		h.render(w, r, http.StatusConflict, snap, busyNotice)
		return
	case errors.Is(err, form.ErrClosed):
		span.SetStatus(codes.Error, err.Error())
		h.render(w, r, http.StatusServiceUnavailable, snap, closedNotice)
		return
	}

	recordSubmission(ctx, span, logger, snap)
	h.render(w, r, http.StatusOK, snap, "")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, snap form.Snapshot, notice string) {
	var buf bytes.Buffer
	if err := h.view.Render(&buf, snap, notice); err != nil {
		observability.LoggerWithTrace(r.Context()).Error("rendering form page", zap.Error(err))
		handlers.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// ---------------------------------------------------------------------------
// JSON API
// ---------------------------------------------------------------------------

// Options handles GET /api/options
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, allFieldOptions())
}

// Form handles GET /api/form
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	ctrl := h.sessions.Controller(w, r)
	handlers.WriteJSON(w, http.StatusOK, newFormView(ctrl.Snapshot()))
}

// UpdateField handles PUT /api/form/fields/{field}
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	name := chi.URLParam(r, "field")
	ctx, span := tracer.Start(ctx, "salary.update_field",
		trace.WithAttributes(
			attribute.String("form.field", name),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	field, err := profile.ParseField(name)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "update_field", "unknown field", err, http.StatusNotFound, w)
		return
	}

	var req FieldUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "update_field", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	if req.Value == nil {
		observability.RecordError(ctx, span, logger, errorCounter, "update_field", "value is required", errors.New("missing value"), http.StatusBadRequest, w)
		return
	}

	ctrl := h.sessions.Controller(w, r)
	snap, err := ctrl.UpdateField(field, *req.Value)
	switch {
	case errors.Is(err, profile.ErrUnknownOption):
		observability.RecordError(ctx, span, logger, errorCounter, "update_field", fmt.Sprintf("invalid value for %s", field), err, http.StatusUnprocessableEntity, w)
		return
	case errors.Is(err, form.ErrClosed):
		observability.RecordError(ctx, span, logger, errorCounter, "update_field", "session closed", err, http.StatusServiceUnavailable, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, "update_field", "update failed", err, http.StatusInternalServerError, w)
		return
	}

	fieldUpdateCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field.String())))
	span.SetStatus(codes.Ok, "")

	logger.Debug("form field updated",
		zap.String("field", field.String()),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, newFormView(snap))
}

// Submit handles POST /api/form/submit. A failed prediction is still a 200:
// the message travels in the form view's error field.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "salary.submit",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	ctrl := h.sessions.Controller(w, r)
	snap, err := ctrl.Submit(ctx)
	switch {
	case errors.Is(err, form.ErrSubmitInFlight):
		observability.RecordError(ctx, span, logger, errorCounter, "submit", busyNotice, err, http.StatusConflict, w)
		return
	case errors.Is(err, form.ErrClosed):
		observability.RecordError(ctx, span, logger, errorCounter, "submit", "session closed", err, http.StatusServiceUnavailable, w)
		return
	}

	recordSubmission(ctx, span, logger, snap)
	handlers.WriteJSON(w, http.StatusOK, newFormView(snap))
}

// Reset handles DELETE /api/form. It ends the session; the next request starts
// a fresh form.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Discard(w, r) {
		observability.LoggerWithTrace(r.Context()).Debug("session discarded",
			zap.String("request_id", observability.RequestIDFromContext(r.Context())),
		)
	}
	w.WriteHeader(http.StatusNoContent)
}

func recordSubmission(ctx context.Context, span trace.Span, logger *zap.Logger, snap form.Snapshot) {
	outcome := "success"
	if !snap.Prediction.Valid {
		outcome = "failure"
	}
	submissionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	span.SetAttributes(attribute.String("form.outcome", outcome))
	if snap.Prediction.Valid {
		span.SetStatus(codes.Ok, "")
		logger.Info("form submitted",
			zap.String("outcome", outcome),
			zap.String("predicted_salary", snap.Prediction.Decimal.String()),
		)
		return
	}

	span.AddEvent("prediction.unavailable", trace.WithAttributes(attribute.String("message", snap.Error)))
	logger.Info("form submitted",
		zap.String("outcome", outcome),
		zap.String("message", snap.Error),
	)
}
