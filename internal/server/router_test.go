package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salary-predictor/internal/form"
	"salary-predictor/internal/observability"
	"salary-predictor/internal/profile"
	"salary-predictor/internal/salary"
	"salary-predictor/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type stubPredictor struct {
	pingErr error
}

func (s stubPredictor) Predict(context.Context, profile.FormState) (decimal.Decimal, error) {
	return decimal.NewFromInt(5), nil
}

func (s stubPredictor) Ping(context.Context) (string, error) {
	return "welcome", s.pingErr
}

func newTestRouter(t *testing.T, p stubPredictor) http.Handler {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := salary.InitMetrics(); err != nil {
		t.Fatalf("initializing salary metrics: %v", err)
	}

	view, err := salary.NewView()
	if err != nil {
		t.Fatalf("building view: %v", err)
	}
	sessions := salary.NewSessions(func() *form.Controller { return form.NewController(p) }, "", time.Minute)
	t.Cleanup(sessions.CloseAll)

	return NewRouter(Deps{
		Prediction: p,
		Salary:     salary.NewHandler(sessions, view),
	})
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, stubPredictor{})

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/health", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterReadyReflectsPredictionService(t *testing.T) {
	up := newTestRouter(t, stubPredictor{})
	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/ready", nil), up)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	down := newTestRouter(t, stubPredictor{pingErr: errors.New("connection refused")})
	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/ready", nil), down)
	testutil.CheckResponseCode(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewRouterMetricsEndpointExportsSessions(t *testing.T) {
	router := newTestRouter(t, stubPredictor{})

	testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), router)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if !strings.Contains(w.Body.String(), "salary_active_sessions") {
		t.Fatal("expected salary_active_sessions in metrics output")
	}
}

func TestNewRouterSubmitSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t, stubPredictor{})

	req := httptest.NewRequest(http.MethodPost, "/api/form/submit", bytes.NewReader(nil))
	w := testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Result().Body, &payload)

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}
	if got, ok := payload["predicted_salary_display"].(string); !ok || got != "5" {
		t.Fatalf("expected predicted_salary_display 5, got %#v", payload["predicted_salary_display"])
	}
}
