package salary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"salary-predictor/internal/form"
	"salary-predictor/internal/prediction"
	"salary-predictor/internal/profile"
	"salary-predictor/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

type predictorFunc func(ctx context.Context, state profile.FormState) (decimal.Decimal, error)

func (f predictorFunc) Predict(ctx context.Context, state profile.FormState) (decimal.Decimal, error) {
	return f(ctx, state)
}

func salaryOf(amount int64) predictorFunc {
	return func(context.Context, profile.FormState) (decimal.Decimal, error) {
		return decimal.NewFromInt(amount), nil
	}
}

func rejecting(msg string) predictorFunc {
	return func(context.Context, profile.FormState) (decimal.Decimal, error) {
		return decimal.Decimal{}, &prediction.Error{Kind: prediction.KindServerRejection, Message: msg}
	}
}

type fixture struct {
	router   http.Handler
	sessions *Sessions
	cookie   *http.Cookie
}

func newFixture(t *testing.T, p form.Predictor) *fixture {
	t.Helper()

	view, err := NewView()
	if err != nil {
		t.Fatalf("building view: %v", err)
	}
	sessions := NewSessions(func() *form.Controller { return form.NewController(p) }, "", time.Minute)
	t.Cleanup(sessions.CloseAll)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(sessions, view))
	return &fixture{router: r, sessions: sessions}
}

// do sends req with the fixture's session cookie and remembers any new one.
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}
	w := testutil.ExecuteRequest(req, f.router)
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultCookieName && c.MaxAge >= 0 {
			f.cookie = c
		}
	}
	return w
}

func (f *fixture) formView(t *testing.T, w *httptest.ResponseRecorder) FormView {
	t.Helper()
	var v FormView
	testutil.DecodeJSONBody(t, w.Body, &v)
	return v
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPageRendersDefaults(t *testing.T) {
	f := newFixture(t, salaryOf(1))

	w := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if f.cookie == nil {
		t.Fatal("expected a session cookie")
	}

	body := w.Body.String()
	for _, want := range []string{
		`<option value="United States of America" selected>`,
		`name="YearsCodePro" value="5"`,
		`placeholder="e.g., 5 or Less than 1 year"`,
		"Predict Salary",
		"Primary Role",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	if strings.Contains(body, "alert-danger") || strings.Contains(body, "alert-success") {
		t.Fatal("did not expect a result before the first submission")
	}
}

func TestSubmitPageShowsPrediction(t *testing.T) {
	var sent profile.FormState
	f := newFixture(t, predictorFunc(func(_ context.Context, state profile.FormState) (decimal.Decimal, error) {
		sent = state
		return decimal.NewFromInt(95000), nil
	}))

	w := f.do(postForm(url.Values{
		"Country":      {"Germany"},
		"YearsCodePro": {"Less than 1 year"},
	}))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if !strings.Contains(w.Body.String(), "$95,000") {
		t.Fatalf("expected formatted salary in page, got:\n%s", w.Body.String())
	}

	want := profile.DefaultState()
	want.Country = profile.CountryGermany
	want.YearsCodePro = "Less than 1 year"
	if diff := cmp.Diff(want, sent); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitPageShowsError(t *testing.T) {
	f := newFixture(t, rejecting("Unsupported country"))

	w := f.do(postForm(url.Values{}))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	body := w.Body.String()
	if !strings.Contains(body, "Error: Unsupported country") {
		t.Fatalf("expected error in page, got:\n%s", body)
	}
	if strings.Contains(body, "alert-success") {
		t.Fatal("did not expect a prediction alongside the error")
	}
}

func TestSubmitPageRejectsUnknownOption(t *testing.T) {
	called := false
	f := newFixture(t, predictorFunc(func(context.Context, profile.FormState) (decimal.Decimal, error) {
		called = true
		return decimal.Zero, nil
	}))

	w := f.do(postForm(url.Values{"RemoteWork": {"Sometimes"}}))
	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)

	if called {
		t.Fatal("predictor must not be called when a field is rejected")
	}
	if !strings.Contains(w.Body.String(), "Remote Work: invalid value.") {
		t.Fatal("expected a notice naming the rejected field")
	}
}

func TestSubmitPageRejectionKeepsEarlierFields(t *testing.T) {
	f := newFixture(t, salaryOf(1))

	w := f.do(postForm(url.Values{
		"Country":    {"Germany"},
		"RemoteWork": {"Sometimes"},
	}))
	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/form", nil))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if got := f.formView(t, w).Values; got != profile.DefaultState() {
		t.Fatalf("rejected post must not change the form, got %+v", got)
	}
}

func TestSubmitPageEscapesRejectionText(t *testing.T) {
	f := newFixture(t, rejecting("YearsCodePro must be <int> years"))

	w := f.do(postForm(url.Values{}))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if !strings.Contains(w.Body.String(), "Error: YearsCodePro must be &lt;int&gt; years") {
		t.Fatalf("expected escaped error text, got:\n%s", w.Body.String())
	}

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/form", nil))
	if got := f.formView(t, w).Error; got != "YearsCodePro must be <int> years" {
		t.Fatalf("expected stored error unchanged, got %q", got)
	}
}

func TestOptionsListsEveryField(t *testing.T) {
	f := newFixture(t, salaryOf(1))

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/options", nil))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var got []FieldOptions
	testutil.DecodeJSONBody(t, w.Body, &got)

	sizes := map[string]int{}
	for _, fo := range got {
		sizes[fo.Field] = len(fo.Options)
	}
	want := map[string]int{
		"Country": 12, "EdLevel": 4, "YearsCodePro": 0, "DevType": 9,
		"RemoteWork": 3, "Age_group": 8, "MainBranch": 1,
	}
	if diff := cmp.Diff(want, sizes); diff != "" {
		t.Fatalf("option sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIUpdateFieldThenSubmit(t *testing.T) {
	f := newFixture(t, salaryOf(95000))

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/form", nil))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	initial := f.formView(t, w)
	if initial.Values != profile.DefaultState() || initial.Status != "idle" || !initial.SubmitEnabled {
		t.Fatalf("unexpected initial view %+v", initial)
	}

	w = f.do(testutil.NewJSONRequest(http.MethodPut, "/api/form/fields/Age_group", `{"value":"35-44 years old"}`))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if got := f.formView(t, w).Values.AgeGroup; got != profile.AgeGroup35To44 {
		t.Fatalf("expected age group to be updated, got %s", got)
	}

	w = f.do(httptest.NewRequest(http.MethodPost, "/api/form/submit", nil))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	v := f.formView(t, w)
	if v.PredictedSalaryDisplay != "95,000" || v.Error != "" {
		t.Fatalf("unexpected result %+v", v)
	}
	if v.PredictedSalary == nil || !v.PredictedSalary.Equal(decimal.NewFromInt(95000)) {
		t.Fatalf("expected exact salary, got %v", v.PredictedSalary)
	}
	if v.Values.AgeGroup != profile.AgeGroup35To44 {
		t.Fatal("session lost the field update")
	}
}

func TestAPISubmitFailureIsReportedInBody(t *testing.T) {
	f := newFixture(t, predictorFunc(func(context.Context, profile.FormState) (decimal.Decimal, error) {
		return decimal.Decimal{}, &prediction.Error{Kind: prediction.KindTransportFailure}
	}))

	w := f.do(httptest.NewRequest(http.MethodPost, "/api/form/submit", nil))
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	v := f.formView(t, w)
	if v.Error != prediction.UnreachableMessage || v.PredictedSalary != nil {
		t.Fatalf("unexpected result %+v", v)
	}
}

func TestAPIUpdateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		want   int
	}{
		{name: "unknown field", target: "/api/form/fields/Salary", body: `{"value":"1"}`, want: http.StatusNotFound},
		{name: "unknown option", target: "/api/form/fields/EdLevel", body: `{"value":"PhD"}`, want: http.StatusUnprocessableEntity},
		{name: "missing value", target: "/api/form/fields/YearsCodePro", body: `{}`, want: http.StatusBadRequest},
		{name: "invalid json", target: "/api/form/fields/YearsCodePro", body: `{`, want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, salaryOf(1))

			w := f.do(testutil.NewJSONRequest(http.MethodPut, tc.target, tc.body))
			testutil.CheckResponseCode(t, tc.want, w.Code)

			var payload map[string]string
			testutil.DecodeJSONBody(t, w.Body, &payload)
			if payload["error"] == "" {
				t.Fatalf("expected an error message, got %v", payload)
			}
		})
	}
}

func TestAPISubmitWhileInFlightConflicts(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := newFixture(t, predictorFunc(func(context.Context, profile.FormState) (decimal.Decimal, error) {
		close(started)
		<-release
		return decimal.NewFromInt(1), nil
	}))
	f.do(httptest.NewRequest(http.MethodGet, "/api/form", nil))

	first := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/form/submit", nil)
		req.AddCookie(f.cookie)
		first <- testutil.ExecuteRequest(req, f.router).Code
	}()
	<-started

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/form", nil))
	if v := f.formView(t, w); v.SubmitEnabled || v.Indicator != "Predicting..." {
		t.Fatalf("expected in-flight view, got %+v", v)
	}

	w = f.do(httptest.NewRequest(http.MethodPost, "/api/form/submit", nil))
	testutil.CheckResponseCode(t, http.StatusConflict, w.Code)

	close(release)
	select {
	case code := <-first:
		testutil.CheckResponseCode(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the first submission")
	}
}

func TestAPIResetStartsFreshSession(t *testing.T) {
	f := newFixture(t, salaryOf(1))

	f.do(testutil.NewJSONRequest(http.MethodPut, "/api/form/fields/Country", `{"value":"India"}`))
	old := f.cookie

	w := f.do(httptest.NewRequest(http.MethodDelete, "/api/form", nil))
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)
	if f.sessions.Len() != 0 {
		t.Fatalf("expected no sessions after reset, got %d", f.sessions.Len())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
	req.AddCookie(old)
	w = testutil.ExecuteRequest(req, f.router)
	if got := f.formView(t, w).Values; got != profile.DefaultState() {
		t.Fatalf("expected default values after reset, got %+v", got)
	}
}

func TestSessionsSweepClosesIdleControllers(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var created []*form.Controller
	s := NewSessions(func() *form.Controller {
		c := form.NewController(salaryOf(1))
		created = append(created, c)
		return c
	}, "", 30*time.Minute)
	s.now = func() time.Time { return now }

	s.Controller(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	now = now.Add(20 * time.Minute)
	s.Controller(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	now = now.Add(15 * time.Minute)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if !created[0].Closed() || created[1].Closed() {
		t.Fatal("expected only the idle controller to be closed")
	}

	s.CloseAll()
	if !created[1].Closed() || s.Len() != 0 {
		t.Fatal("expected CloseAll to close every controller")
	}
}

func TestSessionsIgnoreMalformedCookie(t *testing.T) {
	s := NewSessions(func() *form.Controller { return form.NewController(salaryOf(1)) }, "", time.Minute)
	t.Cleanup(s.CloseAll)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "not-a-uuid"})
	w := httptest.NewRecorder()
	s.Controller(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "not-a-uuid" {
		t.Fatalf("expected a fresh session cookie, got %v", cookies)
	}
}
