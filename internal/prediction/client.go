// Package prediction talks to the external salary prediction service.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"salary-predictor/internal/observability"
	"salary-predictor/internal/profile"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 10 * time.Second

	predictPath  = "/predict"
	maxBodyBytes = 1 << 20
)

var tracer = otel.Tracer("prediction")

// Client sends profile snapshots to POST {base}/predict. Each call is a single
// attempt: no retries and no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient validates baseURL and builds a client whose transport is traced
// with otelhttp.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse prediction base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("prediction base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("prediction base url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: base,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalised service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Predict sends state as the request body and returns the predicted salary.
// Any failure is an *Error whose Message is suitable for display.
func (c *Client) Predict(ctx context.Context, state profile.FormState) (decimal.Decimal, error) {
	endpoint := c.baseURL + predictPath

	ctx, span := tracer.Start(ctx, "prediction.predict",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("prediction.endpoint", endpoint),
			attribute.String("profile.country", state.Country.String()),
			attribute.String("profile.dev_type", state.DevType.String()),
		),
	)
	defer span.End()

	logger := observability.LoggerWithTrace(ctx)

	start := time.Now()
	salary, err := c.predict(ctx, endpoint, state)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	requestCounter.Add(ctx, 1, attrs)
	requestDuration.Record(ctx, elapsed, attrs)

	if err != nil {
		kind := KindOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, Message(err))
		failureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))

		fields := []zap.Field{
			zap.String("endpoint", endpoint),
			zap.String("kind", kind.String()),
			zap.String("message", Message(err)),
			zap.Float64("duration_ms", elapsed),
			zap.String("request_id", observability.RequestIDFromContext(ctx)),
		}
		if kind == KindTransportFailure {
			logger.Warn("prediction request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("prediction not available", fields...)
		}
		return decimal.Decimal{}, err
	}

	value := salary.InexactFloat64()
	salaryGauge.Record(ctx, value)
	span.SetAttributes(attribute.Float64("prediction.salary", value))
	span.SetStatus(codes.Ok, "")

	logger.Info("prediction received",
		zap.String("endpoint", endpoint),
		zap.String("salary", salary.String()),
		zap.Float64("duration_ms", elapsed),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)
	return salary, nil
}

func (c *Client) predict(ctx context.Context, endpoint string, state profile.FormState) (decimal.Decimal, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("encode prediction request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := observability.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(observability.RequestIDHeader, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, c.transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return decimal.Decimal{}, c.transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := detailMessage(body)
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
		}
		return decimal.Decimal{}, &Error{
			Kind:       KindTransportFailure,
			Message:    msg,
			StatusCode: resp.StatusCode,
		}
	}

	return decodeResult(body)
}

// transportError picks the most specific message for a request that never
// produced a response. Raw dial errors are kept as the cause only.
func (c *Client) transportError(err error) error {
	msg := UnreachableMessage

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		msg = fmt.Sprintf("timeout of %s exceeded", c.timeout)
	case errors.Is(err, context.Canceled):
		msg = "Prediction request was canceled."
	}

	return &Error{Kind: KindTransportFailure, Message: msg, Cause: err}
}

// decodeResult classifies a 2xx body. An "error" field wins over
// "predicted_salary" when both are present.
func decodeResult(body []byte) (decimal.Decimal, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return decimal.Decimal{}, &Error{
			Kind:    KindMalformedResponse,
			Message: UnexpectedResponseMessage,
			Cause:   err,
		}
	}

	if raw, ok := fields["error"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil {
			if msg = cleanMessage(msg); msg != "" {
				return decimal.Decimal{}, &Error{Kind: KindServerRejection, Message: msg}
			}
		}
	}

	if raw, ok := fields["predicted_salary"]; ok {
		amount, err := decimal.NewFromString(strings.TrimSpace(string(raw)))
		if err == nil {
			return amount, nil
		}
		return decimal.Decimal{}, &Error{
			Kind:    KindMalformedResponse,
			Message: UnexpectedResponseMessage,
			Cause:   fmt.Errorf("predicted_salary is not a number: %w", err),
		}
	}

	return decimal.Decimal{}, &Error{Kind: KindMalformedResponse, Message: UnexpectedResponseMessage}
}

// detailMessage extracts "detail" from an error body. FastAPI sends either a
// string or a list of validation entries with a "msg" each.
func detailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return cleanMessage(text)
	}

	var entries []validationEntry
	if err := json.Unmarshal(envelope.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, entry := range entries {
			if m := cleanMessage(entry.Msg); m != "" {
				msgs = append(msgs, m)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}

// Ping calls the service root and returns its welcome message.
func (c *Client) Ping(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "prediction.ping", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("build ping request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.transportError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, Message(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &Error{
			Kind:       KindTransportFailure,
			Message:    fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
		span.SetStatus(codes.Error, err.Message)
		return "", err
	}

	var body pingResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return "", &Error{Kind: KindMalformedResponse, Message: UnexpectedResponseMessage, Cause: err}
	}

	span.SetStatus(codes.Ok, "")
	return cleanMessage(body.Message), nil
}
