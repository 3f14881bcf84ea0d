package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// requestInstruments is a request counter paired with a duration histogram.
type requestInstruments struct {
	counter metric.Int64Counter
	histo   metric.Float64Histogram
}

func newRequestInstruments(meter metric.Meter, counterName, histoName, subject string) (*requestInstruments, error) {
	counter, err := meter.Int64Counter(
		counterName,
		metric.WithDescription(fmt.Sprintf("Total number of %s requests", subject)),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	histo, err := meter.Float64Histogram(
		histoName,
		metric.WithDescription(fmt.Sprintf("Duration of %s requests in seconds", subject)),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	return &requestInstruments{counter: counter, histo: histo}, nil
}

func (r *requestInstruments) record(ctx context.Context, duration time.Duration, attrs ...attribute.KeyValue) {
	r.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
	r.histo.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// instrumentedTransport records every outgoing request to the remote service.
type instrumentedTransport struct {
	next        http.RoundTripper
	instruments *requestInstruments
}

// NewInstrumentedTransport wraps next so each round trip is counted by host,
// method, and status code. Requests that get no response use status "error".
func NewInstrumentedTransport(
	next http.RoundTripper,
	meterProvider metric.MeterProvider,
	namespace string,
) (http.RoundTripper, error) {
	if next == nil {
		next = http.DefaultTransport
	}
	instruments, err := newRequestInstruments(
		meterProvider.Meter(namespace),
		fmt.Sprintf("%s_client_requests_total", namespace),
		fmt.Sprintf("%s_client_request_duration_seconds", namespace),
		"remote service",
	)
	if err != nil {
		return nil, err
	}
	return &instrumentedTransport{next: next, instruments: instruments}, nil
}

// RoundTrip implements http.RoundTripper.
func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	t.instruments.record(req.Context(), time.Since(start),
		attribute.String("host", req.URL.Host),
		attribute.String("method", req.Method),
		attribute.String("status_code", status),
	)

	return resp, err
}
