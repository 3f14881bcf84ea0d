package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstrumentedTransport(t *testing.T) {
	provider := newTestProvider(t, "badge_test")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	transport, err := NewInstrumentedTransport(nil, provider.MeterProvider(), "badge_test")
	require.NoError(t, err)
	client := &http.Client{Transport: transport, Timeout: time.Second}

	resp, err := client.Post(server.URL+"/api/scan", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()
	_, err = client.Get(downURL)
	assert.Error(t, err)

	output := scrape(t, provider)

	assertMetricLine(t, output,
		`badge_test_client_requests_total`,
		`method="POST".*status_code="429"`,
		`1`,
	)
	assertMetricLine(t, output,
		`badge_test_client_requests_total`,
		`method="GET".*status_code="error"`,
		`1`,
	)
}
