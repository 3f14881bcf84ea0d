package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertMetricLine checks that the Prometheus output contains a metric matching
// the given name, partial label pattern, and value. Extra OTel scope labels are
// tolerated.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func TestNewBusinessMetrics(t *testing.T) {
	provider := newTestProvider(t, "test_app")

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestBusinessMetrics_Record(t *testing.T) {
	provider := newTestProvider(t, "badge_test")
	bm, err := NewBusinessMetrics(provider.MeterProvider(), "badge_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, DomainScan, OperationScanSubmit, "success")
	bm.RecordOperation(ctx, DomainScan, OperationScanSubmit, "success")
	bm.RecordOperation(ctx, DomainScan, OperationScanSubmit, "cooldown")
	bm.RecordOperation(ctx, DomainAuth, OperationTokenRefresh, "error")
	bm.RecordDuration(ctx, DomainScan, OperationScanSubmit, 40*time.Millisecond, "success")
	bm.RecordDuration(ctx, DomainScan, OperationScanSubmit, 3*time.Second, "success")
	bm.RecordDuration(ctx, DomainAuth, OperationTokenRefresh, 120*time.Millisecond, "error")

	output := scrape(t, provider)

	assertMetricLine(t, output,
		`badge_test_operations_total`,
		`domain="scan".*operation="scan_submit".*status="success"`,
		`2`,
	)
	assertMetricLine(t, output,
		`badge_test_operations_total`,
		`domain="scan".*operation="scan_submit".*status="cooldown"`,
		`1`,
	)
	assertMetricLine(t, output,
		`badge_test_operations_total`,
		`domain="auth".*operation="token_refresh".*status="error"`,
		`1`,
	)
	assertMetricLine(t, output,
		`badge_test_operation_duration_seconds_count`,
		`domain="scan".*operation="scan_submit".*status="success"`,
		`2`,
	)
	assertMetricLine(t, output,
		`badge_test_operation_duration_seconds_bucket`,
		`domain="scan".*status="success".*le="0.05"`,
		`1`,
	)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)

	noOpMetrics.RecordOperation(context.Background(), DomainScan, OperationScanSubmit, "success")
	noOpMetrics.RecordDuration(context.Background(), DomainAuth, OperationTokenRefresh, time.Second, "error")
}
