package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// StatusSource provides reader state snapshots.
type StatusSource interface {
	Status() scanDomain.ReaderStatus
}

// RegisterReaderGauges exports link, token, and indicator state as gauges
// observed from source at scrape time.
func RegisterReaderGauges(meterProvider metric.MeterProvider, namespace string, source StatusSource) error {
	meter := meterProvider.Meter(namespace)

	connected, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_network_connected", namespace),
		metric.WithDescription("Whether the network link is up"),
	)
	if err != nil {
		return fmt.Errorf("failed to create connected gauge: %w", err)
	}

	tokenValid, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_auth_token_valid", namespace),
		metric.WithDescription("Whether a usable bearer token is stored"),
	)
	if err != nil {
		return fmt.Errorf("failed to create token gauge: %w", err)
	}

	busy, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_indicator_busy", namespace),
		metric.WithDescription("Whether an outcome is being displayed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create indicator gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		status := source.Status()
		o.ObserveInt64(connected, boolToInt(status.Connected))
		o.ObserveInt64(tokenValid, boolToInt(status.TokenValid))
		o.ObserveInt64(busy, boolToInt(!status.Indicator.IsIdle()))
		return nil
	}, connected, tokenValid, busy)
	if err != nil {
		return fmt.Errorf("failed to register reader gauges: %w", err)
	}
	return nil
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
