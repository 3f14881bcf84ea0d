package usecase

import (
	"context"
	"time"

	"github.com/allisson/badgereader/internal/metrics"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
	"github.com/allisson/badgereader/internal/scan/service"
)

// scanSubmitterWithMetrics decorates ScanSubmitter with metrics instrumentation.
type scanSubmitterWithMetrics struct {
	next    ScanSubmitter
	metrics metrics.BusinessMetrics
}

// NewScanSubmitterWithMetrics wraps a ScanSubmitter with metrics recording.
// The status label is the outcome kind.
func NewScanSubmitterWithMetrics(submitter ScanSubmitter, m metrics.BusinessMetrics) ScanSubmitter {
	return &scanSubmitterWithMetrics{
		next:    submitter,
		metrics: m,
	}
}

// Submit records metrics for scan submissions.
func (s *scanSubmitterWithMetrics) Submit(ctx context.Context, event *scanDomain.ScanEvent) scanDomain.Outcome {
	start := time.Now()
	outcome := s.next.Submit(ctx, event)

	status := string(outcome.Kind)

	s.metrics.RecordOperation(ctx, metrics.DomainScan, metrics.OperationScanSubmit, status)
	s.metrics.RecordDuration(ctx, metrics.DomainScan, metrics.OperationScanSubmit, time.Since(start), status)

	return outcome
}

// tokenAcquirerWithMetrics decorates service.TokenAcquirer with metrics instrumentation.
type tokenAcquirerWithMetrics struct {
	next    service.TokenAcquirer
	metrics metrics.BusinessMetrics
}

// NewTokenAcquirerWithMetrics wraps a TokenAcquirer with metrics recording.
func NewTokenAcquirerWithMetrics(acquirer service.TokenAcquirer, m metrics.BusinessMetrics) service.TokenAcquirer {
	return &tokenAcquirerWithMetrics{
		next:    acquirer,
		metrics: m,
	}
}

// Refresh records metrics for credential exchanges.
func (t *tokenAcquirerWithMetrics) Refresh(ctx context.Context) (scanDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Refresh(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, metrics.DomainAuth, metrics.OperationTokenRefresh, status)
	t.metrics.RecordDuration(ctx, metrics.DomainAuth, metrics.OperationTokenRefresh, time.Since(start), status)

	return token, err
}
