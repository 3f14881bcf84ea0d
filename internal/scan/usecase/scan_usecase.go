package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
	"github.com/allisson/badgereader/internal/scan/service"
)

// maxDrainBytes bounds how much of a scan response body is read before closing.
const maxDrainBytes = 64 << 10

// SubmitterConfig holds scan submission configuration.
type SubmitterConfig struct {
	ScanURL     string
	AuthEnabled bool
}

// scanRequest is the JSON body posted for each scan.
type scanRequest struct {
	RFID string `json:"rfid"`
}

// scanSubmitter implements ScanSubmitter over HTTP.
type scanSubmitter struct {
	config       SubmitterConfig
	httpClient   *http.Client
	store        *service.TokenStore
	acquirer     service.TokenAcquirer
	connectivity Connectivity
	clock        service.Clock
	logger       *slog.Logger
}

// NewScanSubmitter creates a ScanSubmitter. store and acquirer may be nil when
// auth is disabled, and connectivity may be nil when no link check is wired.
func NewScanSubmitter(
	config SubmitterConfig,
	httpClient *http.Client,
	store *service.TokenStore,
	acquirer service.TokenAcquirer,
	connectivity Connectivity,
	clock service.Clock,
	logger *slog.Logger,
) ScanSubmitter {
	if clock == nil {
		clock = time.Now
	}
	return &scanSubmitter{
		config:       config,
		httpClient:   httpClient,
		store:        store,
		acquirer:     acquirer,
		connectivity: connectivity,
		clock:        clock,
		logger:       logger,
	}
}

// Submit posts the scan event and maps the response to an Outcome.
func (s *scanSubmitter) Submit(ctx context.Context, event *scanDomain.ScanEvent) scanDomain.Outcome {
	logger := s.logger.With(
		slog.String("scan_id", event.ID.String()),
		slog.String("tag_id", event.TagID),
	)

	if s.connectivity != nil && !s.connectivity.IsConnected(ctx) {
		logger.Error("scan dropped, network not connected")
		return scanDomain.TransportError("not connected")
	}

	var bearer string
	if s.config.AuthEnabled {
		token := s.store.Get()
		if !token.IsUsable(s.clock()) {
			refreshed, err := s.acquirer.Refresh(ctx)
			if err != nil {
				logger.Error("scan dropped, auth token refresh failed", slog.Any("error", err))
				return scanDomain.AuthRefreshFailed()
			}
			token = refreshed
		}
		bearer = token.Value
	}

	resp, err := s.post(ctx, event, bearer)
	if err != nil {
		logger.Error("scan request failed", slog.Any("error", err))
		return scanDomain.TransportError(err.Error())
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		logger.Info("scan accepted", slog.Int("status_code", resp.StatusCode))
		return scanDomain.Success()
	case http.StatusUnauthorized:
		if !s.config.AuthEnabled {
			logger.Error("scan rejected as unauthorized, auth is disabled")
			return scanDomain.Unauthorized()
		}
		// The scan is not retried here; the fresh token serves the next scan.
		s.store.Clear()
		_, refreshErr := s.acquirer.Refresh(ctx)
		logger.Error("scan rejected as unauthorized, token refreshed",
			slog.Bool("refreshed", refreshErr == nil),
		)
		return scanDomain.Unauthorized()
	case http.StatusTooManyRequests:
		logger.Info("scan in cooldown")
		return scanDomain.Cooldown()
	default:
		logger.Error("scan rejected by server", slog.Int("status_code", resp.StatusCode))
		return scanDomain.ServerError(resp.StatusCode)
	}
}

func (s *scanSubmitter) post(ctx context.Context, event *scanDomain.ScanEvent, bearer string) (*http.Response, error) {
	body, err := json.Marshal(scanRequest{RFID: event.TagID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.ScanURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return s.httpClient.Do(req)
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxDrainBytes))
	_ = body.Close()
}
