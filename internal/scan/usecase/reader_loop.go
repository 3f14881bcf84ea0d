package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/allisson/badgereader/internal/errors"
	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
	"github.com/allisson/badgereader/internal/scan/service"
)

// ReaderLoopConfig holds reader loop configuration.
type ReaderLoopConfig struct {
	ReaderID          string
	AuthEnabled       bool
	PollInterval      time.Duration
	ScanCoolOff       time.Duration
	ReconnectInterval time.Duration
	FeedbackBlocking  bool
}

// ReaderLoop polls the card reader and dispatches each presented card through
// the submitter and the feedback controller, one scan at a time.
type ReaderLoop struct {
	config       ReaderLoopConfig
	reader       CardReader
	connectivity Connectivity
	submitter    ScanSubmitter
	feedback     FeedbackController
	store        *service.TokenStore
	acquirer     service.TokenAcquirer
	clock        service.Clock
	logger       *slog.Logger

	reconnectLimiter *rate.Limiter
	coolOffUntil     time.Time

	mu          sync.RWMutex
	connected   bool
	lastOutcome *scanDomain.Outcome
	lastScanAt  time.Time
	scansTotal  int
}

// NewReaderLoop creates a ReaderLoop. connectivity may be nil when the link is
// not checked. store and acquirer may be nil when auth is disabled.
func NewReaderLoop(
	config ReaderLoopConfig,
	reader CardReader,
	connectivity Connectivity,
	submitter ScanSubmitter,
	feedback FeedbackController,
	store *service.TokenStore,
	acquirer service.TokenAcquirer,
	clock service.Clock,
	logger *slog.Logger,
) *ReaderLoop {
	if config.PollInterval <= 0 {
		config.PollInterval = 50 * time.Millisecond
	}
	if config.ReconnectInterval <= 0 {
		config.ReconnectInterval = 5 * time.Second
	}
	if clock == nil {
		clock = time.Now
	}
	return &ReaderLoop{
		config:           config,
		reader:           reader,
		connectivity:     connectivity,
		submitter:        submitter,
		feedback:         feedback,
		store:            store,
		acquirer:         acquirer,
		clock:            clock,
		logger:           logger,
		reconnectLimiter: rate.NewLimiter(rate.Every(config.ReconnectInterval), 1),
		connected:        connectivity == nil,
	}
}

// Boot brings the link up and acquires the first token. When the link cannot
// be established it raises the alarm until ctx is done and returns
// ErrNotConnected.
func (l *ReaderLoop) Boot(ctx context.Context) error {
	if l.connectivity != nil {
		l.logger.Info("connecting to network")
		if err := l.connectivity.Connect(ctx); err != nil {
			l.logger.Error("failed to connect to network", slog.Any("error", err))
			l.feedback.Alarm(ctx)
			return errors.Wrap(scanDomain.ErrNotConnected, err.Error())
		}
		l.setConnected(true)
		l.logger.Info("network connected")
	}

	l.refreshToken(ctx)
	return nil
}

// Start runs the polling loop until ctx is done.
func (l *ReaderLoop) Start(ctx context.Context) error {
	l.logger.Info("starting reader loop",
		slog.Duration("poll_interval", l.config.PollInterval),
		slog.Duration("scan_cool_off", l.config.ScanCoolOff),
		slog.Bool("feedback_blocking", l.config.FeedbackBlocking),
	)

	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("stopping reader loop")
			return ctx.Err()
		case <-ticker.C:
			if err := l.Poll(ctx); err != nil && ctx.Err() == nil {
				l.logger.Warn("reader poll failed", slog.Any("error", err))
			}
		}
	}
}

// Poll performs one iteration of the loop: link check, card read, and at most
// one dispatched scan.
func (l *ReaderLoop) Poll(ctx context.Context) error {
	if !l.ensureConnected(ctx) {
		return nil
	}

	tagID, present, err := l.reader.Read(ctx)
	if err != nil {
		return errors.Wrap(scanDomain.ErrReaderUnavailable, err.Error())
	}
	if !present {
		return nil
	}

	now := l.clock()
	if l.feedback.Busy() {
		l.logger.Debug("card ignored while feedback is showing")
		return nil
	}
	if now.Before(l.coolOffUntil) {
		return nil
	}

	event, err := scanDomain.NewScanEventFromText(tagID, now)
	if err != nil {
		return err
	}
	return l.dispatch(ctx, event)
}

// Dispatch submits a single scan event and shows its outcome.
func (l *ReaderLoop) Dispatch(ctx context.Context, event *scanDomain.ScanEvent) scanDomain.Outcome {
	l.logger.Info("card detected",
		slog.String("scan_id", event.ID.String()),
		slog.String("tag_id", event.TagID),
	)

	outcome := l.submitter.Submit(ctx, event)
	l.record(event, outcome)
	l.feedback.Show(ctx, outcome)
	return outcome
}

// Status returns a snapshot of the loop and its collaborators.
func (l *ReaderLoop) Status() scanDomain.ReaderStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	status := scanDomain.ReaderStatus{
		ReaderID:    l.config.ReaderID,
		Connected:   l.connected,
		AuthEnabled: l.config.AuthEnabled,
		Indicator:   l.feedback.State(),
		LastScanAt:  l.lastScanAt,
		ScansTotal:  l.scansTotal,
	}
	if l.lastOutcome != nil {
		outcome := *l.lastOutcome
		status.LastOutcome = &outcome
	}
	if l.config.AuthEnabled && l.store != nil {
		token := l.store.Get()
		status.TokenValid = token.IsUsable(l.clock())
		status.TokenExpiresAt = token.ExpiresAt
	}
	return status
}

func (l *ReaderLoop) dispatch(ctx context.Context, event *scanDomain.ScanEvent) error {
	l.Dispatch(ctx, event)

	var err error
	if l.config.FeedbackBlocking {
		err = l.feedback.Wait(ctx)
	}
	l.coolOffUntil = l.clock().Add(l.config.ScanCoolOff)
	return err
}

// ensureConnected reports whether the link is up, attempting a rate limited
// reconnect when it is not.
func (l *ReaderLoop) ensureConnected(ctx context.Context) bool {
	if l.connectivity == nil {
		return true
	}
	if l.connectivity.IsConnected(ctx) {
		l.setConnected(true)
		return true
	}

	if l.isConnected() {
		l.logger.Warn("network connection lost")
		l.setConnected(false)
	}
	if !l.reconnectLimiter.Allow() {
		return false
	}

	l.logger.Info("reconnecting to network")
	if err := l.connectivity.Reconnect(ctx); err != nil {
		l.logger.Error("failed to reconnect to network", slog.Any("error", err))
		return false
	}
	l.setConnected(true)
	l.logger.Info("network reconnected")

	l.refreshToken(ctx)
	return true
}

// refreshToken acquires a token ahead of the next scan. Failures are logged
// only; the submitter retries on demand.
func (l *ReaderLoop) refreshToken(ctx context.Context) {
	if !l.config.AuthEnabled || l.acquirer == nil {
		return
	}
	if _, err := l.acquirer.Refresh(ctx); err != nil {
		l.logger.Warn("initial auth token request failed", slog.Any("error", err))
	}
}

func (l *ReaderLoop) record(event *scanDomain.ScanEvent, outcome scanDomain.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastOutcome = &outcome
	l.lastScanAt = event.ObservedAt
	l.scansTotal++
}

func (l *ReaderLoop) setConnected(connected bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.connected = connected
}

func (l *ReaderLoop) isConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}
