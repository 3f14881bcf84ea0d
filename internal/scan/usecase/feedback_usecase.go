package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
	"github.com/allisson/badgereader/internal/scan/service"
)

// defaultAlarmInterval is the blink half-period used by Alarm.
const defaultAlarmInterval = 500 * time.Millisecond

// FeedbackConfig holds indicator timing configuration.
type FeedbackConfig struct {
	DisplayDuration time.Duration
	AlarmInterval   time.Duration
}

// feedbackController implements FeedbackController with a revert timer.
type feedbackController struct {
	config    FeedbackConfig
	indicator Indicator
	clock     service.Clock
	logger    *slog.Logger

	mu    sync.Mutex
	state scanDomain.IndicatorState
	// generation invalidates revert timers of replaced intervals.
	generation uint64
	timer      *time.Timer
	// idle is closed whenever state is Idle.
	idle chan struct{}
}

// NewFeedbackController creates a FeedbackController driving indicator.
func NewFeedbackController(
	config FeedbackConfig,
	indicator Indicator,
	clock service.Clock,
	logger *slog.Logger,
) FeedbackController {
	if config.DisplayDuration <= 0 {
		config.DisplayDuration = scanDomain.DefaultDisplayDuration
	}
	if config.AlarmInterval <= 0 {
		config.AlarmInterval = defaultAlarmInterval
	}
	if clock == nil {
		clock = time.Now
	}
	idle := make(chan struct{})
	close(idle)
	return &feedbackController{
		config:    config,
		indicator: indicator,
		clock:     clock,
		logger:    logger,
		state:     scanDomain.IdleState(),
		idle:      idle,
	}
}

// Show displays the outcome color. A Show issued during an active interval
// replaces it and restarts the display duration.
func (f *feedbackController) Show(ctx context.Context, outcome scanDomain.Outcome) {
	color := outcome.Color()

	f.mu.Lock()
	defer f.mu.Unlock()

	generation := f.begin(color)
	f.setColor(ctx, color)
	revertCtx := context.WithoutCancel(ctx)
	f.timer = time.AfterFunc(f.config.DisplayDuration, func() {
		f.revert(revertCtx, generation)
	})
}

// Wait blocks until the indicator is Idle.
func (f *feedbackController) Wait(ctx context.Context) error {
	f.mu.Lock()
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Busy reports whether a color is being displayed.
func (f *feedbackController) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.state.IsIdle()
}

// State returns the current indicator state.
func (f *feedbackController) State() scanDomain.IndicatorState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Alarm blinks red until ctx is done, then reverts to Idle. It returns early
// when Show or Stop takes over the indicator.
func (f *feedbackController) Alarm(ctx context.Context) {
	f.mu.Lock()
	generation := f.begin(scanDomain.ColorRed)
	f.setColor(ctx, scanDomain.ColorRed)
	f.mu.Unlock()

	f.logger.Error("alarm raised")

	ticker := time.NewTicker(f.config.AlarmInterval)
	defer ticker.Stop()

	lit := true
	for {
		select {
		case <-ctx.Done():
			f.revert(context.WithoutCancel(ctx), generation)
			return
		case <-ticker.C:
			lit = !lit
			f.mu.Lock()
			if f.generation != generation {
				f.mu.Unlock()
				return
			}
			if lit {
				f.setColor(ctx, scanDomain.ColorRed)
			} else {
				f.setColor(ctx, scanDomain.ColorNone)
			}
			f.mu.Unlock()
		}
	}
}

// Stop cancels a pending revert and turns the indicator off immediately.
func (f *feedbackController) Stop(ctx context.Context) {
	f.mu.Lock()
	generation := f.generation
	f.mu.Unlock()
	f.revert(ctx, generation)
}

// begin starts a new interval showing color and returns its generation.
// The caller must hold f.mu.
func (f *feedbackController) begin(color scanDomain.Color) uint64 {
	f.generation++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	if f.state.IsIdle() {
		f.idle = make(chan struct{})
	}
	f.state = scanDomain.ShowingState(color, f.clock())
	return f.generation
}

// revert returns to Idle unless a newer interval has started.
func (f *feedbackController) revert(ctx context.Context, generation uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if generation != f.generation || f.state.IsIdle() {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.generation++
	f.state = scanDomain.IdleState()
	f.setColor(ctx, scanDomain.ColorNone)
	close(f.idle)
}

// setColor drives the indicator. The caller must hold f.mu so color changes
// reach the indicator in state order.
func (f *feedbackController) setColor(ctx context.Context, color scanDomain.Color) {
	if err := f.indicator.SetColor(ctx, color); err != nil {
		f.logger.Warn("failed to set indicator color",
			slog.String("color", string(color)),
			slog.Any("error", err),
		)
	}
}
