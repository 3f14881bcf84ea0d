// Package usecase implements the badge scan pipeline: submitting scan events to
// the remote service, driving the visual indicator, and the reader polling loop.
package usecase

import (
	"context"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// ScanSubmitter sends one scan event to the remote service and classifies the result.
type ScanSubmitter interface {
	// Submit always returns exactly one Outcome. It never returns an error.
	Submit(ctx context.Context, event *scanDomain.ScanEvent) scanDomain.Outcome
}

// FeedbackController translates outcomes into timed indicator states.
type FeedbackController interface {
	// Show displays the outcome color and schedules the revert to Idle.
	Show(ctx context.Context, outcome scanDomain.Outcome)
	// Wait blocks until the indicator is Idle or ctx is done.
	Wait(ctx context.Context) error
	// Busy reports whether a feedback interval is in progress.
	Busy() bool
	// State returns the current indicator state.
	State() scanDomain.IndicatorState
	// Alarm blinks the error color until ctx is done.
	Alarm(ctx context.Context)
	// Stop cancels any pending revert and turns the indicator off.
	Stop(ctx context.Context)
}

// CardReader polls a card reader peripheral.
type CardReader interface {
	// Read returns the canonical tag identifier of a present card. present is
	// false when no card is in the field.
	Read(ctx context.Context) (tagID string, present bool, err error)
}

// Connectivity reports and restores the network link.
type Connectivity interface {
	IsConnected(ctx context.Context) bool
	// Connect establishes the link at startup.
	Connect(ctx context.Context) error
	// Reconnect restores a lost link, usually with fewer attempts than Connect.
	Reconnect(ctx context.Context) error
}

// Indicator is a visual output that can display one color at a time.
type Indicator interface {
	SetColor(ctx context.Context, color scanDomain.Color) error
}
