package domain

import "time"

// ReaderStatus is a point-in-time snapshot of the reader, safe to expose to
// operators. It never carries the bearer token value.
type ReaderStatus struct {
	ReaderID       string
	Connected      bool
	AuthEnabled    bool
	TokenValid     bool
	TokenExpiresAt time.Time
	Indicator      IndicatorState
	LastOutcome    *Outcome
	LastScanAt     time.Time
	ScansTotal     int
}
