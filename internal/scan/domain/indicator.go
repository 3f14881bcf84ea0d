package domain

import "time"

// Color is a visual indicator color. ColorNone turns the indicator off.
type Color string

const (
	ColorNone   Color = "none"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// IndicatorState is either Idle or Showing a color since a given instant.
type IndicatorState struct {
	Color Color
	Since time.Time
}

// IdleState returns the Idle indicator state.
func IdleState() IndicatorState {
	return IndicatorState{Color: ColorNone}
}

// ShowingState returns the state for a color displayed since the given instant.
func ShowingState(color Color, since time.Time) IndicatorState {
	return IndicatorState{Color: color, Since: since}
}

// IsIdle reports whether nothing is being displayed.
func (s IndicatorState) IsIdle() bool {
	return s.Color == "" || s.Color == ColorNone
}
