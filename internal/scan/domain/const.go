// Package domain defines the badge reader domain model: bearer tokens, scan
// events, submission outcomes, and indicator state.
package domain

import "time"

// GrantTypePassword is the fixed grant type sent with every credential exchange.
const GrantTypePassword = "password"

const (
	// DefaultValidityWindow is the client-side token lifetime. It is kept shorter
	// than the server-side lifetime (30 minutes) so a token is never used near expiry.
	DefaultValidityWindow = 25 * time.Minute

	// DefaultDisplayDuration is how long an outcome stays on the indicator.
	DefaultDisplayDuration = 2 * time.Second

	// DefaultScanCoolOff is the debounce interval after a scan before another card
	// presence is dispatched.
	DefaultScanCoolOff = 2 * time.Second
)
