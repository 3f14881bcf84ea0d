package domain

import "fmt"

// OutcomeKind enumerates the terminal results of a scan submission.
type OutcomeKind string

const (
	// OutcomeSuccess means the remote service accepted the scan (200 or 201).
	OutcomeSuccess OutcomeKind = "success"

	// OutcomeCooldown means the remote service is throttling this tag (429).
	OutcomeCooldown OutcomeKind = "cooldown"

	// OutcomeUnauthorized means the bearer token was rejected (401).
	OutcomeUnauthorized OutcomeKind = "unauthorized"

	// OutcomeServerError means any other non-2xx status was returned.
	OutcomeServerError OutcomeKind = "server_error"

	// OutcomeTransportError means no response was received.
	OutcomeTransportError OutcomeKind = "transport_error"

	// OutcomeAuthRefreshFailed means a token could not be obtained before posting.
	OutcomeAuthRefreshFailed OutcomeKind = "auth_refresh_failed"
)

// Outcome is the classified result of one submission attempt.
// StatusCode is only set for ServerError and Detail only for TransportError.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Detail     string
}

// Success returns the accepted outcome.
func Success() Outcome { return Outcome{Kind: OutcomeSuccess} }

// Cooldown returns the server-throttled outcome.
func Cooldown() Outcome { return Outcome{Kind: OutcomeCooldown} }

// Unauthorized returns the rejected-token outcome.
func Unauthorized() Outcome { return Outcome{Kind: OutcomeUnauthorized} }

// AuthRefreshFailed returns the outcome for a failed token acquisition.
func AuthRefreshFailed() Outcome { return Outcome{Kind: OutcomeAuthRefreshFailed} }

// ServerError returns the outcome for an unexpected HTTP status code.
func ServerError(code int) Outcome {
	return Outcome{Kind: OutcomeServerError, StatusCode: code}
}

// TransportError returns the outcome for a request that never got a response.
func TransportError(detail string) Outcome {
	return Outcome{Kind: OutcomeTransportError, Detail: detail}
}

// IsSuccess reports whether the scan was accepted.
func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// IsError reports whether the outcome should be reported as an error.
// Success and Cooldown are expected results.
func (o Outcome) IsError() bool {
	return o.Kind != OutcomeSuccess && o.Kind != OutcomeCooldown
}

// Color returns the indicator color used to display the outcome.
func (o Outcome) Color() Color {
	switch o.Kind {
	case OutcomeSuccess:
		return ColorGreen
	case OutcomeCooldown:
		return ColorYellow
	default:
		return ColorRed
	}
}

// String returns a human readable description of the outcome.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeServerError:
		return fmt.Sprintf("%s (HTTP %d)", o.Kind, o.StatusCode)
	case OutcomeTransportError:
		return fmt.Sprintf("%s (%s)", o.Kind, o.Detail)
	case "":
		return "unknown"
	default:
		return string(o.Kind)
	}
}
