package domain

import (
	"github.com/allisson/badgereader/internal/errors"
)

// Scan pipeline errors.
var (
	// ErrAuthFailed indicates the credential exchange was rejected, unreachable, or
	// returned a body without a usable access token.
	ErrAuthFailed = errors.Wrap(errors.ErrUnauthorized, "credential exchange failed")

	// ErrInvalidTagID indicates a card read could not be canonicalized into a tag identifier.
	ErrInvalidTagID = errors.Wrap(errors.ErrInvalidInput, "invalid tag identifier")

	// ErrNotConnected indicates the network link is down.
	ErrNotConnected = errors.Wrap(errors.ErrUnavailable, "network not connected")

	// ErrReaderUnavailable indicates the card reader peripheral could not be polled.
	ErrReaderUnavailable = errors.Wrap(errors.ErrUnavailable, "card reader unavailable")
)
