// Package service provides the authentication building blocks of the scan
// pipeline: the token store, the credential exchange, and credential resolution.
package service

import (
	"context"
	"time"

	scanDomain "github.com/allisson/badgereader/internal/scan/domain"
)

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

// TokenAcquirer performs the credential exchange against the authentication
// endpoint and populates the token store.
type TokenAcquirer interface {
	// Refresh always re-authenticates, even when the stored token is still valid.
	// On success the new token is stored and returned. On failure the store is
	// cleared and the returned error wraps scanDomain.ErrAuthFailed.
	Refresh(ctx context.Context) (scanDomain.Token, error)
}

// CredentialService resolves the password used in the credential exchange.
type CredentialService interface {
	// ResolvePassword returns the plain password, decrypting the ciphertext with
	// the KMS key when no plain password is configured.
	ResolvePassword(ctx context.Context, plain, ciphertext, keyURI string) (string, error)

	// EncryptPassword encrypts a password with the KMS key and returns a base64
	// ciphertext suitable for API_PASSWORD_CIPHERTEXT.
	EncryptPassword(ctx context.Context, password, keyURI string) (string, error)
}
