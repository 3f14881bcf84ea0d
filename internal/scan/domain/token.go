package domain

import "time"

// Token is a bearer token together with the instant the client stops trusting it.
// An empty Value always means the token is expired.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// IsUsable reports whether the token has a value and now is before ExpiresAt.
func (t Token) IsUsable(now time.Time) bool {
	return t.Value != "" && now.Before(t.ExpiresAt)
}

// IsZero reports whether the token is the empty, expired token.
func (t Token) IsZero() bool {
	return t.Value == "" && t.ExpiresAt.IsZero()
}
