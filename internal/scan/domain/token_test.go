package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToken_IsUsable(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		token    Token
		expected bool
	}{
		{
			name:     "FutureExpiration_Usable",
			token:    Token{Value: "abc", ExpiresAt: now.Add(time.Minute)},
			expected: true,
		},
		{
			name:     "PastExpiration_NotUsable",
			token:    Token{Value: "abc", ExpiresAt: now.Add(-time.Minute)},
			expected: false,
		},
		{
			name:     "ExpiresNow_NotUsable",
			token:    Token{Value: "abc", ExpiresAt: now},
			expected: false,
		},
		{
			name:     "EmptyValue_NotUsable",
			token:    Token{Value: "", ExpiresAt: now.Add(time.Hour)},
			expected: false,
		},
		{
			name:     "ZeroToken_NotUsable",
			token:    Token{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.token.IsUsable(now))
		})
	}
}

func TestToken_IsZero(t *testing.T) {
	assert.True(t, Token{}.IsZero())
	assert.False(t, Token{Value: "abc"}.IsZero())
}
