package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/badgereader/internal/errors"
)

func TestUpperHex(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "digits only", value: "0987654321", shouldErr: false},
		{name: "uppercase hex", value: "04A1B2C3", shouldErr: false},
		{name: "lowercase hex", value: "04a1b2c3", shouldErr: true},
		{name: "with separators", value: "04:A1:B2", shouldErr: true},
		{name: "non hex letter", value: "04G1", shouldErr: true},
		{name: "empty string is left to Required", value: "", shouldErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, UpperHex)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "uppercase hexadecimal")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPURL(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "http url", value: "http://10.0.0.5/api/scan", shouldErr: false},
		{name: "https url with port", value: "https://attendance.local:8443/api/token", shouldErr: false},
		{name: "missing scheme", value: "10.0.0.5/api/scan", shouldErr: true},
		{name: "unsupported scheme", value: "ftp://10.0.0.5/scan", shouldErr: true},
		{name: "missing host", value: "http:///api/scan", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, HTTPURL)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("reader", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, validation.Validate("reader", NoWhitespace))
	assert.Error(t, validation.Validate(" reader ", NoWhitespace))
}

func TestWrapValidationError(t *testing.T) {
	t.Run("wraps as invalid input", func(t *testing.T) {
		err := WrapValidationError(errors.New("tag_id: must not be blank"))
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "tag_id: must not be blank")
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})
}
