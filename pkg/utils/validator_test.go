package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"asha@example.com", true},
		{"a.b+tag@sub.example.co", true},
		{"", false},
		{"no-at-sign", false},
		{"missing@tld", false},
		{"spaces in@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Pune Plant", SanitizeString("Pune\x00 Plant\x1f"))
	assert.Equal(t, "clean", SanitizeString("clean"))
	assert.Equal(t, "", SanitizeString("\x00\x01\x7f"))
}
