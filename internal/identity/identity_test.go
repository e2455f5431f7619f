package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces stripped",
			input:    "98733 12399",
			expected: "9873312399",
		},
		{
			name:     "formatting characters stripped",
			input:    "+91 (98733) 12-399",
			expected: "919873312399",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "no digits at all",
			input:    "call me maybe",
			expected: "",
		},
		{
			name:     "already canonical",
			input:    "9873312399",
			expected: "9873312399",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"98733 12399", "+1 555-0100", "", "abc", "  (0) 12 "}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize should be idempotent for %q", in)
	}
}

func TestNormalize_CountryCodeNotFlattened(t *testing.T) {
	// Country-code digits are part of the key: these are distinct identities.
	assert.NotEqual(t, Normalize("+1 9873312399"), Normalize("9873312399"))
}

func TestIsPlausible(t *testing.T) {
	assert.True(t, IsPlausible("987331"))
	assert.True(t, IsPlausible("98-73-31"))
	assert.False(t, IsPlausible("98733"))
	assert.False(t, IsPlausible(""))
	assert.False(t, IsPlausible("hello"))
}
