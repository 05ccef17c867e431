package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_Answers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trip details", "from: Delhi to: Tokyo budget: 100000 INR", "from: Delhi to: Tokyo budget: 100000 INR"},
		{"multi-line feedback", "fewer museums\n\tmore food", "fewer museums\n\tmore food"},
		{"coloured budget", "budget: \x1b[31m100000 INR\x1b[0m", "budget: 100000 INR"},
		{"cursor movement", "approve\x1b[2K\x1b[1A", "approve"},
		{"window title", "\x1b]0;pwned\x07refine relaxed pace", "refine relaxed pace"},
		{"null and bell", "quit\x00\x07", "quit"},
		{"non-ascii", "to: Zürich style: Café hopping ₹", "to: Zürich style: Café hopping ₹"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeInput_SizeLimit(t *testing.T) {
	feedback := "reject " + strings.Repeat("too many museums ", 300)
	require.Greater(t, len(feedback), DefaultMaxInputSize)

	_, err := SanitizeInput(feedback)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	_, err = SanitizeInput(feedback[:DefaultMaxInputSize])
	assert.NoError(t, err)
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "16")

	_, err := SanitizeInput("refine relaxed pace please")
	assert.ErrorIs(t, err, ErrInputTooLarge)

	got, err := SanitizeInput("approve")
	require.NoError(t, err)
	assert.Equal(t, "approve", got)
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := SanitizeInput("to: T\xbd\xb2kyo")
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
