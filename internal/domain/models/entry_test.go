package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShift(t *testing.T) {
	for _, valid := range []string{"morning", "evening"} {
		shift, err := ParseShift(valid)
		require.NoError(t, err)
		assert.Equal(t, Shift(valid), shift)
	}

	for _, invalid := range []string{"", "noon", "Morning", "MORNING"} {
		_, err := ParseShift(invalid)
		assert.ErrorIs(t, err, ErrInvalidInput, "shift %q should be rejected", invalid)
	}
}

func TestMilkEntryPatchEmpty(t *testing.T) {
	assert.True(t, MilkEntryPatch{}.Empty())

	quantity := 10.0
	assert.False(t, MilkEntryPatch{Quantity: &quantity}.Empty())
}

func TestInvalidFieldError(t *testing.T) {
	err := InvalidFieldError("quantity", "must not be negative")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "quantity")
}
