package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedRequest struct {
	Name  string  `validate:"required,max=10"`
	Email *string `validate:"omitempty,email"`
	Kind  string  `validate:"required,oneof=natural juridical"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct passes", func(t *testing.T) {
		err := ValidateStruct(validatedRequest{Name: "Ana", Kind: "natural"})
		assert.NoError(t, err)
	})

	t.Run("violations come back with per-field messages", func(t *testing.T) {
		email := "not-an-email"
		err := ValidateStruct(validatedRequest{Email: &email, Kind: "corporate"})

		require.Error(t, err)
		require.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields["Name"], "required")
		assert.Contains(t, fields["Email"], "valid email")
		assert.Contains(t, fields["Kind"], "one of")
	})

	t.Run("plain errors are not validation errors", func(t *testing.T) {
		assert.False(t, IsValidationError(errors.New("boom")))
		assert.Nil(t, GetValidationFields(errors.New("boom")))
	})
}
