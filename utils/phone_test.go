package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already canonical", "+584121234567", "+584121234567"},
		{"international with spaces and dashes", "+58 412-123-4567", "+584121234567"},
		{"double zero international prefix", "00584121234567", "+584121234567"},
		{"bare national number uses the default region", "04121234567", "+584121234567"},
		{"national number with separators", "0412-123.45.67", "+584121234567"},
		{"international US number", "+1 650 253 0000", "+16502530000"},
		{"argentine mobile without a country code", "91112345678", "+5491112345678"},
		{"long german number without a country code", "301234567890", "+49301234567890"},
		{"surrounding whitespace is ignored", "  +584121234567  ", "+584121234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePhone(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizePhone_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"not a number", "call me maybe"},
		{"far too short", "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePhone(tt.input)
			assert.Error(t, err)
		})
	}
}
