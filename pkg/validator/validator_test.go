package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentInput struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
	Method string          `json:"method" validate:"required,oneof=Cash G-Pay Card Other"`
	Notes  string          `json:"notes" validate:"omitempty,max=10"`
}

func TestValidate_DecimalGreaterThanZero(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&paymentInput{Amount: decimal.Zero, Method: "Cash"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "amount must be greater than 0", fields["amount"])

	assert.NoError(t, v.Validate(&paymentInput{Amount: decimal.RequireFromString("0.01"), Method: "Cash"}))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&paymentInput{Amount: decimal.NewFromInt(5), Method: "Bitcoin", Notes: "far too long for this"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "method must be one of: Cash, G-Pay, Card, Other", fields["method"])
	assert.Equal(t, "notes must be at most 10 characters", fields["notes"])
}

func TestFormatValidationErrors_NonValidationError(t *testing.T) {
	v := NewValidator()
	assert.Empty(t, v.FormatValidationErrors(assert.AnError))
}
