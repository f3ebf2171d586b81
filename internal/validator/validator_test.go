package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMoney(t *testing.T) {
	for _, s := range []string{"0.01", "12", "12.5", "12.50", "12.500", "99999999.99"} {
		assert.True(t, IsMoney(s), s)
	}
	for _, s := range []string{"0", "-1", "12.345", "100000000", "abc", ""} {
		assert.False(t, IsMoney(s), s)
	}
}

type sample struct {
	Title  string           `validate:"required,notblank"`
	Date   string           `validate:"required,isodate"`
	Amount decimal.Decimal  `validate:"required,money"`
	Patch  *decimal.Decimal `validate:"omitempty,money"`
}

func tags(err error) []string {
	var out []string
	for _, e := range err.(validator.ValidationErrors) {
		out = append(out, e.Field()+":"+e.Tag())
	}
	return out
}

func TestStructValidation(t *testing.T) {
	ok := sample{Title: "lunch", Date: "2024-01-31", Amount: decimal.RequireFromString("9.99")}
	require.NoError(t, Validate.Struct(ok))

	bad := decimal.RequireFromString("-3")
	err := Validate.Struct(sample{Title: "   ", Date: "31/01/2024", Amount: decimal.Zero, Patch: &bad})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"Title:notblank", "Date:isodate", "Amount:money", "Patch:money"}, tags(err))
}
