package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFixedDiscount_Success(t *testing.T) {
	d, err := NewFixedDiscount("SAVE50", decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, "SAVE50", d.Name())
	assert.Equal(t, DiscountFixed, d.Kind())
	assert.True(t, d.Amount().Equal(decimal.NewFromInt(50)))
	_, hasCap := d.Cap()
	assert.False(t, hasCap)
}

func TestNewFixedDiscount_NonPositiveAmount(t *testing.T) {
	_, err := NewFixedDiscount("SAVE0", decimal.Zero)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewFixedDiscount("SAVENEG", decimal.NewFromInt(-5))
	require.ErrorIs(t, err, ErrValidation)
}

func TestNewDiscount_NameRules(t *testing.T) {
	_, err := NewFixedDiscount("", decimal.NewFromInt(10))
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewFixedDiscount(strings.Repeat("x", maxDiscountNameLength+1), decimal.NewFromInt(10))
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewFixedDiscount(strings.Repeat("x", maxDiscountNameLength), decimal.NewFromInt(10))
	require.NoError(t, err)
}

func TestNewPercentageDiscount_Success(t *testing.T) {
	d, err := NewPercentageDiscount("10PERCENT", decimal.NewFromInt(10), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, DiscountPercentage, d.Kind())
	capAmount, hasCap := d.Cap()
	assert.True(t, hasCap)
	assert.True(t, capAmount.Equal(decimal.NewFromInt(100)))
}

func TestNewPercentageDiscount_NoCap(t *testing.T) {
	d, err := NewPercentageDiscount("HALF", decimal.NewFromInt(50), decimal.Zero)
	require.NoError(t, err)
	_, hasCap := d.Cap()
	assert.False(t, hasCap)
}

func TestNewPercentageDiscount_OutOfRange(t *testing.T) {
	_, err := NewPercentageDiscount("ZERO", decimal.Zero, decimal.Zero)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewPercentageDiscount("OVER", decimal.NewFromInt(101), decimal.Zero)
	require.ErrorIs(t, err, ErrValidation)

	// exactly 100 is allowed
	_, err = NewPercentageDiscount("ALL", decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)
}

func TestNewPercentageDiscount_NegativeCap(t *testing.T) {
	_, err := NewPercentageDiscount("BADCAP", decimal.NewFromInt(10), decimal.NewFromInt(-1))
	require.ErrorIs(t, err, ErrValidation)
}
