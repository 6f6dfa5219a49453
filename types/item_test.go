package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeUnitPrice(t *testing.T) {
	unit := ComputeUnitPrice(decimal.NewFromInt(100), 5)
	assert.True(t, unit.Equal(decimal.NewFromInt(20)), "unit = %s", unit)

	unit = ComputeUnitPrice(decimal.NewFromInt(100), 0)
	assert.True(t, unit.IsZero())

	unit = ComputeUnitPrice(decimal.NewFromInt(100), -3)
	assert.True(t, unit.IsZero())

	// Rounded to cents.
	unit = ComputeUnitPrice(decimal.NewFromInt(100), 3)
	assert.True(t, unit.Equal(decimal.RequireFromString("33.33")), "unit = %s", unit)
}

func TestValidReason(t *testing.T) {
	for _, reason := range []string{ReasonPurchase, ReasonConsume, ReasonGift, ReasonDamage, ReasonAdjust} {
		assert.True(t, ValidReason(reason), reason)
	}
	assert.False(t, ValidReason(ReasonInitial))
	assert.False(t, ValidReason("RESTOCK"))
}
