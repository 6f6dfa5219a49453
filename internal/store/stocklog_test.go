package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/teacellar/apiserver/types"
)

func TestApplyAdjustmentUsesStoredUnitPrice(t *testing.T) {
	item := types.Item{
		Quantity:  5,
		Price:     decimal.NewFromInt(100),
		UnitPrice: decimal.NewFromInt(20),
	}

	newQuantity, newPrice, newUnitPrice := applyAdjustment(item, -2)
	assert.Equal(t, 3, newQuantity)
	assert.True(t, newPrice.Equal(decimal.NewFromInt(60)), "price = %s", newPrice)
	assert.True(t, newUnitPrice.Equal(decimal.NewFromInt(20)))
}

func TestApplyAdjustmentDerivesUnitPriceFromTotals(t *testing.T) {
	// Stored unit price of zero falls back to price/quantity.
	item := types.Item{
		Quantity: 4,
		Price:    decimal.NewFromInt(100),
	}

	newQuantity, newPrice, newUnitPrice := applyAdjustment(item, 2)
	assert.Equal(t, 6, newQuantity)
	assert.True(t, newUnitPrice.Equal(decimal.NewFromInt(25)))
	assert.True(t, newPrice.Equal(decimal.NewFromInt(150)))
}

func TestApplyAdjustmentZeroQuantityZeroPrice(t *testing.T) {
	item := types.Item{}

	newQuantity, newPrice, newUnitPrice := applyAdjustment(item, 3)
	assert.Equal(t, 3, newQuantity)
	assert.True(t, newPrice.IsZero())
	assert.True(t, newUnitPrice.IsZero())
}

func TestApplyAdjustmentAllowsNegativeBalance(t *testing.T) {
	// A correction may pass through zero or be recorded after the fact;
	// the engine does not clamp.
	item := types.Item{
		Quantity:  1,
		Price:     decimal.NewFromInt(10),
		UnitPrice: decimal.NewFromInt(10),
	}

	newQuantity, newPrice, _ := applyAdjustment(item, -3)
	assert.Equal(t, -2, newQuantity)
	assert.True(t, newPrice.Equal(decimal.NewFromInt(-20)))
}

func TestApplyAdjustmentRunningBalanceDerivation(t *testing.T) {
	item := types.Item{Quantity: 0, Price: decimal.Zero, UnitPrice: decimal.Zero}

	deltas := []int{5, -2, -3, 4}
	balance := 0
	for _, delta := range deltas {
		newQuantity, newPrice, newUnitPrice := applyAdjustment(item, delta)
		balance += delta
		assert.Equal(t, balance, newQuantity)
		item.Quantity = newQuantity
		item.Price = newPrice
		item.UnitPrice = newUnitPrice
	}
	assert.Equal(t, 4, item.Quantity)
}
