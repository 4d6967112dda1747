package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestItemHasDiscount(t *testing.T) {
	item := Item{Price: 10.0}
	assert.False(t, item.HasDiscount())
	assert.Equal(t, 0, item.DiscountPercentage())

	item.OriginalPrice = floatPtr(10.0)
	assert.False(t, item.HasDiscount(), "equal prices are not a discount")
	assert.Equal(t, 0, item.DiscountPercentage())

	item.OriginalPrice = floatPtr(8.0)
	assert.False(t, item.HasDiscount(), "original below current is not a discount")

	item.OriginalPrice = floatPtr(12.5)
	assert.True(t, item.HasDiscount())
	assert.Equal(t, 20, item.DiscountPercentage())
}

func TestItemDiscountPercentageRounds(t *testing.T) {
	item := Item{Price: 6.66, OriginalPrice: floatPtr(9.99)}
	assert.True(t, item.HasDiscount())
	// (9.99 - 6.66) / 9.99 * 100 = 33.33... -> 33
	assert.Equal(t, 33, item.DiscountPercentage())
}
