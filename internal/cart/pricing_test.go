package cart

import (
	"testing"

	"campuseats/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidTier(t *testing.T) {
	assert.True(t, ValidTier(30))
	assert.True(t, ValidTier(40))
	assert.True(t, ValidTier(50))

	assert.False(t, ValidTier(0))
	assert.False(t, ValidTier(35))
	assert.False(t, ValidTier(45.5))
	assert.False(t, ValidTier(-30))
}

func TestVariablePriceCategoryName(t *testing.T) {
	matching := []string{
		"Indian Juice & Shakes",
		"indian_juice_&_shakes",
		"JUICES",
		"juice-shakes",
		"Fresh Juice Corner",
		"Milk  Shakes",
	}
	for _, name := range matching {
		assert.True(t, VariablePriceCategoryName(name), "expected %q to imply variable pricing", name)
	}

	fixed := []string{
		"Snacks",
		"South Indian",
		"Beverages",
		"",
	}
	for _, name := range fixed {
		assert.False(t, VariablePriceCategoryName(name), "expected %q to stay fixed price", name)
	}
}

func TestVariablePricing_FlagWinsOverName(t *testing.T) {
	flagged := &models.Category{Name: "Specials", VariablePricing: true}
	assert.True(t, VariablePricing(flagged))

	legacy := &models.Category{Name: "Juices"}
	assert.True(t, VariablePricing(legacy))

	plain := &models.Category{Name: "Snacks"}
	assert.False(t, VariablePricing(plain))

	assert.False(t, VariablePricing(nil))
}
