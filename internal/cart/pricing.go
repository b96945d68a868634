package cart

import (
	"regexp"
	"strings"

	"campuseats/internal/models"
)

// PriceTiers are the vendor-offered prices a variable-price item may be
// sold at. The caller must resolve one before such an item can be added.
var PriceTiers = []float64{30, 40, 50}

// ValidTier reports whether price is one of the allowed tiers.
func ValidTier(price float64) bool {
	for _, tier := range PriceTiers {
		if price == tier {
			return true
		}
	}
	return false
}

var nameSeparators = regexp.MustCompile(`[_\s-]+`)

// Known category-name spellings that imply variable pricing, for
// categories created before the explicit flag existed.
var variablePriceNames = map[string]bool{
	"indian juice & shakes": true,
	"juices":                true,
	"juice shakes":          true,
}

// VariablePriceCategoryName matches a category name against the known
// variable-price spellings, insensitive to case, whitespace, and
// separator punctuation. Names outside the set fall back to fixed
// pricing, so the explicit Category flag is preferred.
func VariablePriceCategoryName(name string) bool {
	n := nameSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), " ")
	return strings.Contains(n, "juice") || strings.Contains(n, "shake") || variablePriceNames[n]
}

// VariablePricing reports whether items of the category are priced at
// add-to-cart time. The explicit flag wins; the name predicate covers
// legacy rows.
func VariablePricing(category *models.Category) bool {
	if category == nil {
		return false
	}
	if category.VariablePricing {
		return true
	}
	return VariablePriceCategoryName(category.Name)
}
