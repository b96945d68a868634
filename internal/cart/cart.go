// Package cart holds a student's per-canteen cart: the line operations,
// the variable-price gate, and the persisted store. Carts for different
// canteens never share state.
package cart

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPriceTierRequired = errors.New("price tier must be selected for this item")
	ErrInvalidPriceTier  = errors.New("price is not an offered tier")
	ErrItemUnavailable   = errors.New("menu item is not available")
	ErrEmptyCart         = errors.New("cart is empty")
)

// Line is one cart entry: a snapshot of the catalog item plus the chosen
// quantity. Lines are keyed by (menu item id, price) so two price tiers
// of the same item coexist.
type Line struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
}

type Cart struct {
	Lines []Line `json:"lines"`
}

// Add merges line into the cart: an existing line with the same item id
// and price has its quantity incremented, otherwise the line is appended.
func (c *Cart) Add(line Line) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == line.MenuItemID && c.Lines[i].Price == line.Price {
			c.Lines[i].Quantity += line.Quantity
			return
		}
	}
	c.Lines = append(c.Lines, line)
}

// Remove decrements the matching line's quantity, dropping the line when
// it reaches zero. Removing an absent line is a no-op.
func (c *Cart) Remove(menuItemID uuid.UUID, price float64) {
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == menuItemID && c.Lines[i].Price == price {
			c.Lines[i].Quantity--
			if c.Lines[i].Quantity <= 0 {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			}
			return
		}
	}
}

// ClearLine drops the matching line regardless of quantity.
func (c *Cart) ClearLine(menuItemID uuid.UUID, price float64) {
	for i := range c.Lines {
		if c.Lines[i].MenuItemID == menuItemID && c.Lines[i].Price == price {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Total is the sum of price times quantity over all lines. Zero for an
// empty cart.
func (c *Cart) Total() float64 {
	total := 0.0
	for _, line := range c.Lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// Count is the sum of quantities, used for badge display.
func (c *Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}
