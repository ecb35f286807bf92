package cart

import (
	"github.com/shopspring/decimal"

	"comanda/internal/domain"
)

// Cart holds the in-progress selection of one shopper session. It is owned by
// a single session and is never mutated concurrently; the Store guards access
// to the session map, not to individual carts.
type Cart struct {
	lines []domain.OrderItem
}

func New() *Cart {
	return &Cart{}
}

// Add increments the quantity of an existing line or appends a new one at
// quantity 1. Lines are keyed by title; two entries with the same title are
// always merged.
func (c *Cart) Add(title string, unitPrice decimal.Decimal) {
	for i := range c.lines {
		if c.lines[i].Title == title {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, domain.OrderItem{
		Title:     title,
		UnitPrice: unitPrice,
		Quantity:  1,
	})
}

// Remove decrements the quantity of the line with the given title, deleting
// the line when the last unit is removed. Unknown titles are a no-op.
func (c *Cart) Remove(title string) {
	for i := range c.lines {
		if c.lines[i].Title != title {
			continue
		}
		if c.lines[i].Quantity > 1 {
			c.lines[i].Quantity--
			return
		}
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Units returns the total unit count across all lines.
func (c *Cart) Units() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// Subtotal is the sum of unitPrice x quantity over all lines, rounded half-up
// to 2 decimal places.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2)
}

// Items returns a snapshot copy of the current lines. Mutating the cart after
// the call does not affect the returned slice.
func (c *Cart) Items() []domain.OrderItem {
	items := make([]domain.OrderItem, len(c.lines))
	copy(items, c.lines)
	return items
}
