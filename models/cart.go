package models

import "errors"

// ErrInvalidQuantity is returned when a cart line would end up with a
// quantity below one.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartLine is a single scanned product in the session cart.
type CartLine struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Barcode   string  `json:"barcode"`
}

// Cart is the session-scoped list of lines awaiting checkout. It lives in
// the cashier's session, never in the database, and is owned by exactly one
// session at a time. An emptied cart stays present as a zero-line cart.
type Cart struct {
	Lines []CartLine `json:"items"`
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{Lines: []CartLine{}}
}

// Upsert adds a product to the cart. A product already present gets its
// quantity bumped by one instead of a duplicate line.
func (c *Cart) Upsert(product Product, barcode string) CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == product.ID {
			c.Lines[i].Quantity++
			return c.Lines[i]
		}
	}
	line := CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
		Barcode:   barcode,
	}
	c.Lines = append(c.Lines, line)
	return line
}

// UpdateQuantity replaces the quantity of the line at index. Quantities
// below one are rejected and the cart is left untouched.
func (c *Cart) UpdateQuantity(index, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if index < 0 || index >= len(c.Lines) {
		return ErrInvalidQuantity
	}
	c.Lines[index].Quantity = quantity
	return nil
}

// Remove drops the line at index and re-indexes the remainder. An
// out-of-range index is a no-op.
func (c *Cart) Remove(index int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
}

// Clear empties the cart in place.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// Total sums unit price times quantity over all lines. Computed on demand,
// never cached: the lines are the single source of truth until checkout
// freezes the amount onto the order.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// Count returns the number of distinct lines.
func (c *Cart) Count() int {
	return len(c.Lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
