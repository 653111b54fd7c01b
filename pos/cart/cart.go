// Package cart holds the in-memory lines a POS operator intends to sell.
//
// A Cart is never persisted. Quantities are validated against the stock the
// caller observed when the mutation was requested.
package cart

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arraiapos/pos/models"
)

var (
	ErrOutOfStock        = errors.New("product out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInactive          = errors.New("product is not active")
	ErrLineNotFound      = errors.New("product not in cart")
)

// Line is one product in the cart. Name and UnitPrice are copied when the
// product is first added, so later catalog edits do not change an open cart.
type Line struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Total returns UnitPrice * Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered collection of lines, unique by product.
// It is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of product in the cart.
func (c *Cart) Add(product models.Product) error {
	if !product.Active {
		return ErrInactive
	}
	if product.Stock <= 0 {
		return ErrOutOfStock
	}

	if i := c.indexOf(product.ID); i >= 0 {
		if c.lines[i].Quantity+1 > product.Stock {
			return ErrInsufficientStock
		}
		c.lines[i].Quantity++
		return nil
	}

	c.lines = append(c.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
	})
	return nil
}

// UpdateQuantity changes a line by delta. Increments are checked against
// stock. Decrements stop at 1, except a delta of exactly -Quantity, which
// removes the line.
func (c *Cart) UpdateQuantity(productID uuid.UUID, delta, stock int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}

	current := c.lines[i].Quantity
	switch {
	case delta > 0:
		if current+delta > stock {
			return ErrInsufficientStock
		}
		c.lines[i].Quantity = current + delta
	case delta < 0:
		next := current + delta
		if next == 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return nil
		}
		if next < 1 {
			next = 1
		}
		c.lines[i].Quantity = next
	}
	return nil
}

// Remove drops the line for productID.
func (c *Cart) Remove(productID uuid.UUID) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	return c.UpdateQuantity(productID, -c.lines[i].Quantity, 0)
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Total is the sum of every line total; zero for an empty cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Quantity(productID uuid.UUID) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
