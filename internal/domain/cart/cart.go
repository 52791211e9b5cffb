package cart

import (
	"errors"
	"fmt"

	"github.com/delus-studio/storefront/internal/domain/catalog"
)

var (
	ErrInvalidQuantity   = errors.New("cart: quantity must be at least one")
	ErrInsufficientStock = errors.New("cart: insufficient stock")
)

// InsufficientStockError reports how many more units could still be added.
type InsufficientStockError struct {
	ProductID int64
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("cart: insufficient stock for product %d: only %d more available", e.ProductID, e.Remaining)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Entry is a product snapshot taken when it was added to the cart.
type Entry struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Quantity  int     `json:"quantity"`
}

func (e Entry) Subtotal() float64 { return e.Price * float64(e.Quantity) }

// Cart keeps entries in the order products were first added.
type Cart struct {
	Entries []Entry `json:"entries"`
}

func New(entries ...Entry) *Cart {
	return &Cart{Entries: entries}
}

// Quantity returns the quantity already in the cart for productID.
func (c *Cart) Quantity(productID int64) int {
	for _, e := range c.Entries {
		if e.ProductID == productID {
			return e.Quantity
		}
	}
	return 0
}

// Add re-validates against the product's current stock before mutating.
// On failure the cart is left untouched.
func (c *Cart) Add(p *catalog.Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	current := c.Quantity(p.ID)
	if current+quantity > p.Stock {
		return &InsufficientStockError{ProductID: p.ID, Remaining: max(p.Stock-current, 0)}
	}

	for i := range c.Entries {
		if c.Entries[i].ProductID == p.ID {
			c.Entries[i].Quantity += quantity
			c.Entries[i].Name = p.Name
			c.Entries[i].Price = p.Price
			c.Entries[i].ImageURL = p.ImageURL
			return nil
		}
	}
	c.Entries = append(c.Entries, Entry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  quantity,
	})
	return nil
}

// Remove drops the entry for productID; an absent id is a no-op.
func (c *Cart) Remove(productID int64) {
	kept := c.Entries[:0]
	for _, e := range c.Entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	c.Entries = kept
}

func (c *Cart) Clear() { c.Entries = nil }

func (c *Cart) Len() int { return len(c.Entries) }

func (c *Cart) IsEmpty() bool { return len(c.Entries) == 0 }

func (c *Cart) Total() float64 {
	var total float64
	for _, e := range c.Entries {
		total += e.Subtotal()
	}
	return total
}
