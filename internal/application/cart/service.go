package cart

import (
	domain "github.com/delus-studio/storefront/internal/domain/cart"
)

type Line struct {
	domain.Entry
	Subtotal float64 `json:"subtotal"`
}

type View struct {
	Items []Line  `json:"items"`
	Total float64 `json:"total"`
}

// Remove drops productID from c; missing ids are ignored.
func Remove(c *domain.Cart, productID int64) {
	if c == nil {
		return
	}
	c.Remove(productID)
}

// ViewOf renders the cart snapshot with line subtotals and the grand total.
func ViewOf(c *domain.Cart) View {
	v := View{Items: []Line{}}
	if c == nil {
		return v
	}
	for _, e := range c.Entries {
		v.Items = append(v.Items, Line{Entry: e, Subtotal: e.Subtotal()})
	}
	v.Total = c.Total()
	return v
}
