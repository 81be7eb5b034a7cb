package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CartType selects which list an add-to-cart call targets
type CartType int

// Cart types understood by the shop
const (
	ShoppingCart CartType = 1
	Wishlist     CartType = 2
)

// Domain errors
var (
	ErrInvalidCartType = errors.New("cart type must be 1 (shopping cart) or 2 (wishlist)")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// ParseCartType validates a numeric cart type
func ParseCartType(v int) (CartType, error) {
	switch CartType(v) {
	case ShoppingCart, Wishlist:
		return CartType(v), nil
	default:
		return 0, fmt.Errorf("%w: got %d", ErrInvalidCartType, v)
	}
}

// String returns the page name of the list
func (t CartType) String() string {
	if t == Wishlist {
		return "wishlist"
	}
	return "cart"
}

// CartLine is one row of a shopping cart or wishlist page
type CartLine struct {
	ItemID     int
	ProductID  int
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	Subtotal   decimal.Decimal
	Attributes []string
}

// Cart is the content of a shopping cart or wishlist page
type Cart struct {
	Lines []CartLine
	Total decimal.Decimal
	// ShareURL is the public link of a wishlist, empty for carts
	ShareURL string
}

// Count returns the number of items, counting quantities
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Names returns product names in page order
func (c Cart) Names() []string {
	names := make([]string, 0, len(c.Lines))
	for _, l := range c.Lines {
		names = append(names, l.Name)
	}
	return names
}

// ItemIDs returns the identifiers used by the remove checkboxes
func (c Cart) ItemIDs() []int {
	ids := make([]int, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ItemID)
	}
	return ids
}

// SumOfLines adds up line subtotals
func (c Cart) SumOfLines() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum
}

// HasAttribute reports whether any line carries an attribute containing text
func (c Cart) HasAttribute(text string) bool {
	for _, l := range c.Lines {
		for _, a := range l.Attributes {
			if strings.Contains(a, text) {
				return true
			}
		}
	}
	return false
}

// FormatPrice renders an amount the way the shop does
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}
