package cart

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/eyira/storefront/pkg/errors"
)

// StorageKey is the browser-local key the storefront persists the cart under.
const StorageKey = "eyira_cart"

// LineItem is one product+size entry in a cart. Price is fixed once the item is added.
type LineItem struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Size     string          `json:"size"`
	Quantity int64           `json:"quantity" validate:"min=1"`
	Image    string          `json:"image"`
}

// Total is Price x Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(li.Quantity))
}

// Cart is an ordered list of line items with unique ids.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{}
}

// FromItems builds a cart from an inbound payload. Entries sharing an id are
// merged (quantities summed, first price kept).
func FromItems(items []LineItem) (*Cart, error) {
	c := New()
	for i, item := range items {
		if err := validateItem(item); err != nil {
			return nil, err.WithDetails(map[string]any{"index": i})
		}
		if idx := c.indexOf(item.ID); idx >= 0 {
			c.items[idx].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
	return c, nil
}

func validateItem(item LineItem) *pkgerrors.Error {
	if strings.TrimSpace(item.ID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if item.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
	}
	if !item.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "item price must be positive")
	}
	return nil
}

// Add puts one unit of item in the cart. Re-adding an existing id bumps its
// quantity and leaves the stored price untouched.
func (c *Cart) Add(item LineItem) {
	if idx := c.indexOf(item.ID); idx >= 0 {
		c.items[idx].Quantity++
		return
	}
	item.Quantity = 1
	c.items = append(c.items, item)
}

func (c *Cart) Remove(id string) {
	if idx := c.indexOf(id); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}
}

// UpdateQuantity applies delta to the item's quantity, removing the item when
// the result would be zero or less.
func (c *Cart) UpdateQuantity(id string, delta int64) {
	idx := c.indexOf(id)
	if idx < 0 {
		return
	}
	next := c.items[idx].Quantity + delta
	if next <= 0 {
		c.Remove(id)
		return
	}
	c.items[idx].Quantity = next
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items returns a copy of the cart contents in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Subtotal is the sum of every line total.
func (c *Cart) Subtotal() decimal.Decimal {
	return Subtotal(c.items)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int64 {
	var n int64
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Subtotal sums price x quantity over items.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return total
}

// Encode serializes the cart the way it is persisted client-side.
func (c *Cart) Encode() ([]byte, error) {
	return json.Marshal(c.Items())
}

// Decode restores a persisted cart. Empty input yields an empty cart.
func Decode(raw []byte) (*Cart, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return New(), nil
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return FromItems(items)
}
