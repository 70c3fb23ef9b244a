// Package cart accumulates a customer's selected services before checkout.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Item is the service snapshot taken when a line is first added.
type Item struct {
	ServiceID string          `json:"serviceId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

type Line struct {
	Item
	Quantity int `json:"quantity"`
}

// Subtotal is the captured price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order, one line per service id.
// A Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add appends a line for a new service or increments an existing one.
// The price of an existing line is never refreshed.
func (c *Cart) Add(it Item) {
	if i := c.index(it.ServiceID); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{Item: it, Quantity: 1})
}

// Decrement lowers the quantity by one, removing the line at one.
// It reports whether a line existed.
func (c *Cart) Decrement(serviceID string) bool {
	i := c.index(serviceID)
	if i < 0 {
		return false
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return true
	}
	c.removeAt(i)
	return true
}

// Remove drops the line regardless of quantity.
func (c *Cart) Remove(serviceID string) bool {
	i := c.index(serviceID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Items returns a copy of the lines in display order.
func (c *Cart) Items() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// UnmarshalJSON rebuilds a cart, merging duplicate ids and dropping non-positive quantities.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	c.lines = nil
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if i := c.index(l.ServiceID); i >= 0 {
			c.lines[i].Quantity += l.Quantity
			continue
		}
		c.lines = append(c.lines, l)
	}
	return nil
}

func (c *Cart) index(serviceID string) int {
	for i := range c.lines {
		if c.lines[i].ServiceID == serviceID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
