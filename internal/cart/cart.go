package cart

import (
	"sort"

	"github.com/kslmndz/bakery_shop/internal/models"
)

// Line is a product snapshot plus the quantity the customer wants.
// The snapshot is taken at add time; Reclamp refreshes it.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity uint           `json:"quantity"`
}

// Cart maps product id to line. It is a plain value object: every
// operation is a synchronous in-memory transition, no I/O. A cart
// belongs to exactly one session, so there is no locking here.
type Cart struct {
	Lines map[uint]Line `json:"lines"`
}

func New() *Cart {
	return &Cart{Lines: map[uint]Line{}}
}

// Add puts one unit of p into the cart, merging with an existing line.
// It reports false and leaves the cart unchanged when p is not
// purchasable (unavailable or out of stock). The merged quantity is
// clamped to p's stock in both directions: it never grows past it, and
// a stale quantity above freshly shrunk stock is pulled back down.
func (c *Cart) Add(p models.Product) bool {
	if !p.Purchasable() {
		return false
	}
	line, ok := c.Lines[p.ID]
	if !ok {
		c.Lines[p.ID] = Line{Product: p, Quantity: 1}
		return true
	}
	if line.Quantity < p.StockQuantity {
		line.Quantity++
	} else if line.Quantity > p.StockQuantity {
		line.Quantity = p.StockQuantity
	}
	line.Product = p
	c.Lines[p.ID] = line
	return true
}

// UpdateQuantity replaces a line's quantity, clamped to
// [1, stock_quantity]. A quantity below 1 removes the line.
func (c *Cart) UpdateQuantity(productID uint, quantity int) {
	line, ok := c.Lines[productID]
	if !ok {
		return
	}
	if quantity < 1 {
		delete(c.Lines, productID)
		return
	}
	q := uint(quantity)
	if q > line.Product.StockQuantity {
		q = line.Product.StockQuantity
	}
	line.Quantity = q
	c.Lines[productID] = line
}

// Remove deletes the line; absent ids are a no-op.
func (c *Cart) Remove(productID uint) {
	delete(c.Lines, productID)
}

func (c *Cart) Clear() {
	c.Lines = map[uint]Line{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Items returns the lines ordered by product id, for stable responses.
func (c *Cart) Items() []Line {
	items := make([]Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, line)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Product.ID < items[j].Product.ID
	})
	return items
}

// Reclamp refreshes product snapshots against the live catalog and
// re-applies the quantity invariant: a line never exceeds live stock
// and never drops below 1. Lines whose product became unavailable or
// out of stock are removed.
func (c *Cart) Reclamp(products map[uint]models.Product) {
	for id, line := range c.Lines {
		p, ok := products[id]
		if !ok || !p.Purchasable() {
			delete(c.Lines, id)
			continue
		}
		line.Product = p
		if line.Quantity > p.StockQuantity {
			line.Quantity = p.StockQuantity
		}
		c.Lines[id] = line
	}
}
