package syncclient

import "sync"

// Collection is the insertion-ordered local product list. All patches are
// pure prev→next transforms guarded by one mutex, so callbacks from a
// subscriber goroutine and reads from the caller never race.
type Collection struct {
	mu    sync.Mutex
	items []Product
}

func NewCollection() *Collection {
	return &Collection{}
}

// Replace installs an authoritative snapshot, discarding local state.
func (c *Collection) Replace(items []Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items[:0:0], items...)
}

// Apply patches the collection with one change event. Every patch is
// idempotent: re-applying the same event leaves the collection unchanged.
func (c *Collection) Apply(e ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Action {
	case ActionAdded:
		if e.Product == nil {
			return
		}
		// The HTTP response and the broadcast echo of the same create can
		// both arrive; the second one must not duplicate the row.
		if c.index(e.Product.ID) >= 0 {
			return
		}
		c.items = append(c.items, *e.Product)

	case ActionUpdated:
		if e.Product == nil {
			return
		}
		if i := c.index(e.Product.ID); i >= 0 {
			c.items[i] = *e.Product
		}

	case ActionDeleted:
		if e.Product == nil {
			return
		}
		if i := c.index(e.Product.ID); i >= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}

	case ActionQtyAdjusted:
		if e.Stock == nil {
			return
		}
		// Patch stock fields only, preserving concurrent unrelated edits.
		if i := c.index(e.Stock.ID); i >= 0 {
			c.items[i].Qty = e.Stock.Qty
			c.items[i].Status = e.Stock.Status
		}
	}
}

// Items returns a copy of the current list in insertion order.
func (c *Collection) Items() []Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Product(nil), c.items...)
}

// Get returns the product with the given id, if present.
func (c *Collection) Get(id uint) (Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return Product{}, false
}

// Len returns the number of products held locally.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// index returns the position of id, or -1. Caller holds c.mu.
func (c *Collection) index(id uint) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
