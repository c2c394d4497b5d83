package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

// Cart is the shopper's ordered list of entries. Every mutation is written to
// storage before it returns; quantities never drop below one.
type Cart struct {
	shopperID string
	storage   repository.LocalStorage
	entries   []models.CartEntry
}

func newCart(shopperID string, storage repository.LocalStorage, entries []models.CartEntry) *Cart {
	return &Cart{shopperID: shopperID, storage: storage, entries: entries}
}

func (c *Cart) indexOf(id models.ProductID) int {
	for i := range c.entries {
		if c.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// Add puts one more unit of the catalog product id in the cart. It returns
// nil when the id is not in the catalog.
func (c *Cart) Add(ctx context.Context, catalog Lookup, id models.ProductID) (*models.CartEntry, error) {
	product, ok := catalog.FindByID(id)
	if !ok {
		return nil, nil
	}

	i := c.indexOf(id)
	if i >= 0 {
		c.entries[i].Quantity++
	} else {
		c.entries = append(c.entries, models.CartEntry{Product: product, Quantity: 1})
		i = len(c.entries) - 1
	}
	if err := c.save(ctx); err != nil {
		return nil, err
	}
	entry := c.entries[i]
	return &entry, nil
}

// Increment returns the updated entry, or nil when id is not in the cart.
func (c *Cart) Increment(ctx context.Context, id models.ProductID) (*models.CartEntry, error) {
	i := c.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	c.entries[i].Quantity++
	if err := c.save(ctx); err != nil {
		return nil, err
	}
	entry := c.entries[i]
	return &entry, nil
}

// Decrement lowers the quantity by one and removes the entry instead of
// reaching zero. The returned entry carries the new quantity, zero when removed.
func (c *Cart) Decrement(ctx context.Context, id models.ProductID) (*models.CartEntry, error) {
	i := c.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	entry := c.entries[i]
	if entry.Quantity > 1 {
		c.entries[i].Quantity--
		entry.Quantity--
	} else {
		c.entries = append(c.entries[:i], c.entries[i+1:]...)
		entry.Quantity = 0
	}
	if err := c.save(ctx); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove drops the entry; removed is false when id is not in the cart.
func (c *Cart) Remove(ctx context.Context, id models.ProductID) (removed bool, err error) {
	i := c.indexOf(id)
	if i < 0 {
		return false, nil
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	if err := c.save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the cart on checkout by dropping the stored key; a missing
// key reads back as an empty cart.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.storage.RemoveItem(ctx, c.shopperID, repository.KeyCart); err != nil {
		return fmt.Errorf("remove %s: %w", repository.KeyCart, err)
	}
	c.entries = nil
	return nil
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.LineTotal())
	}
	return total
}

// Entries returns a copy of the entries in insertion order.
func (c *Cart) Entries() []models.CartEntry {
	out := make([]models.CartEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Count is the total quantity over all entries.
func (c *Cart) Count() int {
	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

func (c *Cart) Len() int {
	return len(c.entries)
}

func (c *Cart) Contains(id models.ProductID) bool {
	return c.indexOf(id) >= 0
}

func (c *Cart) save(ctx context.Context) error {
	return saveItem(ctx, c.storage, c.shopperID, repository.KeyCart, c.entries)
}

func saveItem[T any](ctx context.Context, storage repository.LocalStorage, shopperID, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := storage.SetItem(ctx, shopperID, key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
