package store

import (
	"context"

	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
)

// Wishlist is the shopper's ordered set of saved products.
type Wishlist struct {
	shopperID string
	storage   repository.LocalStorage
	items     []models.Product
}

func newWishlist(shopperID string, storage repository.LocalStorage, items []models.Product) *Wishlist {
	return &Wishlist{shopperID: shopperID, storage: storage, items: items}
}

func (w *Wishlist) indexOf(id models.ProductID) int {
	for i := range w.items {
		if w.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Toggle adds the catalog product when absent and removes it when present,
// returning the membership after the call. Ids missing from the catalog
// leave the wishlist unchanged and report a nil product that is not a
// member, even when a stale copy is still listed.
func (w *Wishlist) Toggle(ctx context.Context, catalog Lookup, id models.ProductID) (*models.Product, bool, error) {
	product, ok := catalog.FindByID(id)
	if !ok {
		return nil, false, nil
	}

	member := false
	if i := w.indexOf(id); i >= 0 {
		w.items = append(w.items[:i], w.items[i+1:]...)
	} else {
		w.items = append(w.items, product)
		member = true
	}
	if err := w.save(ctx); err != nil {
		return nil, false, err
	}
	return &product, member, nil
}

// Remove works for any listed id, including ones the catalog no longer has.
func (w *Wishlist) Remove(ctx context.Context, id models.ProductID) (removed bool, err error) {
	i := w.indexOf(id)
	if i < 0 {
		return false, nil
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	if err := w.save(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (w *Wishlist) Contains(id models.ProductID) bool {
	return w.indexOf(id) >= 0
}

// Items returns a copy of the saved products in insertion order.
func (w *Wishlist) Items() []models.Product {
	out := make([]models.Product, len(w.items))
	copy(out, w.items)
	return out
}

func (w *Wishlist) Len() int {
	return len(w.items)
}

func (w *Wishlist) save(ctx context.Context) error {
	return saveItem(ctx, w.storage, w.shopperID, repository.KeyWishlist, w.items)
}
