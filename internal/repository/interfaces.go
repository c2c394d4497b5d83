package repository

import (
	"context"

	"github.com/nguyentranbao-ct/storefront/internal/models"
)

// Storage keys of the persisted shopper state.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

// LocalStorage is a per-shopper string key/value store, the server side
// counterpart of the browser's window.localStorage.
type LocalStorage interface {
	// GetItem returns ok=false when the key was never set or was removed.
	GetItem(ctx context.Context, shopperID, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, shopperID, key, value string) error
	RemoveItem(ctx context.Context, shopperID, key string) error
}

// CatalogSource fetches the raw catalog document.
type CatalogSource interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// EventPublisher delivers store events. Publish must not block on the broker.
type EventPublisher interface {
	Publish(ctx context.Context, event models.StoreEvent)
}
