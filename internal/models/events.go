package models

import "time"

type EventType string

const (
	EventCartItemAdded       EventType = "cart.item_added"
	EventCartItemRemoved     EventType = "cart.item_removed"
	EventCartQuantityChanged EventType = "cart.quantity_changed"
	EventCartCleared         EventType = "cart.cleared"
	EventWishlistAdded       EventType = "wishlist.added"
	EventWishlistRemoved     EventType = "wishlist.removed"
)

// StoreEvent describes one applied cart or wishlist mutation.
type StoreEvent struct {
	Type       EventType `json:"type"`
	ShopperID  string    `json:"shopper_id"`
	ProductID  ProductID `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
