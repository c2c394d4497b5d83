package models

import "time"

// StorageItem is one persisted local storage value of a shopper.
type StorageItem struct {
	ID        string    `bson:"_id,omitempty"`
	ShopperID string    `bson:"shopper_id,omitempty"`
	Key       string    `bson:"key,omitempty"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at,omitempty"`
}

func StorageItemID(shopperID, key string) string {
	return shopperID + ":" + key
}

func (StorageItem) CollectionName() string {
	return "local_storage"
}

func (s StorageItem) GetID() string {
	return s.ID
}

func (s StorageItem) GetUpdates() any {
	// everything but the id; value is always written, even when empty
	s.ID = ""
	s.UpdatedAt = time.Now()
	return s
}
