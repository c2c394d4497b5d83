package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.LocalStorage = (*localStorageRepo)(nil)

type localStorageRepo struct {
	baseRepo[models.StorageItem]
}

func NewLocalStorage(db *DB) repository.LocalStorage {
	repo := &localStorageRepo{
		baseRepo: newBaseRepo[models.StorageItem](db.Database),
	}

	go repo.createIndexes(context.Background())

	return repo
}

func (r *localStorageRepo) createIndexes(ctx context.Context) {
	shopperIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "shopper_id", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetName("shopper_key"),
	}
	_, _ = r.coll.Indexes().CreateOne(ctx, shopperIndex)
}

func (r *localStorageRepo) GetItem(ctx context.Context, shopperID, key string) (string, bool, error) {
	item, err := r.FindByID(ctx, models.StorageItemID(shopperID, key))
	if errors.Is(err, models.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %s: %w", key, err)
	}
	return item.Value, true, nil
}

func (r *localStorageRepo) SetItem(ctx context.Context, shopperID, key, value string) error {
	item := models.StorageItem{
		ID:        models.StorageItemID(shopperID, key),
		ShopperID: shopperID,
		Key:       key,
		Value:     value,
	}
	if err := r.UpsertByID(ctx, item); err != nil {
		return fmt.Errorf("set item %s: %w", key, err)
	}
	return nil
}

func (r *localStorageRepo) RemoveItem(ctx context.Context, shopperID, key string) error {
	if err := r.DeleteByID(ctx, models.StorageItemID(shopperID, key)); err != nil {
		return fmt.Errorf("remove item %s: %w", key, err)
	}
	return nil
}
