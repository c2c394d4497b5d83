package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/nguyentranbao-ct/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// keep the baseRepo implementation in sync with IRepository interface
var _ IRepository[IEntity] = (*baseRepo[IEntity])(nil)

type IEntity interface {
	CollectionName() string
	GetUpdates() any
	GetID() string
}

type IRepository[E IEntity] interface {
	FindByID(ctx context.Context, docID string) (*E, error)
	FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*E, error)
	UpsertByID(ctx context.Context, entity E) error
	DeleteByID(ctx context.Context, docID string) error
}

type baseRepo[E IEntity] struct {
	coll *mongo.Collection
}

func newBaseRepo[E IEntity](dbc *mongo.Database) baseRepo[E] {
	var entity E
	return baseRepo[E]{
		coll: dbc.Collection(entity.CollectionName()),
	}
}

func (r *baseRepo[E]) FindByID(ctx context.Context, docID string) (*E, error) {
	return r.FindOne(ctx, bson.M{"_id": docID})
}

func (r *baseRepo[E]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*E, error) {
	var entity E
	err := r.coll.FindOne(ctx, filter, opts...).Decode(&entity)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepo[E]) UpsertByID(ctx context.Context, entity E) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": entity.GetID()},
		bson.M{"$set": entity.GetUpdates()},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert one: %w", err)
	}
	return nil
}

func (r *baseRepo[E]) DeleteByID(ctx context.Context, docID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": docID})
	if err != nil {
		return fmt.Errorf("delete one: %w", err)
	}
	return nil
}
