package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nguyentranbao-ct/storefront/internal/config"
	"github.com/nguyentranbao-ct/storefront/internal/kafka"
	"github.com/nguyentranbao-ct/storefront/internal/repo/catalog"
	"github.com/nguyentranbao-ct/storefront/internal/repo/memory"
	"github.com/nguyentranbao-ct/storefront/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/storefront/internal/repo/sqlite"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/nguyentranbao-ct/storefront/pkg/crypto"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	opts := options.Client().
		SetAppName("storefront").
		SetDirect(cfg.Database.Direct).
		SetHosts(cfg.Database.Hosts)

	if cfg.Database.Username != "" {
		opts.SetAuth(options.Credential{
			Username:      cfg.Database.Username,
			Password:      cfg.Database.Password,
			AuthSource:    cfg.Database.AuthDB,
			AuthMechanism: "SCRAM-SHA-1",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("init mongo client: %w", err)
	}

	db := &mongodb.DB{
		Client:   mongoClient,
		Database: mongoClient.Database(cfg.Database.Database),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		},
		OnStop: db.Close,
	})

	return db, nil
}

func newLocalStorage(lc fx.Lifecycle, cfg *config.Config) (repository.LocalStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		db, err := newMongoDB(lc, cfg)
		if err != nil {
			return nil, err
		}
		return mongodb.NewLocalStorage(db), nil
	case config.StorageSQLite:
		storage, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return storage.Close()
			},
		})
		return storage, nil
	default:
		return memory.NewLocalStorage(), nil
	}
}

func newCatalogSource(cfg *config.Config) repository.CatalogSource {
	return catalog.NewSource(cfg.Catalog.Source, cfg.Catalog.Timeout, cfg.Catalog.Retries)
}

func newValidator() *validator.Validate {
	return validator.New()
}

func newCryptoClient(cfg *config.Config) (crypto.Client, error) {
	key := cfg.Session.Key
	if key == "" {
		generated, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
		log.Warnw(context.Background(), "SESSION_KEY is not set, shopper profiles reset on restart")
		key = generated
	}
	return crypto.NewClient(key)
}

func newEventPublisher(lc fx.Lifecycle, cfg *config.Config) (repository.EventPublisher, error) {
	publisher, err := kafka.NewPublisher(&cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("init kafka publisher: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: publisher.Close,
	})
	return publisher, nil
}
