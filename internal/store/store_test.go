package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

const testCatalogJSON = `[
	{"id": 1, "name": "Lamp", "price": 10, "images": ["lamp.jpg", "lamp-2.jpg"], "description": "Desk lamp",
	 "specifications": {"Color": "black", "Weight": "1kg", "Bulb": "LED"}},
	{"id": "2", "name": "Mug", "price": 5, "images": ["mug.jpg"], "description": "Ceramic mug"},
	{"id": 3, "name": "Chair", "price": 120.5, "images": ["chair.jpg"], "description": "Office chair with lamp holder"}
]`

type fakeSource struct {
	mu    sync.Mutex
	calls atomic.Int32
	data  []byte
	err   error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data, f.err
}

func (f *fakeSource) set(data []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data, f.err = data, err
}

// blockingSource holds its first fetch until release is closed.
type blockingSource struct {
	fakeSource
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (b *blockingSource) Fetch(ctx context.Context) ([]byte, error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.fakeSource.Fetch(ctx)
}

type failingStorage struct {
	repository.LocalStorage
	setErr    error
	getErr    error
	removeErr error
}

func (f *failingStorage) GetItem(ctx context.Context, shopperID, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.LocalStorage.GetItem(ctx, shopperID, key)
}

func (f *failingStorage) SetItem(ctx context.Context, shopperID, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.LocalStorage.SetItem(ctx, shopperID, key, value)
}

func (f *failingStorage) RemoveItem(ctx context.Context, shopperID, key string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	return f.LocalStorage.RemoveItem(ctx, shopperID, key)
}

var errBoom = errors.New("boom")

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	products, err := ParseCatalog([]byte(testCatalogJSON), validator.New())
	if err != nil {
		t.Fatalf("parse test catalog: %v", err)
	}
	return NewCatalog(products)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ids(products []models.Product) []models.ProductID {
	out := make([]models.ProductID, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
