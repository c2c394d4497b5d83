package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
	"golang.org/x/sync/errgroup"
)

// Session is one shopper's cart and wishlist, held under the shopper's lock
// until Close.
type Session struct {
	ShopperID string
	Cart      *Cart
	Wishlist  *Wishlist

	once   sync.Once
	unlock func()
}

// Close releases the shopper lock. It is safe to call more than once.
func (s *Session) Close() {
	s.once.Do(s.unlock)
}

// Sessions opens shopper sessions on top of a LocalStorage.
type Sessions struct {
	storage repository.LocalStorage
	locks   *keyedMutex
}

func NewSessions(storage repository.LocalStorage) *Sessions {
	return &Sessions{
		storage: storage,
		locks:   newKeyedMutex(),
	}
}

// Open locks the shopper and reads the persisted cart and wishlist. Values
// that are missing or not valid JSON start empty.
func (s *Sessions) Open(ctx context.Context, shopperID string) (*Session, error) {
	unlock := s.locks.Lock(shopperID)

	var (
		cart     []models.CartEntry
		wishlist []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cart, err = loadItem[models.CartEntry](gctx, s.storage, shopperID, repository.KeyCart)
		return err
	})
	g.Go(func() (err error) {
		wishlist, err = loadItem[models.Product](gctx, s.storage, shopperID, repository.KeyWishlist)
		return err
	})
	if err := g.Wait(); err != nil {
		unlock()
		return nil, err
	}

	return &Session{
		ShopperID: shopperID,
		Cart:      newCart(shopperID, s.storage, validEntries(cart)),
		Wishlist:  newWishlist(shopperID, s.storage, validProducts(wishlist)),
		unlock:    unlock,
	}, nil
}

func loadItem[T any](ctx context.Context, storage repository.LocalStorage, shopperID, key string) ([]T, error) {
	value, ok, err := storage.GetItem(ctx, shopperID, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || value == "" {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		log.Warnw(ctx, "Discarding unreadable persisted value", "key", key, "shopper_id", shopperID, "error", err)
		return nil, nil
	}
	return items, nil
}

// validEntries drops entries without an id or with a quantity below one.
func validEntries(entries []models.CartEntry) []models.CartEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID == "" || e.Quantity < 1 {
			continue
		}
		out = append(out, e)
	}
	return out
}

// validProducts drops products without an id and repeated ids.
func validProducts(products []models.Product) []models.Product {
	seen := make(map[models.ProductID]struct{}, len(products))
	out := products[:0]
	for _, p := range products {
		if _, dup := seen[p.ID]; dup || p.ID == "" {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// keyedMutex serializes work per key. Entries are dropped once no one holds
// or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
