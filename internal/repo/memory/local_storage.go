package memory

import (
	"context"
	"sync"

	"github.com/nguyentranbao-ct/storefront/internal/repository"
)

var _ repository.LocalStorage = (*localStorage)(nil)

type localStorage struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewLocalStorage returns a process-local storage. State is lost on restart.
func NewLocalStorage() repository.LocalStorage {
	return &localStorage{
		items: make(map[string]map[string]string),
	}
}

func (m *localStorage) GetItem(ctx context.Context, shopperID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.items[shopperID][key]
	return value, ok, nil
}

func (m *localStorage) SetItem(ctx context.Context, shopperID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	shopper, exists := m.items[shopperID]
	if !exists {
		shopper = make(map[string]string)
		m.items[shopperID] = shopper
	}
	shopper[key] = value
	return nil
}

func (m *localStorage) RemoveItem(ctx context.Context, shopperID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items[shopperID], key)
	if len(m.items[shopperID]) == 0 {
		delete(m.items, shopperID)
	}
	return nil
}
