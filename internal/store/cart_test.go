package store

import (
	"context"
	"math/rand"
	"testing"

	"github.com/nguyentranbao-ct/storefront/internal/models"
	"github.com/nguyentranbao-ct/storefront/internal/repo/memory"
	"github.com/nguyentranbao-ct/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSession(t *testing.T, storage repository.LocalStorage, shopperID string) *Session {
	t.Helper()
	sess, err := NewSessions(storage).Open(context.Background(), shopperID)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func TestCart_SubtotalScenario(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalog([]models.Product{
		{ID: "P1", Name: "P1", Price: price("10"), Images: []string{"p1.jpg"}},
		{ID: "P2", Name: "P2", Price: price("5"), Images: []string{"p2.jpg"}},
	})
	cart := openSession(t, memory.NewLocalStorage(), "s1").Cart

	_, err := cart.Add(ctx, catalog, "P1")
	require.NoError(t, err)
	_, err = cart.Add(ctx, catalog, "P2")
	require.NoError(t, err)
	entry, err := cart.Add(ctx, catalog, "P2")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Quantity)

	assert.Equal(t, "20.00", cart.Subtotal().StringFixed(2))
	assert.Equal(t, 3, cart.Count())
	assert.Equal(t, 2, cart.Len())
}

func TestCart_Operations(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog(t)
	storage := memory.NewLocalStorage()
	cart := openSession(t, storage, "s1").Cart

	entry, err := cart.Add(ctx, catalog, "404")
	require.NoError(t, err)
	assert.Nil(t, entry)
	_, ok, err := storage.GetItem(ctx, "s1", repository.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok, "no-op must not write")

	_, err = cart.Add(ctx, catalog, "1")
	require.NoError(t, err)
	_, err = cart.Add(ctx, catalog, "3")
	require.NoError(t, err)

	entry, err = cart.Increment(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 2, entry.Quantity)

	entry, err = cart.Increment(ctx, "2")
	require.NoError(t, err)
	assert.Nil(t, entry)

	entry, err = cart.Decrement(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Quantity)
	assert.True(t, cart.Contains("1"))

	entry, err = cart.Decrement(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 0, entry.Quantity)
	assert.False(t, cart.Contains("1"))

	removed, err := cart.Remove(ctx, "1")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = cart.Remove(ctx, "3")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, cart.Len())
	assert.True(t, cart.Subtotal().IsZero())

	value, ok, err := storage.GetItem(ctx, "s1", repository.KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", value)
}

func TestCart_QuantitiesStayPositive(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog(t)
	cart := openSession(t, memory.NewLocalStorage(), "s1").Cart
	rnd := rand.New(rand.NewSource(42))
	productIDs := []models.ProductID{"1", "2", "3", "404"}

	for i := 0; i < 500; i++ {
		id := productIDs[rnd.Intn(len(productIDs))]
		var err error
		switch rnd.Intn(3) {
		case 0:
			_, err = cart.Add(ctx, catalog, id)
		case 1:
			_, err = cart.Increment(ctx, id)
		case 2:
			_, err = cart.Decrement(ctx, id)
		}
		require.NoError(t, err)

		expected := decimalInt(0)
		for _, e := range cart.Entries() {
			require.GreaterOrEqual(t, e.Quantity, 1)
			expected = expected.Add(e.Price.Mul(decimalInt(e.Quantity)))
		}
		require.True(t, expected.Equal(cart.Subtotal()))
	}
}

func TestCart_Clear(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog(t)
	storage := memory.NewLocalStorage()
	cart := openSession(t, storage, "s1").Cart

	_, err := cart.Add(ctx, catalog, "2")
	require.NoError(t, err)
	require.NoError(t, cart.Clear(ctx))
	assert.Equal(t, 0, cart.Len())

	_, ok, err := storage.GetItem(ctx, "s1", repository.KeyCart)
	require.NoError(t, err)
	assert.False(t, ok, "checkout drops the stored cart")

	reopened := openSession(t, storage, "s1").Cart
	assert.Equal(t, 0, reopened.Len())
}

func TestCart_ClearError(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{LocalStorage: memory.NewLocalStorage(), removeErr: errBoom}
	cart := openSession(t, storage, "s1").Cart

	_, err := cart.Add(ctx, testCatalog(t), "2")
	require.NoError(t, err)
	assert.ErrorIs(t, cart.Clear(ctx), errBoom)
	assert.Equal(t, 1, cart.Len(), "entries stay when the store could not drop them")
}

func TestCart_SaveError(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{LocalStorage: memory.NewLocalStorage(), setErr: errBoom}
	cart := openSession(t, storage, "s1").Cart

	_, err := cart.Add(ctx, testCatalog(t), "1")
	assert.ErrorIs(t, err, errBoom)
}
