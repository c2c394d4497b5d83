package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage()

	_, ok, err := s.GetItem(ctx, "s1", "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, "s1", "cart", `[{"id":"1","quantity":1}]`))
	require.NoError(t, s.SetItem(ctx, "s2", "cart", `[]`))

	value, ok, err := s.GetItem(ctx, "s1", "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1","quantity":1}]`, value)

	value, ok, err = s.GetItem(ctx, "s2", "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)

	require.NoError(t, s.RemoveItem(ctx, "s1", "cart"))
	_, ok, err = s.GetItem(ctx, "s1", "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RemoveItem(ctx, "unknown", "cart"))
}
