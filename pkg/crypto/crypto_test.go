package crypto

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base64 of 32 bytes
const testKey = "MTIzNDU2Nzg5MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTI="

func TestSealOpen(t *testing.T) {
	client, err := NewClient(testKey)
	require.NoError(t, err)

	sealed, err := client.Seal("8f14e45f-ceea-467a-9575-7d3f0b6b1c2a")
	require.NoError(t, err)
	assert.NotEmpty(t, sealed)
	assert.NotContains(t, sealed, "8f14e45f")

	opened, err := client.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "8f14e45f-ceea-467a-9575-7d3f0b6b1c2a", opened)

	again, err := client.Seal("8f14e45f-ceea-467a-9575-7d3f0b6b1c2a")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ between seals")
}

func TestEmptyStrings(t *testing.T) {
	client, err := NewClient(testKey)
	require.NoError(t, err)

	sealed, err := client.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)

	opened, err := client.Open("")
	require.NoError(t, err)
	assert.Empty(t, opened)
}

func TestOpenRejectsTampering(t *testing.T) {
	client, err := NewClient(testKey)
	require.NoError(t, err)

	sealed, err := client.Seal("shopper")
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff

	_, err = client.Open(base64.RawURLEncoding.EncodeToString(raw))
	assert.True(t, errors.Is(err, ErrInvalidCiphertext))

	_, err = client.Open("!!not-base64!!")
	assert.True(t, errors.Is(err, ErrInvalidCiphertext))

	_, err = client.Open("YQ")
	assert.True(t, errors.Is(err, ErrInvalidCiphertext))
}

func TestOpenWithOtherKey(t *testing.T) {
	a, err := NewClient(testKey)
	require.NoError(t, err)
	otherKey, err := GenerateKey()
	require.NoError(t, err)
	b, err := NewClient(otherKey)
	require.NoError(t, err)

	sealed, err := a.Seal("shopper")
	require.NoError(t, err)
	_, err = b.Open(sealed)
	assert.True(t, errors.Is(err, ErrInvalidCiphertext))
}

func TestNewClientInvalidKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "not base64", key: "invalid-base64!"},
		{name: "short", key: base64.StdEncoding.EncodeToString([]byte("short"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.key)
			assert.Error(t, err)
		})
	}
}
