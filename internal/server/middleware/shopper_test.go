package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/storefront/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSealer(t *testing.T) crypto.Client {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	client, err := crypto.NewClient(key)
	require.NoError(t, err)
	return client
}

func TestShopperMiddleware(t *testing.T) {
	sealer := newSealer(t)
	e := echo.New()
	e.Use(Shopper(ShopperConfig{
		Sealer:     sealer,
		CookieName: "profile",
		MaxAge:     time.Hour,
	}))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetShopperID(c))
	})

	// first visit issues a cookie
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	shopperID := rec.Body.String()
	require.NotEmpty(t, shopperID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "profile", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.NotContains(t, cookie.Value, shopperID)

	// the cookie identifies the same shopper
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, shopperID, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	// a tampered cookie starts a new profile
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "profile", Value: "tampered"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.NotEqual(t, shopperID, rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestShopperMiddleware_RejectsNonUUID(t *testing.T) {
	sealer := newSealer(t)
	sealed, err := sealer.Seal("not-a-uuid")
	require.NoError(t, err)

	e := echo.New()
	e.Use(Shopper(ShopperConfig{
		Sealer:       sealer,
		GenerateFunc: func() string { return "00000000-0000-0000-0000-000000000001" },
	}))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetShopperID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "storefront_profile", Value: sealed})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", rec.Body.String())
}
