package server

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/storefront/internal/models"
	pkgmdw "github.com/nguyentranbao-ct/storefront/internal/server/middleware"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
)

const flashCookieName = "storefront_flash"

// FlashStore carries one notification across the redirect that follows an
// action. The value is sealed so only the server can author messages.
type FlashStore struct {
	sealer pkgmdw.Sealer
	secure bool
}

func newFlashStore(sealer pkgmdw.Sealer, secure bool) *FlashStore {
	return &FlashStore{sealer: sealer, secure: secure}
}

func (f *FlashStore) Set(c echo.Context, n *models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	sealed, err := f.sealer.Seal(string(data))
	if err != nil {
		return err
	}
	c.SetCookie(f.cookie(sealed, 0))
	return nil
}

// Pop returns the pending notification, if any, and clears it.
func (f *FlashStore) Pop(c echo.Context) *models.Notification {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	c.SetCookie(f.cookie("", -1))

	plain, err := f.sealer.Open(cookie.Value)
	if err != nil {
		log.Warnw(c.Request().Context(), "Ignoring unreadable flash cookie", "error", err)
		return nil
	}
	var n models.Notification
	if err := json.Unmarshal([]byte(plain), &n); err != nil || n.Message == "" {
		return nil
	}
	return &n
}

func (f *FlashStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
