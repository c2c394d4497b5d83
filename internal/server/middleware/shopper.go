package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
)

const ShopperIDKey = "shopper_id"

// Sealer encrypts the shopper id stored in the cookie.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type ShopperConfig struct {
	Skipper      Skipper
	Sealer       Sealer
	CookieName   string
	MaxAge       time.Duration
	Secure       bool
	GenerateFunc func() string
}

// Shopper identifies the browser profile by a sealed cookie holding a UUID.
// A missing or tampered cookie starts a new profile.
func Shopper(config ShopperConfig) echo.MiddlewareFunc {
	if config.Sealer == nil {
		panic("Sealer is required to use Shopper")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.CookieName == "" {
		config.CookieName = "storefront_profile"
	}
	if config.GenerateFunc == nil {
		config.GenerateFunc = uuid.NewString
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			shopperID := readShopper(c, config)
			if shopperID == "" {
				shopperID = config.GenerateFunc()
				sealed, err := config.Sealer.Seal(shopperID)
				if err != nil {
					return err
				}
				c.SetCookie(&http.Cookie{
					Name:     config.CookieName,
					Value:    sealed,
					Path:     "/",
					MaxAge:   int(config.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   config.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ShopperIDKey, shopperID)
			ctx := log.With(c.Request().Context(), ShopperIDKey, shopperID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func readShopper(c echo.Context, config ShopperConfig) string {
	cookie, err := c.Cookie(config.CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	id, err := config.Sealer.Open(cookie.Value)
	if err != nil {
		log.Warnw(c.Request().Context(), "Ignoring unreadable shopper cookie", "error", err)
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}
