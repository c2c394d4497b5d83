package middleware

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type CORSConfig struct {
	Skipper Skipper
	// Origins matches the Origin header of allowed callers.
	Origins *regexp.Regexp
	MaxAge  time.Duration
}

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, X-Request-Id"
)

// CORS lets matching origins call the JSON API with the shopper cookie.
// Preflight requests of those origins are answered here with 204.
func CORS(config CORSConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.Origins == nil {
		panic("Origins is required to use CORS")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			header := c.Response().Header()
			header.Add(echo.HeaderVary, echo.HeaderOrigin)

			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || !config.Origins.MatchString(origin) {
				return next(c)
			}
			header.Set(echo.HeaderAccessControlAllowOrigin, origin)
			// the shopper cookie identifies the cart
			header.Set(echo.HeaderAccessControlAllowCredentials, "true")

			if c.Request().Method != http.MethodOptions {
				return next(c)
			}
			header.Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
			header.Set(echo.HeaderAccessControlAllowHeaders, corsAllowHeaders)
			if config.MaxAge > 0 {
				header.Set(echo.HeaderAccessControlMaxAge, strconv.Itoa(int(config.MaxAge.Seconds())))
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}
