package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/nguyentranbao-ct/storefront/pkg/logger/logctx"
)

const (
	RequestIDKey = "request_id"

	maxRequestIDLen = 64
)

type requestIDContextKey struct{}

// GetRequestID returns the id assigned to the request by RequestID.
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}

// RequestIDFromContext returns the request id carried by ctx, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

type RequestIDConfig struct {
	Skipper   Skipper
	Generator func() string
}

// RequestID reuses the X-Request-Id of a proxy when it looks like an id and
// generates one otherwise. The id is echoed in the response header, stored in
// the echo context and the request context, and added to contextual log fields.
func RequestID(config RequestIDConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.Generator == nil {
		config.Generator = uuid.NewString
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if !validRequestID(id) {
				id = config.Generator()
			}

			ctx := context.WithValue(c.Request().Context(), requestIDContextKey{}, id)
			ctx = log.With(ctx, RequestIDKey, id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(RequestIDKey, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

// validRequestID accepts short printable ASCII ids, keeping forged headers
// out of the logs.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
