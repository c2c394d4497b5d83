package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// WrapHandler adapts a typed API handler to echo: the request struct is bound
// and validated with BindAndValidate, the result is answered as the data of a
// successful Response. A *Response result is sent as is.
func WrapHandler[Req any, Res any](f func(c echo.Context, req Req) (Res, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req Req
		if err := BindAndValidate(c, &req); err != nil {
			return err
		}

		data, err := f(c, req)
		if err != nil {
			return err
		}
		if c.Response().Committed {
			return nil
		}

		if resp, ok := any(data).(*Response); ok {
			return c.JSON(resp.Status, resp)
		}
		return c.JSON(http.StatusOK, &Response{
			Status:  http.StatusOK,
			Success: true,
			Data:    data,
		})
	}
}
