package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/cstockton/go-conv"
	"github.com/labstack/echo/v4"
)

// BindAndValidate bind request context and validate request struct.
// Bind includes request body, params, query, headers and echo context values.
// An invalid request answers 400 with the failed rule of each field.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return err
	}

	if err := bindContext(c, req); err != nil {
		return err
	}

	if err := c.Validate(req); err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			return respErr
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

// GetShopperID returns the shopper set by the Shopper middleware.
func GetShopperID(c echo.Context) string {
	id, _ := c.Get(ShopperIDKey).(string)
	return id
}

// bindContext decode echo context values to struct by tag `ctx:"<key>"`
// missing keys leave the field untouched
func bindContext(c echo.Context, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, error) {
		return c.Get(tagValue), nil
	}

	return bindStruct(dst, "ctx", getValueFn)
}

// bindHeader decode http header to struct by tag `header:"<header_name>"`
// out must be a pointer to a struct
func bindHeader(header http.Header, dst interface{}) error {
	getValueFn := func(tagValue string) (interface{}, error) {
		return header.Get(tagValue), nil
	}

	return bindStruct(dst, "header", getValueFn)
}

// bindStruct decode to struct by custom tag `tagName:"tagValue"`
// dst must be a pointer to a struct
func bindStruct(dst interface{}, tagName string, getValueFn func(tagValue string) (interface{}, error)) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("non-pointer passed to Unmarshal")
	}

	indirect := reflect.Indirect(ptr)
	structType := indirect.Type()
	elemZero := reflect.Zero(structType)

	numField := elemZero.NumField()
	for i := 0; i < numField; i++ {
		structField := structType.Field(i)
		tagValue := structField.Tag.Get(tagName)
		if tagValue == "-" || tagValue == "" {
			continue
		}

		field := indirect.Field(i)
		value, err := getValueFn(tagValue)
		if err != nil {
			return err
		}
		if value == nil {
			continue
		}
		if err := conv.Infer(field, value); err != nil {
			return fmt.Errorf("cannot parse %s.%s as %s from: %#v / %s",
				structType.Name(), structField.Name, field.Type(), value, err)
		}
	}

	return nil
}
