package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

type Skipper func(c echo.Context) bool

func DefaultSkipper(echo.Context) bool {
	return false
}

// Logger is the part of a sugared zap logger the middlewares write to.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// Response is the JSON envelope of every /api answer.
type Response struct {
	Status       int         `json:"-"`
	Success      bool        `json:"success"`
	Data         interface{} `json:"data,omitempty"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

// ResponseError is returned by API handlers to pick the status, code and
// message of the error envelope.
type ResponseError struct {
	Status       int         `json:"-"`
	Err          error       `json:"-"`
	Success      bool        `json:"success"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

func NewResponseError(status int, code string, err error) *ResponseError {
	return &ResponseError{
		Status:       status,
		Err:          err,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
	}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status: %d, code: %s; message: %+v", e.Status, e.ErrorCode, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}
