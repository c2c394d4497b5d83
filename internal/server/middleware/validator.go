package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator validates bound requests. Field names in errors follow the tag the
// value was bound from, so clients see `id` rather than `ProductID`.
type Validator struct {
	validate *validator.Validate
}

var requestTags = []string{"json", "query", "form", "ctx"}

func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range requestTags {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return &Validator{validate: validate}
}

// Validate returns a 400 *ResponseError listing the failed rule per field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	fields := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
		names = append(names, fe.Field())
	}
	return &ResponseError{
		Status:       http.StatusBadRequest,
		Err:          err,
		ErrorCode:    "invalid_request",
		ErrorMessage: "invalid " + strings.Join(names, ", "),
		ErrorData:    fields,
	}
}
