// Package validation holds the shared request validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fkhayef/invoicevista/internal/model"
)

var validate = New()

// New returns a validator with the portal's custom rules registered.
// Field names in errors are taken from the json tag.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// payment_method accepts exactly "credit card", "bank transfer" or "UPI"
	v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return model.PaymentMethod(fl.Field().String()).Valid()
	})

	return v
}

// Struct validates s with the shared validator
func Struct(s interface{}) error {
	return validate.Struct(s)
}

// Fields flattens validator errors into field -> message. It returns nil
// for any other error.
func Fields(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", strings.ToLower(fe.Param()))
	case "payment_method":
		return "must be one of: credit card, bank transfer, UPI"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
