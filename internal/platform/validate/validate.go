// Package validate wires go-playground/validator into echo so request
// payloads are checked declaratively via struct tags.
package validate

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator. Violations are reported as a 400 with
// the offending field quoted in the message.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := isValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		field := jsonFieldName(fe)
		switch fe.Tag() {
		case "required":
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%q is required", field))
		case "gt", "gte", "lt", "lte", "min", "max", "oneof":
			return echo.NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("%q must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		default:
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%q is invalid", field))
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

// jsonFieldName lowercases the first rune of the struct field so messages
// match the JSON payload naming used by clients.
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}
