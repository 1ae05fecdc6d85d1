package orchestrators

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"checkin/internal/domain/apperr"
)

// validate is shared; validator caches struct metadata and is safe for
// concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// validateInput checks input's validate tags and converts the first
// failure into a user-facing ValidationError.
// PRE: input is a struct value
// POST: returns nil or an *apperr.Error of KindValidation
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate %T: %w", input, err)
	}
	return apperr.Validation(fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please enter a %s.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s cannot exceed %s characters.", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Please select a %s.", fe.Field())
	default:
		return fmt.Sprintf("The %s is invalid.", fe.Field())
	}
}
