package views

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormValidator wraps go-playground/validator with the console's custom rules
// and form-field naming.
type FormValidator struct {
	v *validator.Validate
}

// NewFormValidator returns a validator ready for the console's forms.
func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("vendor_category", func(fl validator.FieldLevel) bool {
		return IsVendorCategory(fl.Field().String())
	})
	return &FormValidator{v: v}
}

// Validate checks i and returns the first failing field as a FormError.
func (fv *FormValidator) Validate(i any) *FormError {
	err := fv.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return &FormError{Field: rootField(fe), Message: fieldError(fe)}
	}
	return &FormError{Field: FieldGeneral, Message: err.Error()}
}

// rootField maps "category[2]" to "category".
func rootField(fe validator.FieldError) string {
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return field
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := rootField(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "numeric":
		return field + " must be a number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return field + " does not match"
	case "vendor_category":
		return fmt.Sprintf("%q is not a known category", fe.Value())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
