// Package validation registers custom binding tags on gin's validator.
package validation

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterTag installs fn under tag on the validator gin uses for binding.
func RegisterTag(tag string, fn validator.Func) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("validation: unexpected binding engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("validation: register %q: %w", tag, err)
	}
	return nil
}

// OneOf returns a validator accepting the string forms parse accepts.
// Empty values pass so the tag composes with omitempty and required.
func OneOf(parse func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		return parse(s)
	}
}
