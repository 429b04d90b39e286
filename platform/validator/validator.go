// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// priceRegex allows up to eight integer digits and two decimals, the same
// shape the mobile form accepts.
var priceRegex = regexp.MustCompile(`^\d{0,8}(\.\d{0,2})?$`)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance with the project's custom tags
// ("notblank", "price") registered.
func New() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validateNotBlank)
	_ = v.RegisterValidation("price", validatePrice)
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field any, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePrice(fl validator.FieldLevel) bool {
	return IsPrice(fl.Field().String())
}

// IsPrice reports whether s has the shape of a form price.
func IsPrice(s string) bool {
	return priceRegex.MatchString(strings.TrimSpace(s))
}
