// Package validation checks configuration and command input.
//
// Struct tags are checked with go-playground/validator:
//
//	type Input struct {
//	    Format string `mapstructure:"format" validate:"required,oneof=json yaml"`
//	}
//	err := validation.Validate(in)
//
// Ad hoc checks collect field errors:
//
//	v := validation.New()
//	v.Required("op", name).OptionalUUID("id", id)
//	if err := v.Validate(); err != nil { ... }
//
// Both return an errors.AppError with code INVALID_INPUT and the failing
// fields under the "fields" detail.
package validation
