package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/apokryfos/Enumerable/errors"
)

// shared is built on first use; validator caches struct metadata per instance.
var shared = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(keyName)
	return v
})

// keyName names a field by its configuration key.
func keyName(fld reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "yaml", "json"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		}
		return name
	}
	return toSnakeCase(fld.Name)
}

// Validate checks s against its `validate` struct tags. Failures come back
// as one INVALID_INPUT error listing every field by its dotted key.
func Validate(s any) error {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.InvalidInput("", err.Error())
	}

	v := New()
	for _, e := range fieldErrs {
		v.AddError(fieldPath(e), describe(e))
	}
	return v.Validate()
}

// fieldPath returns the dotted key of e without the root struct name.
func fieldPath(e validator.FieldError) string {
	if _, rest, ok := strings.Cut(e.Namespace(), "."); ok {
		return rest
	}
	return e.Field()
}

var messages = map[string]string{
	"required":      "is required",
	"url":           "must be a valid URL",
	"hostname_port": "must be host:port",
	"uuid":          "must be a valid UUID",
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(e.Param()), ", ")
	}
	if msg, ok := messages[e.Tag()]; ok {
		return msg
	}
	return "is invalid"
}

// toSnakeCase converts a Go field name to snake_case, keeping acronyms
// together: OTLPEndpoint becomes otlp_endpoint.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
