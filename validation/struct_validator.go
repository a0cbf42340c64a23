package validation

import (
	stderrors "errors"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/clipscribe/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// squashed names the namespace segment of a `mapstructure:",squash"` embed,
// whose fields sit at the parent's level in the config file.
const squashed = "~squash"

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// report the config key the user actually writes
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := strings.Split(fld.Tag.Get("mapstructure"), ",")
			if slices.Contains(tag[1:], "squash") {
				return squashed
			}
			name := tag[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate checks s against its `validate` struct tags. Field names in the
// error are dotted config keys, e.g. "telegram.bot_token".
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.Validation("validation failed").WithCause(err)
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, FieldError{Field: configKey(e.Namespace()), Message: formatValidationError(e)})
	}
	return newError(fields)
}

// configKey drops the root struct name and squashed embeds from a
// validator namespace such as "Config.telegram.bot_token".
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	kept := parts[:0]
	for _, p := range parts {
		if p != squashed {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				result.WriteRune('_')
			}
			r += 'a' - 'A'
		}
		result.WriteRune(r)
	}
	return result.String()
}
