package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// formatValidationError converts the first struct-validation failure into a
// client-facing message. Field names are reported in snake_case to match
// the JSON wire form.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := snakeCase(fe.Field())
			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be blank"
			case "oneof":
				return "invalid request: " + field + " must be one of " + fe.Param()
			case "gte", "min":
				return "invalid request: " + field + " must be at least " + fe.Param()
			case "lte", "max":
				return "invalid request: " + field + " must be at most " + fe.Param()
			case "len":
				return "invalid request: " + field + " must be exactly " + fe.Param() + " characters"
			case "uuid4":
				return "invalid request: " + field + " must be a valid uuid"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
