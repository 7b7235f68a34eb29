// Package domain provides core business rules for the quotations bounded
// context: rate normalization, primary-rate resolution, profit derivation,
// offer sequencing and the lifecycle state machine. Everything here is pure
// and total — functions never panic and never touch I/O.
package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultCurrency is the system fallback currency code used when input omits
// one and no configuration overrides it.
const DefaultCurrency = "USD"

// coerceString extracts a trimmed string from a loosely-typed field value.
func coerceString(value any) string {
	text, _ := value.(string)
	return strings.TrimSpace(text)
}

// coerceNumber converts a loosely-typed field value to a float64.
// Non-numeric or missing values coerce to 0. String input supports a comma
// decimal separator ("1.234,56" is not handled — only "1234,56").
func coerceNumber(value any) float64 {
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(typed), ",", ".")
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// coerceBool converts a loosely-typed field value to a bool, defaulting false.
func coerceBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		return strings.EqualFold(strings.TrimSpace(typed), "true")
	default:
		return false
	}
}

// firstNonBlank returns the first non-blank string in the argument list.
func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
