package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds node and edge identifiers.
const MaxIDLength = 512

// ValidateID validates a node or edge identifier coming from imported data.
//
// The rules are deliberately small:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of MaxIDLength bytes
//
// kind names the record type ("node", "edge") in the returned message.
func ValidateID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeMalformedInput, "%s id cannot be empty", kind)
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeMalformedInput, "%s id too long (max %d characters)", kind, MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeMalformedInput, "%s id %q contains control characters", kind, id)
		}
	}

	return nil
}

// ValidateOrientation accepts the two layout axes, "LR" and "TB".
// The comparison is case-insensitive; callers normalise with strings.ToUpper.
func ValidateOrientation(o string) error {
	switch strings.ToUpper(o) {
	case "LR", "TB":
		return nil
	}
	return New(ErrCodeInvalidOrientation, "orientation must be LR or TB, got %q", o)
}

// ValidatePositive reports a configuration error when v is not strictly positive.
func ValidatePositive(field string, v float64) error {
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative reports a configuration error when v is negative.
func ValidateNonNegative(field string, v float64) error {
	if v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %v", field, v)
	}
	return nil
}
