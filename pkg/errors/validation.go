package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidatePointCount rejects point sets that are larger than max.
// A max of zero or less disables the check.
func ValidatePointCount(n, max int) error {
	if max > 0 && n > max {
		return New(ErrCodeInvalidPoints, "too many points: %d (max %d)", n, max)
	}
	return nil
}

// ValidateCoordinate rejects NaN and infinite coordinates. Finite values
// outside [-1,1] are accepted here; callers clamp them.
func ValidateCoordinate(index int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidPoints, "point %d has a non-finite coordinate", index)
	}
	return nil
}

// ValidateRotation checks that a rotation count lies in [0, max].
func ValidateRotation(n, max int) error {
	if n < 0 {
		return New(ErrCodeInvalidRotation, "rotation count cannot be negative: %d", n)
	}
	if n > max {
		return New(ErrCodeInvalidRotation, "rotation count %d exceeds maximum %d", n, max)
	}
	return nil
}

// ValidateUsername validates a login name.
//
// Validation rules:
//   - Name cannot be empty or only whitespace
//   - Maximum length of 64 characters
//   - No control characters
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "username cannot be empty")
	}

	const maxUsernameLength = 64
	if len(name) > maxUsernameLength {
		return New(ErrCodeInvalidInput, "username too long (max %d characters)", maxUsernameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "username contains invalid control characters")
		}
	}

	return nil
}
