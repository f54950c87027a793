package mosaic

import "github.com/matzehuels/reflections/pkg/errors"

// OriginalIndex maps a rendered site index back to the index of the user
// point it was duplicated from. A non-positive original count is an invariant
// violation.
func OriginalIndex(rendered, originalCount int) (int, error) {
	if originalCount <= 0 {
		return 0, errors.New(errors.ErrCodeInvariant,
			"original count must be positive, got %d", originalCount)
	}
	if rendered < 0 {
		return 0, errors.New(errors.ErrCodeInvariant,
			"rendered index must not be negative, got %d", rendered)
	}
	return rendered % originalCount, nil
}
