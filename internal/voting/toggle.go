package voting

import "github.com/emilythestrangee/pyra/backend/internal/apperrors"

// Resolve applies a click to the voter's previous value. Clicking the
// direction already held cancels the vote; anything else switches to it.
func Resolve(previous int, d Direction) (int, error) {
	if !d.Valid() {
		return 0, apperrors.InvalidArgument("direction must be like or dislike").WithField("direction", int(d))
	}
	if err := ValidateValue(previous); err != nil {
		return 0, err
	}

	candidate := int(d)
	if candidate == previous {
		return 0, nil
	}
	return candidate, nil
}

// ValidateValue accepts -1, 0 and 1.
func ValidateValue(value int) error {
	if value < -1 || value > 1 {
		return apperrors.InvalidArgument("value must be -1, 0 or 1").WithField("value", value)
	}
	return nil
}
