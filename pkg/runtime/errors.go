package runtime

import "errors"

var (
	// ErrOutOfRange is returned when an index does not address an element.
	ErrOutOfRange = errors.New("index out of range")

	// ErrDimension is returned when shapes do not fit together.
	ErrDimension = errors.New("dimension mismatch")
)
