package sorting

import "errors"

var (
	ErrUnknownKey       = errors.New("unknown sort key")
	ErrUnknownDirection = errors.New("unknown sort direction")
)
