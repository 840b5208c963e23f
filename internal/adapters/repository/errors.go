package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrDecode = errors.New("stored document could not be decoded")
	ErrWrite  = errors.New("stored document could not be written")
)
