package service

import "errors"

var (
	// ErrNotReady is returned while no dataset has been loaded.
	ErrNotReady = errors.New("catalog not loaded")
	// ErrNotFound is returned for an unknown mapper id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery is returned for a sort without a direction.
	ErrInvalidQuery = errors.New("invalid query")
)
