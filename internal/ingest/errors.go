package ingest

import "errors"

var (
	// ErrLoadPrior is returned when the previous dataset or fetch state
	// cannot be read. Nothing is written in that case.
	ErrLoadPrior = errors.New("failed to load previous run output")
	// ErrSave is returned when the final write fails.
	ErrSave = errors.New("failed to save run output")
)
