// Package repository persists the consolidated mapper document and the
// incremental-fetch state as JSON files.
package repository

import (
	"context"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

// DatasetStore reads and writes the consolidated mapper document.
type DatasetStore interface {
	// LoadDataset returns the stored document. A missing file yields an
	// empty dataset and no error.
	LoadDataset(ctx context.Context) (model.Dataset, error)
	// SaveDataset replaces the stored document atomically.
	SaveDataset(ctx context.Context, d model.Dataset) error
}

// StateStore reads and writes the incremental-fetch bookkeeping.
type StateStore interface {
	LoadState(ctx context.Context) (model.FetchState, error)
	SaveState(ctx context.Context, s model.FetchState) error
}
