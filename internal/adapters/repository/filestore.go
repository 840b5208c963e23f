package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
	"github.com/kankokujin/kankokujin-no-map/pkg/metrics"
)

// FileStore keeps the dataset and the fetch state in two JSON files.
type FileStore struct {
	dataPath  string
	statePath string
	log       logger.Logger
}

var (
	_ DatasetStore = (*FileStore)(nil)
	_ StateStore   = (*FileStore)(nil)
)

// NewFileStore creates a store over dataPath and statePath.
func NewFileStore(dataPath, statePath string, opts ...Option) *FileStore {
	s := &FileStore{dataPath: dataPath, statePath: statePath}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("repository")
	}
	return s
}

// DataPath returns the dataset file path.
func (s *FileStore) DataPath() string { return s.dataPath }

// LoadDataset reads the dataset. Besides the full document it accepts a bare
// JSON array of mappers, which older data files used.
func (s *FileStore) LoadDataset(ctx context.Context) (model.Dataset, error) {
	raw, err := os.ReadFile(s.dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info(ctx, "no dataset yet", logger.String("path", s.dataPath))
		return model.Dataset{Mappers: []model.Mapper{}}, nil
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read %s: %w", s.dataPath, err)
	}
	d, err := DecodeDataset(raw)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "decode")
		return model.Dataset{}, fmt.Errorf("%s: %w", s.dataPath, err)
	}
	return d, nil
}

// DecodeDataset parses a dataset document or a bare mapper array.
func DecodeDataset(raw []byte) (model.Dataset, error) {
	trimmed := bytes.TrimSpace(raw)
	var d model.Dataset
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &d.Mappers); err != nil {
			return model.Dataset{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	} else if err := json.Unmarshal(trimmed, &d); err != nil {
		return model.Dataset{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if d.Mappers == nil {
		d.Mappers = []model.Mapper{}
	}
	return d, nil
}

// SaveDataset writes d atomically.
func (s *FileStore) SaveDataset(ctx context.Context, d model.Dataset) error {
	if d.Mappers == nil {
		d.Mappers = []model.Mapper{}
	}
	if err := writeJSONAtomic(s.dataPath, d); err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return err
	}
	s.log.Info(ctx, "dataset written",
		logger.String("path", s.dataPath),
		logger.Int("mappers", len(d.Mappers)),
		logger.Int("beatmaps", d.TotalBeatmaps))
	return nil
}

// LoadState reads the fetch state. A missing file yields an empty state.
func (s *FileStore) LoadState(ctx context.Context) (model.FetchState, error) {
	raw, err := os.ReadFile(s.statePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info(ctx, "no fetch state yet", logger.String("path", s.statePath))
		return model.NewFetchState(), nil
	}
	if err != nil {
		return model.FetchState{}, fmt.Errorf("read %s: %w", s.statePath, err)
	}
	st := model.NewFetchState()
	if err := json.Unmarshal(raw, &st); err != nil {
		metrics.RecordErrorByComponent("repository", "decode")
		return model.FetchState{}, fmt.Errorf("%s: %w: %w", s.statePath, ErrDecode, err)
	}
	if st.MapperStates == nil {
		st.MapperStates = make(map[string]model.MapperState)
	}
	return st, nil
}

// SaveState writes st atomically.
func (s *FileStore) SaveState(_ context.Context, st model.FetchState) error {
	if st.MapperStates == nil {
		st.MapperStates = make(map[string]model.MapperState)
	}
	if err := writeJSONAtomic(s.statePath, st); err != nil {
		metrics.RecordErrorByComponent("repository", "write")
		return err
	}
	return nil
}

// ModTime returns the dataset file's modification time, or the zero time
// when it cannot be read.
func (s *FileStore) ModTime() time.Time {
	fi, err := os.Stat(s.dataPath)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}

// writeJSONAtomic writes v as indented JSON to a temp file beside path and
// renames it over path, so readers see either the old or the new document.
func writeJSONAtomic(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWrite, path, err)
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
