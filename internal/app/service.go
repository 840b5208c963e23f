// Package service provides the catalog service behind the HTTP API. It holds
// the aggregated view of the dataset in memory and answers filtered, sorted
// and paginated queries against it.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/beatmapset"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/filter"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/sorting"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/types"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
	"github.com/kankokujin/kankokujin-no-map/pkg/metrics"
)

// Default page sizes.
const (
	DefaultPageSize = 50
	DefaultMaxPage  = 500
)

// Source loads the dataset.
type Source interface {
	LoadDataset(ctx context.Context) (model.Dataset, error)
}

// Snapshot is one immutable aggregation of a loaded dataset. Reloads build
// a new snapshot and swap it in whole.
type Snapshot struct {
	LastUpdated string
	LoadedAt    time.Time
	Profiles    []model.Profile
	Beatmapsets []model.Beatmapset
	byID        map[string]int
}

// NewSnapshot aggregates d.
func NewSnapshot(d model.Dataset, loadedAt time.Time) *Snapshot { //nolint:gocritic // hugeParam: the dataset is only read
	snap := &Snapshot{
		LastUpdated: d.LastUpdated,
		LoadedAt:    loadedAt,
		Profiles:    beatmapset.ProcessMappers(d.Mappers),
		Beatmapsets: beatmapset.AllFromMappers(d.Mappers),
		byID:        make(map[string]int, len(d.Mappers)),
	}
	for i := range snap.Profiles {
		snap.byID[snap.Profiles[i].UserID] = i
	}
	return snap
}

// TotalBeatmaps counts every beatmap in the snapshot.
func (s *Snapshot) TotalBeatmaps() int {
	n := 0
	for i := range s.Profiles {
		n += len(s.Profiles[i].Beatmaps)
	}
	return n
}

// Service answers catalog queries from the current snapshot.
type Service struct {
	mu   sync.RWMutex
	snap *Snapshot

	source          Source
	collator        *sorting.Collator
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCollator sets the collator used for text sorts.
func WithCollator(c *sorting.Collator) Option {
	return func(s *Service) {
		if c != nil {
			s.collator = c
		}
	}
}

// WithPageSizes sets the default and maximum page sizes.
func WithPageSizes(def, maxSize int) Option {
	return func(s *Service) {
		if def > 0 && maxSize >= def {
			s.defaultPageSize = def
			s.maxPageSize = maxSize
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service reading from source.
func New(source Source, opts ...Option) *Service {
	s := &Service{
		source:          source,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     DefaultMaxPage,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("catalog")
	}
	if s.collator == nil {
		s.collator = sorting.NewCollator(sorting.DefaultLocale)
	}
	return s
}

// Start performs the initial load.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "loading catalog...")
	return s.Reload(ctx)
}

// Reload loads the dataset again and swaps in a new snapshot. On failure the
// previous snapshot stays in place.
func (s *Service) Reload(ctx context.Context) error {
	d, err := s.source.LoadDataset(ctx)
	now := s.now()
	if err != nil {
		metrics.RecordCatalogReload(false, now.Unix())
		metrics.RecordErrorByComponent("catalog", "load")
		s.logger.Error(ctx, "catalog load failed", logger.Error(err))
		return fmt.Errorf("load dataset: %w", err)
	}

	snap := NewSnapshot(d, now)
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	metrics.RecordCatalogReload(true, now.Unix())
	metrics.UpdateCatalogTotals(len(snap.Profiles), snap.TotalBeatmaps(), len(snap.Beatmapsets))
	s.logger.Info(ctx, "catalog loaded",
		logger.Int("mappers", len(snap.Profiles)),
		logger.Int("beatmapsets", len(snap.Beatmapsets)),
		logger.String("lastUpdated", snap.LastUpdated),
	)
	return nil
}

// Snapshot returns the current snapshot or ErrNotReady.
func (s *Service) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNotReady
	}
	return s.snap, nil
}

// Ready reports whether a dataset has been loaded.
func (s *Service) Ready() bool {
	_, err := s.Snapshot()
	return err == nil
}

// BeatmapsetQuery selects a page of beatmapsets. An empty Sort keeps the
// catalog order; a non-empty Sort needs a Direction.
type BeatmapsetQuery struct {
	Criteria  filter.Criteria
	Sort      sorting.Key
	Direction sorting.Direction
	Page      int
	PageSize  int
}

// MapperQuery selects a page of mappers.
type MapperQuery struct {
	Criteria  filter.Criteria
	Sort      sorting.MapperKey
	Direction sorting.Direction
	Page      int
	PageSize  int
}

// Beatmapsets filters, sorts and paginates the catalog-wide beatmapsets.
func (s *Service) Beatmapsets(ctx context.Context, q BeatmapsetQuery) (types.Page[model.Beatmapset], error) { //nolint:gocritic // hugeParam: query is a value
	snap, err := s.Snapshot()
	if err != nil {
		return types.Page[model.Beatmapset]{}, err
	}
	if q.Sort != "" && q.Direction == 0 {
		return types.Page[model.Beatmapset]{}, fmt.Errorf("%w: sort %q needs a direction", ErrInvalidQuery, q.Sort)
	}

	sets := filter.Beatmapsets(snap.Beatmapsets, q.Criteria)
	if q.Sort != "" {
		sets = sorting.Beatmapsets(sets, q.Sort, q.Direction, s.collator)
	}
	page := types.Paginate(sets, q.Page, s.pageSize(q.PageSize))
	metrics.RecordCatalogQuery("beatmapsets", page.Total == 0)
	s.logger.Debug(ctx, "beatmapset query",
		logger.String("search", q.Criteria.Search),
		logger.Int("total", page.Total))
	return page, nil
}

// Mappers filters, sorts and paginates the mappers.
func (s *Service) Mappers(ctx context.Context, q MapperQuery) (types.Page[types.MapperEntry], error) { //nolint:gocritic // hugeParam: query is a value
	snap, err := s.Snapshot()
	if err != nil {
		return types.Page[types.MapperEntry]{}, err
	}
	if q.Sort != "" && q.Direction == 0 {
		return types.Page[types.MapperEntry]{}, fmt.Errorf("%w: sort %q needs a direction", ErrInvalidQuery, q.Sort)
	}

	profiles := filter.Mappers(snap.Profiles, q.Criteria)
	if q.Sort != "" {
		profiles = sorting.Mappers(profiles, q.Sort, q.Direction, q.Criteria, s.collator)
	}
	page := types.Paginate(profiles, q.Page, s.pageSize(q.PageSize))

	out := types.Page[types.MapperEntry]{
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Pages:    page.Pages,
		Items:    make([]types.MapperEntry, 0, len(page.Items)),
	}
	now := s.now()
	for i := range page.Items {
		out.Items = append(out.Items, entry(&page.Items[i], q.Criteria, now))
	}
	metrics.RecordCatalogQuery("mappers", out.Total == 0)
	s.logger.Debug(ctx, "mapper query",
		logger.String("search", q.Criteria.Search),
		logger.Int("total", out.Total))
	return out, nil
}

// Mapper returns one mapper by user id, viewed under criteria.
func (s *Service) Mapper(_ context.Context, userID string, criteria filter.Criteria) (types.MapperEntry, error) { //nolint:gocritic // hugeParam: criteria is a value
	snap, err := s.Snapshot()
	if err != nil {
		return types.MapperEntry{}, err
	}
	i, ok := snap.byID[userID]
	if !ok {
		return types.MapperEntry{}, fmt.Errorf("%w: mapper %s", ErrNotFound, userID)
	}
	return entry(&snap.Profiles[i], criteria, s.now()), nil
}

// Stats returns the catalog totals.
func (s *Service) Stats() types.Stats {
	snap, err := s.Snapshot()
	if err != nil {
		return types.Stats{}
	}
	return types.Stats{
		LastUpdated:      snap.LastUpdated,
		LoadedAt:         model.ISOTimestamp(snap.LoadedAt),
		TotalMappers:     len(snap.Profiles),
		TotalBeatmaps:    snap.TotalBeatmaps(),
		TotalBeatmapsets: len(snap.Beatmapsets),
		Ready:            true,
	}
}

// FilteredStats counts mappers, beatmaps and beatmapsets in modes. An empty
// modes set counts everything.
func (s *Service) FilteredStats(modes model.CodeSet) (beatmapset.FilteredStats, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return beatmapset.FilteredStats{}, err
	}
	mappers := make([]model.Mapper, len(snap.Profiles))
	for i := range snap.Profiles {
		mappers[i] = snap.Profiles[i].Mapper
	}
	return beatmapset.Stats(mappers, modes), nil
}

func (s *Service) pageSize(n int) int {
	if n <= 0 {
		return s.defaultPageSize
	}
	return min(n, s.maxPageSize)
}

func entry(p *model.Profile, c filter.Criteria, now time.Time) types.MapperEntry { //nolint:gocritic // hugeParam: criteria is a value
	return types.MapperEntry{
		UserID:               p.UserID,
		Username:             p.Username,
		Aliases:              p.Aliases,
		Country:              p.Country,
		Counters:             p.Counters,
		FilteredBeatmaps:     filter.BeatmapCount(p, c),
		FilteredBeatmapsets:  filter.BeatmapsetCount(p, c),
		MostRecentRankedDate: filter.MostRecentRankedDate(p, c),
		RecentlyRanked:       sorting.HasRecentRankedMap(p, c, now),
		Beatmapsets:          filter.Beatmapsets(p.Beatmapsets, filter.Criteria{Modes: c.Modes, Statuses: c.Statuses}),
		LastUpdated:          p.LastUpdated,
	}
}
