package ingest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kankokujin/kankokujin-no-map/internal/adapters/osuapi"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/beatmapset"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/dedupe"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
	"github.com/kankokujin/kankokujin-no-map/pkg/metrics"
)

// API is the subset of the osu! client the runner calls.
type API interface {
	GetUser(ctx context.Context, userID string) (osuapi.User, error)
	AllBeatmapsForUser(ctx context.Context, userID string, since time.Time) ([]model.Beatmap, error)
	RecentCreators(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// Store persists the dataset and the fetch state.
type Store interface {
	LoadDataset(ctx context.Context) (model.Dataset, error)
	SaveDataset(ctx context.Context, d model.Dataset) error
	LoadState(ctx context.Context) (model.FetchState, error)
	SaveState(ctx context.Context, s model.FetchState) error
}

// Per-mapper outcomes, also used as metric labels.
const (
	OutcomeAdded     = "added"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeDenied    = "denied"
	OutcomeGated     = "gated"
	OutcomeNotFound  = "not_found"
	OutcomeEmpty     = "no_beatmaps"
	OutcomeFailed    = "failed"
)

// Report summarizes one run.
type Report struct {
	RunID         string
	FullScan      bool
	Candidates    int
	Outcomes      map[string]int
	BeatmapsAdded int
	TotalMappers  int
	TotalBeatmaps int
	Duration      time.Duration
}

// Runner performs one ingestion run: it refreshes every candidate mapper
// sequentially and writes the dataset and fetch state once at the end.
type Runner struct {
	api   API
	store Store
	gate  Gate
	log   logger.Logger
	now   func() time.Time

	fullScanInterval time.Duration
	forceFull        bool
	discoverSince    time.Time
	discoverLimit    int
	runID            string
}

// NewRunner creates a runner.
func NewRunner(api API, store Store, gate Gate, opts ...Option) *Runner {
	r := &Runner{
		api:              api,
		store:            store,
		gate:             gate,
		now:              time.Now,
		fullScanInterval: DefaultFullScanInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get().Named("ingest")
	}
	return r
}

// run holds the mutable state of a single Run call.
type run struct {
	mappers []model.Mapper
	index   map[string]int
	state   model.FetchState
	full    bool
	stamp   string
	report  *Report
}

// Run executes the ingestion. When ctx is cancelled before the final write,
// nothing is written and ctx.Err() is returned.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := r.now()
	runID := r.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := r.log.With(logger.String("run_id", runID))
	rep := Report{RunID: runID, Outcomes: make(map[string]int)}

	prior, err := r.store.LoadDataset(ctx)
	if err != nil {
		r.finish(&rep, start, "error")
		return rep, fmt.Errorf("%w: %w", ErrLoadPrior, err)
	}
	state, err := r.store.LoadState(ctx)
	if err != nil {
		r.finish(&rep, start, "error")
		return rep, fmt.Errorf("%w: %w", ErrLoadPrior, err)
	}
	if state.MapperStates == nil {
		state.MapperStates = make(map[string]model.MapperState)
	}

	st := &run{
		mappers: slices.Clone(prior.Mappers),
		index:   make(map[string]int, len(prior.Mappers)),
		state:   state,
		full:    r.forceFull || needsFullScan(state.LastFullScan, start, r.fullScanInterval),
		stamp:   model.ISOTimestamp(start),
		report:  &rep,
	}
	for i := range st.mappers {
		st.index[st.mappers[i].UserID] = i
	}
	rep.FullScan = st.full

	candidates := r.candidates(ctx, st.mappers)
	rep.Candidates = len(candidates)
	log.Info(ctx, "ingestion started",
		logger.Bool("full_scan", st.full),
		logger.Int("candidates", len(candidates)),
		logger.Int("known_mappers", len(st.mappers)))

	for _, id := range candidates {
		if err := ctx.Err(); err != nil {
			log.Warn(ctx, "ingestion aborted, nothing written", logger.Error(err))
			r.finish(&rep, start, "aborted")
			return rep, err
		}
		outcome := r.refresh(ctx, log, st, id)
		rep.Outcomes[outcome]++
		metrics.RecordIngestMapper(outcome)
	}
	if err := ctx.Err(); err != nil {
		r.finish(&rep, start, "aborted")
		return rep, err
	}

	if err := r.save(ctx, st); err != nil {
		r.finish(&rep, start, "error")
		return rep, err
	}

	r.finish(&rep, start, "success")
	log.Info(ctx, "ingestion finished",
		logger.Int("mappers", rep.TotalMappers),
		logger.Int("beatmaps", rep.TotalBeatmaps),
		logger.Int("beatmaps_added", rep.BeatmapsAdded),
		logger.Int("failed", rep.Outcomes[OutcomeFailed]),
		logger.Duration("took", rep.Duration))
	return rep, nil
}

// candidates lists the allow list, the known mappers and the discovered
// creators, each id once, in that order.
func (r *Runner) candidates(ctx context.Context, known []model.Mapper) []string {
	seen := dedupe.NewInMemoryDeduper()
	allow := r.gate.AllowList()
	out := make([]string, 0, len(allow)+len(known))
	add := func(id string) {
		if id == "" || seen.SeenAndRecord(ctx, id) {
			return
		}
		out = append(out, id)
	}

	for _, id := range allow {
		add(id)
	}
	for i := range known {
		add(known[i].UserID)
	}

	if r.discoverLimit > 0 {
		found, err := r.api.RecentCreators(ctx, r.discoverSince, r.discoverLimit)
		if err != nil {
			r.log.Warn(ctx, "recent creator probe failed", logger.Error(err))
			metrics.RecordErrorByComponent("ingest", "discover")
		}
		for _, id := range found {
			add(id)
		}
	}
	return out
}

// refresh updates one mapper in st and returns the outcome. Failures leave
// the mapper's prior record untouched.
func (r *Runner) refresh(ctx context.Context, log logger.Logger, st *run, id string) string {
	log = log.With(logger.String("user_id", id))
	if r.gate.Denied(id) {
		log.Debug(ctx, "mapper denied")
		return OutcomeDenied
	}

	user, err := r.api.GetUser(ctx, id)
	if errors.Is(err, osuapi.ErrUserNotFound) {
		log.Info(ctx, "user not found")
		return OutcomeNotFound
	}
	if err != nil {
		log.Warn(ctx, "user lookup failed", logger.Error(err))
		metrics.RecordErrorByComponent("ingest", "user")
		return OutcomeFailed
	}
	if !r.gate.Include(id, user.Country) {
		log.Debug(ctx, "mapper outside catalog", logger.String("country", user.Country))
		return OutcomeGated
	}

	pos, known := st.index[id]
	var since time.Time
	if known && !st.full {
		if ms, ok := st.state.MapperStates[id]; ok {
			since, _ = model.ParseDate(ms.LastBeatmapCheck)
		}
	}

	fetched, err := r.api.AllBeatmapsForUser(ctx, id, since)
	if err != nil {
		log.Warn(ctx, "beatmap fetch failed", logger.Error(err))
		metrics.RecordErrorByComponent("ingest", "beatmaps")
		return OutcomeFailed
	}
	retained := Retained(fetched)

	if !known {
		if len(retained) == 0 {
			log.Debug(ctx, "no ranked beatmaps", logger.String("username", user.Username))
			return OutcomeEmpty
		}
		merged, added := MergeBeatmaps(nil, retained)
		st.mappers = append(st.mappers, model.Mapper{
			UserID:      id,
			Username:    user.Username,
			Country:     user.Country,
			Counters:    beatmapset.Summarize(merged),
			Beatmaps:    merged,
			LastUpdated: st.stamp,
		})
		st.index[id] = len(st.mappers) - 1
		st.state.MapperStates[id] = model.MapperState{LastBeatmapCheck: st.stamp}
		st.report.BeatmapsAdded += added
		log.Info(ctx, "mapper added", logger.String("username", user.Username), logger.Int("beatmaps", added))
		return OutcomeAdded
	}

	m := &st.mappers[pos]
	recordRename(m, user.Username)
	if user.Country != "" {
		m.Country = user.Country
	}
	merged, added := MergeBeatmaps(m.Beatmaps, retained)
	m.Beatmaps = merged
	m.Counters = beatmapset.Summarize(merged)
	st.state.MapperStates[id] = model.MapperState{LastBeatmapCheck: st.stamp}
	if added == 0 {
		return OutcomeUnchanged
	}
	m.LastUpdated = st.stamp
	st.report.BeatmapsAdded += added
	log.Info(ctx, "mapper updated", logger.String("username", m.Username), logger.Int("beatmaps_added", added))
	return OutcomeUpdated
}

// recordRename applies a username change, keeping the previous name as an
// alias.
func recordRename(m *model.Mapper, username string) {
	if username == "" || username == m.Username {
		return
	}
	if m.Username != "" && !slices.Contains(m.Aliases, m.Username) {
		m.Aliases = append(m.Aliases, m.Username)
	}
	m.Aliases = slices.DeleteFunc(m.Aliases, func(a string) bool { return a == username })
	m.Username = username
}

// save drops denied mappers, recomputes the totals and writes the dataset
// and then the state.
func (r *Runner) save(ctx context.Context, st *run) error {
	st.mappers = slices.DeleteFunc(st.mappers, func(m model.Mapper) bool {
		if r.gate.Denied(m.UserID) {
			delete(st.state.MapperStates, m.UserID)
			return true
		}
		return false
	})

	total := 0
	for i := range st.mappers {
		total += len(st.mappers[i].Beatmaps)
	}
	sets := len(beatmapset.AllFromMappers(st.mappers))

	d := model.Dataset{
		LastUpdated:      st.stamp,
		TotalMappers:     len(st.mappers),
		TotalBeatmaps:    total,
		TotalBeatmapsets: sets,
		Mappers:          st.mappers,
	}
	st.state.LastChecked = st.stamp
	st.state.LastRunID = st.report.RunID
	st.state.TotalBeatmaps = total
	if st.full {
		st.state.LastFullScan = st.stamp
	}

	if err := r.store.SaveDataset(ctx, d); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := r.store.SaveState(ctx, st.state); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	metrics.RecordBeatmapsAdded(st.report.BeatmapsAdded)
	st.report.TotalMappers = d.TotalMappers
	st.report.TotalBeatmaps = d.TotalBeatmaps
	return nil
}

func (r *Runner) finish(rep *Report, start time.Time, outcome string) {
	rep.Duration = r.now().Sub(start)
	scan := "incremental"
	if rep.FullScan {
		scan = "full"
	}
	metrics.RecordIngestRun(scan, outcome, rep.Duration.Seconds())
}

// needsFullScan reports whether the last full scan is missing, unreadable or
// older than interval.
func needsFullScan(last string, now time.Time, interval time.Duration) bool {
	t, ok := model.ParseDate(last)
	if !ok {
		return true
	}
	return now.Sub(t) > interval
}
