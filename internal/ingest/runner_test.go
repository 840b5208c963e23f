package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kankokujin/kankokujin-no-map/internal/adapters/osuapi"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/internal/ingest"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
)

func init() {
	_ = logger.Init()
}

type fakeAPI struct {
	mu        sync.Mutex
	users     map[string]osuapi.User
	beatmaps  map[string][]model.Beatmap
	failUsers map[string]bool
	creators  []string
	userCalls []string
	sinceByID map[string]time.Time
	onGetUser func()
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:     map[string]osuapi.User{},
		beatmaps:  map[string][]model.Beatmap{},
		failUsers: map[string]bool{},
		sinceByID: map[string]time.Time{},
	}
}

func (f *fakeAPI) GetUser(_ context.Context, id string) (osuapi.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls = append(f.userCalls, id)
	if f.onGetUser != nil {
		f.onGetUser()
	}
	if f.failUsers[id] {
		return osuapi.User{}, fmt.Errorf("%w: boom", osuapi.ErrRequest)
	}
	u, ok := f.users[id]
	if !ok {
		return osuapi.User{}, fmt.Errorf("%w: %s", osuapi.ErrUserNotFound, id)
	}
	return u, nil
}

func (f *fakeAPI) AllBeatmapsForUser(_ context.Context, id string, since time.Time) ([]model.Beatmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinceByID[id] = since
	return f.beatmaps[id], nil
}

func (f *fakeAPI) RecentCreators(context.Context, time.Time, int) ([]string, error) {
	return f.creators, nil
}

type memStore struct {
	dataset  model.Dataset
	state    model.FetchState
	saves    int
	failSave bool
}

func (m *memStore) LoadDataset(context.Context) (model.Dataset, error) { return m.dataset, nil }

func (m *memStore) SaveDataset(_ context.Context, d model.Dataset) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	m.dataset = d
	return nil
}

func (m *memStore) LoadState(context.Context) (model.FetchState, error) { return m.state, nil }

func (m *memStore) SaveState(_ context.Context, s model.FetchState) error {
	m.state = s
	return nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestRunnerFreshRun(t *testing.T) {
	Convey("Given an empty store and an API with three users", t, func() {
		api := newFakeAPI()
		api.users["1"] = osuapi.User{UserID: "1", Username: "kr-mapper", Country: "KR"}
		api.users["2"] = osuapi.User{UserID: "2", Username: "foreign", Country: "US"}
		api.users["3"] = osuapi.User{UserID: "3", Username: "allowed", Country: "JP"}
		api.beatmaps["1"] = []model.Beatmap{
			bm("10", "2023-01-01 00:00:00", "1"),
			bm("11", "2024-01-01 00:00:00", "3"),
			bm("10", "2023-01-01 00:00:00", "1"),
		}
		api.beatmaps["2"] = []model.Beatmap{bm("20", "2023-01-01 00:00:00", "1")}
		api.beatmaps["3"] = []model.Beatmap{bm("30", "2022-01-01 00:00:00", "4")}
		api.creators = []string{"1", "2", "404"}

		store := &memStore{state: model.NewFetchState()}
		gate := ingest.NewGate("KR", []string{"3"}, []string{"666"})
		r := ingest.NewRunner(api, store, gate,
			ingest.WithClock(clock),
			ingest.WithDiscovery(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 500),
			ingest.WithRunID("run-1"))

		rep, err := r.Run(context.Background())

		Convey("Then the run succeeds as a full scan", func() {
			So(err, ShouldBeNil)
			So(rep.FullScan, ShouldBeTrue)
			So(rep.RunID, ShouldEqual, "run-1")
		})

		Convey("And candidates are deduplicated with the allow list first", func() {
			So(api.userCalls, ShouldResemble, []string{"3", "1", "2", "404"})
			So(rep.Candidates, ShouldEqual, 4)
		})

		Convey("And only gated users with retained beatmaps are written", func() {
			So(store.saves, ShouldEqual, 1)
			So(store.dataset.TotalMappers, ShouldEqual, 2)
			So(store.dataset.TotalBeatmaps, ShouldEqual, 2)
			So(store.dataset.TotalBeatmapsets, ShouldEqual, 2)
			So(rep.Outcomes[ingest.OutcomeAdded], ShouldEqual, 2)
			So(rep.Outcomes[ingest.OutcomeGated], ShouldEqual, 1)
			So(rep.Outcomes[ingest.OutcomeNotFound], ShouldEqual, 1)
		})

		Convey("And duplicates and qualified maps are dropped", func() {
			var kr model.Mapper
			for _, m := range store.dataset.Mappers {
				if m.UserID == "1" {
					kr = m
				}
			}
			So(ids(kr.Beatmaps), ShouldResemble, []string{"10"})
			So(kr.RankedBeatmaps, ShouldEqual, 1)
			So(kr.LastUpdated, ShouldEqual, model.ISOTimestamp(fixedNow))
		})

		Convey("And the state records the scan", func() {
			So(store.state.LastFullScan, ShouldEqual, model.ISOTimestamp(fixedNow))
			So(store.state.LastRunID, ShouldEqual, "run-1")
			So(store.state.TotalBeatmaps, ShouldEqual, 2)
			So(store.state.MapperStates, ShouldContainKey, "1")
			So(store.state.MapperStates, ShouldNotContainKey, "2")
		})
	})
}

func TestRunnerIncremental(t *testing.T) {
	Convey("Given a prior dataset and a recent full scan", t, func() {
		lastCheck := fixedNow.Add(-24 * time.Hour)
		store := &memStore{
			dataset: model.Dataset{Mappers: []model.Mapper{{
				UserID:   "1",
				Username: "old-name",
				Country:  "KR",
				Beatmaps: []model.Beatmap{bm("10", "2023-01-01 00:00:00", "1")},
			}, {
				UserID:   "9",
				Username: "denied-now",
				Country:  "KR",
				Beatmaps: []model.Beatmap{bm("90", "2023-01-01 00:00:00", "1")},
			}}},
			state: model.FetchState{
				LastFullScan: model.ISOTimestamp(fixedNow.Add(-48 * time.Hour)),
				MapperStates: map[string]model.MapperState{
					"1": {LastBeatmapCheck: model.ISOTimestamp(lastCheck)},
				},
			},
		}
		api := newFakeAPI()
		api.users["1"] = osuapi.User{UserID: "1", Username: "new-name", Country: "KR"}
		api.beatmaps["1"] = []model.Beatmap{bm("12", "2024-05-31 00:00:00", "1")}
		gate := ingest.NewGate("KR", nil, []string{"9"})

		Convey("When running without the full flag", func() {
			rep, err := ingest.NewRunner(api, store, gate, ingest.WithClock(clock)).Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the fetch is incremental from the last check", func() {
				So(rep.FullScan, ShouldBeFalse)
				So(api.sinceByID["1"].Equal(lastCheck), ShouldBeTrue)
				So(store.state.LastFullScan, ShouldEqual, model.ISOTimestamp(fixedNow.Add(-48*time.Hour)))
			})

			Convey("And new beatmaps are merged into the existing record", func() {
				m := store.dataset.Mappers[0]
				So(ids(m.Beatmaps), ShouldResemble, []string{"12", "10"})
				So(m.RankedBeatmapsets, ShouldEqual, 2)
				So(rep.BeatmapsAdded, ShouldEqual, 1)
			})

			Convey("And the previous username becomes an alias", func() {
				m := store.dataset.Mappers[0]
				So(m.Username, ShouldEqual, "new-name")
				So(m.Aliases, ShouldResemble, []string{"old-name"})
			})

			Convey("And denied mappers are dropped without any API call", func() {
				So(len(store.dataset.Mappers), ShouldEqual, 1)
				So(api.userCalls, ShouldNotContain, "9")
				So(rep.Outcomes[ingest.OutcomeDenied], ShouldEqual, 1)
			})
		})

		Convey("When the full flag is set", func() {
			rep, err := ingest.NewRunner(api, store, gate, ingest.WithClock(clock), ingest.WithForceFull(true)).Run(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the whole history is fetched", func() {
				So(rep.FullScan, ShouldBeTrue)
				So(api.sinceByID["1"].IsZero(), ShouldBeTrue)
				So(store.state.LastFullScan, ShouldEqual, model.ISOTimestamp(fixedNow))
			})
		})

		Convey("When the last full scan is older than the interval", func() {
			store.state.LastFullScan = model.ISOTimestamp(fixedNow.Add(-8 * 24 * time.Hour))
			rep, err := ingest.NewRunner(api, store, gate, ingest.WithClock(clock)).Run(context.Background())

			Convey("Then a full scan runs", func() {
				So(err, ShouldBeNil)
				So(rep.FullScan, ShouldBeTrue)
			})
		})

		Convey("When a user lookup fails", func() {
			api.failUsers["1"] = true
			rep, err := ingest.NewRunner(api, store, gate, ingest.WithClock(clock)).Run(context.Background())

			Convey("Then the mapper keeps its prior data and the run still writes", func() {
				So(err, ShouldBeNil)
				So(rep.Outcomes[ingest.OutcomeFailed], ShouldEqual, 1)
				So(store.dataset.Mappers[0].Username, ShouldEqual, "old-name")
				So(ids(store.dataset.Mappers[0].Beatmaps), ShouldResemble, []string{"10"})
				So(store.state.MapperStates["1"].LastBeatmapCheck, ShouldEqual, model.ISOTimestamp(lastCheck))
			})
		})

		Convey("When the final write fails", func() {
			store.failSave = true
			_, err := ingest.NewRunner(api, store, gate, ingest.WithClock(clock)).Run(context.Background())

			Convey("Then a save error is returned", func() {
				So(errors.Is(err, ingest.ErrSave), ShouldBeTrue)
				So(store.saves, ShouldEqual, 0)
			})
		})

		Convey("When the context is cancelled mid-run", func() {
			ctx, cancel := context.WithCancel(context.Background())
			api.onGetUser = cancel
			_, err := ingest.NewRunner(api, store, gate, ingest.WithClock(clock)).Run(ctx)

			Convey("Then nothing is written", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(store.saves, ShouldEqual, 0)
			})
		})
	})
}
