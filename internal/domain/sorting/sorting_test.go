package sorting_test

import (
	"errors"
	"testing"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/beatmapset"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/filter"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/sorting"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"
)

func ids(sets []model.Beatmapset) []string {
	out := make([]string, len(sets))
	for i := range sets {
		out[i] = sets[i].BeatmapsetID
	}
	return out
}

func names(profiles []model.Profile) []string {
	out := make([]string, len(profiles))
	for i := range profiles {
		out[i] = profiles[i].Username
	}
	return out
}

func TestParse(t *testing.T) {
	Convey("Given user supplied sort parameters", t, func() {
		Convey("Then known keys and directions parse", func() {
			k, err := sorting.ParseKey("Playcount")
			So(err, ShouldBeNil)
			So(k, ShouldEqual, sorting.KeyPlaycount)

			mk, err := sorting.ParseMapperKey("recent")
			So(err, ShouldBeNil)
			So(mk, ShouldEqual, sorting.MapperKeyRecent)

			d, err := sorting.ParseDirection("desc")
			So(err, ShouldBeNil)
			So(d, ShouldEqual, sorting.Descending)
			So(d.String(), ShouldEqual, "desc")
		})

		Convey("Then unknown values are rejected", func() {
			_, err := sorting.ParseKey("stars")
			So(errors.Is(err, sorting.ErrUnknownKey), ShouldBeTrue)

			_, err = sorting.ParseMapperKey("date")
			So(errors.Is(err, sorting.ErrUnknownKey), ShouldBeTrue)

			_, err = sorting.ParseDirection("")
			So(errors.Is(err, sorting.ErrUnknownDirection), ShouldBeTrue)
		})
	})
}

func TestBeatmapsetsText(t *testing.T) {
	Convey("Given titles in mixed case and scripts", t, func() {
		sets := []model.Beatmapset{
			{BeatmapsetID: "z", Title: "Zebra"},
			{BeatmapsetID: "a", Title: "apple"},
		}

		Convey("When sorting by title ascending with a locale-aware collator", func() {
			got := sorting.Beatmapsets(sets, sorting.KeyTitle, sorting.Ascending, sorting.NewCollator(language.Und))

			Convey("Then case does not push lowercase after uppercase", func() {
				So(ids(got), ShouldResemble, []string{"a", "z"})
			})

			Convey("And the input is untouched", func() {
				So(ids(sets), ShouldResemble, []string{"z", "a"})
			})
		})

		Convey("When Hangul titles are sorted with the default collator", func() {
			hangul := []model.Beatmapset{
				{BeatmapsetID: "3", Title: "하늘"},
				{BeatmapsetID: "1", Title: "가나"},
				{BeatmapsetID: "2", Title: "나비"},
			}
			got := sorting.Beatmapsets(hangul, sorting.KeyTitle, sorting.Ascending, nil)

			Convey("Then they follow syllable order", func() {
				So(ids(got), ShouldResemble, []string{"1", "2", "3"})
			})
		})

		Convey("When sorting by artist descending", func() {
			artists := []model.Beatmapset{
				{BeatmapsetID: "1", Artist: "Camellia"},
				{BeatmapsetID: "2", Artist: "xi"},
				{BeatmapsetID: "3", Artist: "DragonForce"},
			}
			got := sorting.Beatmapsets(artists, sorting.KeyArtist, sorting.Descending, nil)

			Convey("Then the ascending order is reversed", func() {
				So(ids(got), ShouldResemble, []string{"2", "3", "1"})
			})
		})
	})
}

func TestBeatmapsetsNumericAndDate(t *testing.T) {
	Convey("Given sets with counts and dates", t, func() {
		sets := []model.Beatmapset{
			{BeatmapsetID: "old", ApprovedDate: "2015-03-01 10:00:00", Playcount: 10, FavouriteCount: 300},
			{BeatmapsetID: "new", ApprovedDate: "2024-03-01 10:00:00", Playcount: 5000, FavouriteCount: 2},
			{BeatmapsetID: "bad", ApprovedDate: "not a date", Playcount: 0, FavouriteCount: 40},
		}

		Convey("When sorting by date descending", func() {
			got := sorting.Beatmapsets(sets, sorting.KeyDate, sorting.Descending, nil)

			Convey("Then newest first and unparseable dates last", func() {
				So(ids(got), ShouldResemble, []string{"new", "old", "bad"})
			})
		})

		Convey("When sorting by date ascending", func() {
			got := sorting.Beatmapsets(sets, sorting.KeyDate, sorting.Ascending, nil)
			So(ids(got), ShouldResemble, []string{"bad", "old", "new"})
		})

		Convey("When sorting by play count", func() {
			desc := sorting.Beatmapsets(sets, sorting.KeyPlaycount, sorting.Descending, nil)
			asc := sorting.Beatmapsets(sets, sorting.KeyPlaycount, sorting.Ascending, nil)

			Convey("Then both directions order numerically", func() {
				So(ids(desc), ShouldResemble, []string{"new", "old", "bad"})
				So(ids(asc), ShouldResemble, []string{"bad", "old", "new"})
			})
		})

		Convey("When sorting by favourites descending", func() {
			got := sorting.Beatmapsets(sets, sorting.KeyFavorite, sorting.Descending, nil)
			So(ids(got), ShouldResemble, []string{"old", "bad", "new"})
		})

		Convey("When sorting nothing", func() {
			So(sorting.Beatmapsets(nil, sorting.KeyDate, sorting.Ascending, nil), ShouldBeEmpty)
		})
	})
}

func mapper(id, name string, beatmaps ...model.Beatmap) model.Profile {
	return beatmapset.ProcessMapper(model.Mapper{UserID: id, Username: name, Beatmaps: beatmaps})
}

func beatmap(set, id, mode, date string) model.Beatmap {
	return model.Beatmap{
		BeatmapID:    id,
		BeatmapsetID: set,
		Mode:         mode,
		Approved:     model.StatusRanked,
		ApprovedDate: date,
	}
}

func TestMappers(t *testing.T) {
	Convey("Given three mappers", t, func() {
		busy := mapper("1", "busy",
			beatmap("1", "1", model.ModeStandard, "2020-01-01 00:00:00"),
			beatmap("1", "2", model.ModeStandard, "2020-01-01 00:00:00"),
			beatmap("1", "3", model.ModeStandard, "2020-01-01 00:00:00"),
		)
		sets := mapper("2", "Sets",
			beatmap("2", "4", model.ModeStandard, "2021-01-01 00:00:00"),
			beatmap("3", "5", model.ModeStandard, "2022-01-01 00:00:00"),
		)
		mania := mapper("3", "Ann",
			beatmap("4", "6", model.ModeMania, "2025-01-01 00:00:00"),
		)
		profiles := []model.Profile{busy, sets, mania}
		all := filter.All()

		Convey("When sorting by name ascending", func() {
			got := sorting.Mappers(profiles, sorting.MapperKeyName, sorting.Ascending, all, nil)
			So(names(got), ShouldResemble, []string{"Ann", "busy", "Sets"})
		})

		Convey("When sorting by beatmaps descending", func() {
			got := sorting.Mappers(profiles, sorting.MapperKeyBeatmaps, sorting.Descending, all, nil)
			So(names(got), ShouldResemble, []string{"busy", "Sets", "Ann"})
		})

		Convey("When sorting by mapsets descending", func() {
			got := sorting.Mappers(profiles, sorting.MapperKeyMapsets, sorting.Descending, all, nil)
			So(got[0].Username, ShouldEqual, "Sets")
		})

		Convey("When sorting by recency descending", func() {
			got := sorting.Mappers(profiles, sorting.MapperKeyRecent, sorting.Descending, all, nil)
			So(names(got), ShouldResemble, []string{"Ann", "Sets", "busy"})

			Convey("Then the selection changes the figure used", func() {
				standardOnly := all.ToggleMode(model.ModeMania)
				got := sorting.Mappers(profiles, sorting.MapperKeyRecent, sorting.Descending, standardOnly, nil)
				So(names(got), ShouldResemble, []string{"Sets", "busy", "Ann"})
			})
		})
	})
}

func TestHasRecentRankedMap(t *testing.T) {
	Convey("Given a mapper whose latest set was approved on 2025-03-10", t, func() {
		p := mapper("1", "x", beatmap("1", "1", model.ModeStandard, "2025-03-10 00:00:00"))

		Convey("Then it is recent three weeks later", func() {
			now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
			So(sorting.HasRecentRankedMap(&p, filter.All(), now), ShouldBeTrue)
		})

		Convey("Then it is not recent two months later", func() {
			now := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
			So(sorting.HasRecentRankedMap(&p, filter.All(), now), ShouldBeFalse)
		})

		Convey("Then nothing is recent when the selection excludes it", func() {
			now := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
			c := filter.All().ToggleMode(model.ModeStandard)
			So(sorting.HasRecentRankedMap(&p, c, now), ShouldBeFalse)
		})
	})
}
