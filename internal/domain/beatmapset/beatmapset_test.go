package beatmapset_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/beatmapset"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func bm(set, id, mode, approved, playcount string) model.Beatmap {
	return model.Beatmap{
		BeatmapID:      id,
		BeatmapsetID:   set,
		Title:          "T" + set,
		Artist:         "A" + set,
		Creator:        "C",
		Version:        "v" + id,
		ApprovedDate:   "2024-01-01 00:00:00",
		Playcount:      playcount,
		FavouriteCount: "5",
		Approved:       approved,
		Mode:           mode,
	}
}

func TestConstruct(t *testing.T) {
	Convey("Given the two-difficulty scenario for set 42", t, func() {
		in := []model.Beatmap{
			{BeatmapsetID: "42", BeatmapID: "1", Mode: "0", Approved: "1", Playcount: "100", FavouriteCount: "5", Title: "T", Artist: "A", Creator: "C", ApprovedDate: "2024-01-01"},
			{BeatmapsetID: "42", BeatmapID: "2", Mode: "1", Approved: "1", Playcount: "50", FavouriteCount: "5", Title: "T", Artist: "A", Creator: "C", ApprovedDate: "2024-01-01"},
		}

		Convey("When constructing beatmapsets", func() {
			sets := beatmapset.Construct(in)

			Convey("Then exactly one aggregate holds both difficulties", func() {
				So(sets, ShouldHaveLength, 1)
				So(sets[0].BeatmapsetID, ShouldEqual, "42")
				So(sets[0].Modes, ShouldResemble, []string{"0", "1"})
				So(sets[0].Playcount, ShouldEqual, 150)
				So(sets[0].FavouriteCount, ShouldEqual, 5)
				So(sets[0].Difficulties, ShouldHaveLength, 2)
				So(sets[0].Difficulties[0].BeatmapID, ShouldEqual, "1")
				So(sets[0].Difficulties[1].BeatmapID, ShouldEqual, "2")
			})
		})
	})

	Convey("Given play counts with an empty value", t, func() {
		in := []model.Beatmap{
			bm("100", "1", "0", "1", "10"),
			bm("100", "2", "0", "1", "0"),
			bm("100", "3", "0", "1", ""),
		}

		Convey("Then the set play count is the sum of the parsed member counts", func() {
			sets := beatmapset.Construct(in)
			So(sets, ShouldHaveLength, 1)
			So(sets[0].Playcount, ShouldEqual, 10)

			var sum int64
			for _, d := range sets[0].Difficulties {
				sum += model.ParseCount(d.Playcount)
			}
			So(sets[0].Playcount, ShouldEqual, sum)
		})
	})

	Convey("Given members with modes 0, 0, 1", t, func() {
		in := []model.Beatmap{
			bm("7", "1", "0", "1", "1"),
			bm("7", "2", "0", "1", "1"),
			bm("7", "3", "1", "1", "1"),
		}

		Convey("Then the mode list is the distinct union in first-seen order", func() {
			sets := beatmapset.Construct(in)
			So(sets[0].Modes, ShouldResemble, []string{"0", "1"})
		})
	})

	Convey("Given a member without a mode next to a standard one", t, func() {
		in := []model.Beatmap{
			bm("42", "1", "0", "1", "1"),
			bm("42", "2", "", "1", "1"),
			bm("42", "3", "1", "1", "1"),
		}

		Convey("Then the missing mode counts as standard", func() {
			sets := beatmapset.Construct(in)
			So(sets[0].Modes, ShouldResemble, []string{"0", "1"})
			So(sets[0].Difficulties[1].Mode, ShouldEqual, model.ModeStandard)
		})
	})

	Convey("Given interleaved sets", t, func() {
		first := bm("2", "10", "3", "4", "1")
		first.Title = "first seen"
		later := bm("2", "12", "3", "1", "1")
		later.Title = "later"
		in := []model.Beatmap{first, bm("1", "11", "0", "1", "1"), later}

		sets := beatmapset.Construct(in)

		Convey("Then output follows first-seen order of set ids", func() {
			So(sets, ShouldHaveLength, 2)
			So(sets[0].BeatmapsetID, ShouldEqual, "2")
			So(sets[1].BeatmapsetID, ShouldEqual, "1")
		})

		Convey("And the first record supplies the representative fields", func() {
			So(sets[0].Title, ShouldEqual, "first seen")
			So(sets[0].Approved, ShouldEqual, "4")
		})
	})

	Convey("Given no beatmaps", t, func() {
		sets := beatmapset.Construct(nil)

		Convey("Then no set is materialized", func() {
			So(sets, ShouldNotBeNil)
			So(sets, ShouldBeEmpty)
		})
	})
}

func TestConstructIdempotence(t *testing.T) {
	Convey("Given a mixed input", t, func() {
		in := []model.Beatmap{
			bm("1", "1", "0", "1", "10"),
			bm("2", "2", "3", "4", "x"),
			bm("1", "3", "2", "1", ""),
			bm("3", "4", "1", "2", "999"),
			bm("2", "5", "3", "4", "1"),
		}
		snapshot := make([]model.Beatmap, len(in))
		copy(snapshot, in)

		Convey("When constructing twice", func() {
			a := beatmapset.Construct(in)
			b := beatmapset.Construct(in)

			Convey("Then both outputs are identical field for field", func() {
				So(cmp.Diff(a, b), ShouldBeEmpty)
			})

			Convey("And the input is not mutated", func() {
				So(cmp.Diff(snapshot, in), ShouldBeEmpty)
			})

			Convey("And every set has members and conserves play count", func() {
				for _, s := range a {
					So(s.Difficulties, ShouldNotBeEmpty)
					var sum int64
					for _, d := range s.Difficulties {
						sum += model.ParseCount(d.Playcount)
					}
					So(s.Playcount, ShouldEqual, sum)
				}
			})
		})
	})
}

func TestAllFromMappers(t *testing.T) {
	Convey("Given two mappers sharing a set", t, func() {
		mappers := []model.Mapper{
			{UserID: "1", Beatmaps: []model.Beatmap{bm("9", "1", "0", "1", "3")}},
			{UserID: "2", Beatmaps: []model.Beatmap{bm("9", "2", "1", "1", "4"), bm("8", "3", "0", "1", "1")}},
		}

		Convey("Then the global list merges the shared set", func() {
			sets := beatmapset.AllFromMappers(mappers)
			So(sets, ShouldHaveLength, 2)
			So(sets[0].BeatmapsetID, ShouldEqual, "9")
			So(sets[0].Playcount, ShouldEqual, 7)
			So(sets[0].Modes, ShouldResemble, []string{"0", "1"})
		})
	})
}

func TestProcessMapper(t *testing.T) {
	Convey("Given a mapper with ranked, loved and approved beatmaps", t, func() {
		ranked := bm("1", "1", "0", "1", "1")
		ranked.ApprovedDate = "2023-05-01 00:00:00"
		loved := bm("2", "2", "0", "4", "1")
		loved.ApprovedDate = "2024-02-01 00:00:00"
		approved := bm("3", "3", "0", "2", "1")
		approved.ApprovedDate = "2025-01-01 00:00:00"

		m := model.Mapper{UserID: "5", Username: "x", Beatmaps: []model.Beatmap{ranked, loved, approved}}

		Convey("When processing", func() {
			p := beatmapset.ProcessMapper(m)

			Convey("Then beatmapsets are derived", func() {
				So(p.Beatmapsets, ShouldHaveLength, 3)
			})

			Convey("And the most recent ranked date only considers ranked and loved", func() {
				So(p.MostRecentRankedDate, ShouldEqual, "2024-02-01 00:00:00")
			})

			Convey("And aliases are never nil", func() {
				So(p.Aliases, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a mapper without beatmaps", t, func() {
		p := beatmapset.ProcessMapper(model.Mapper{UserID: "6"})
		So(p.Beatmapsets, ShouldBeEmpty)
		So(p.MostRecentRankedDate, ShouldEqual, "")
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given beatmaps without guest flags", t, func() {
		c := beatmapset.Summarize([]model.Beatmap{
			bm("1", "1", "0", "1", "1"),
			bm("1", "2", "0", "1", "1"),
			bm("2", "3", "0", "1", "1"),
		})

		Convey("Then everything counts as own work", func() {
			So(c.RankedBeatmaps, ShouldEqual, 3)
			So(c.RankedBeatmapsets, ShouldEqual, 2)
			So(c.OwnBeatmapsets, ShouldEqual, 2)
			So(c.OwnDifficulties, ShouldEqual, 3)
			So(c.GuestBeatmapsets, ShouldEqual, 0)
			So(c.TotalGuestDiffs, ShouldEqual, 0)
		})
	})

	Convey("Given records that already carry guest flags", t, func() {
		guest := bm("3", "4", "0", "1", "1")
		guest.IsGuestDiff = true
		c := beatmapset.Summarize([]model.Beatmap{bm("1", "1", "0", "1", "1"), guest})

		Convey("Then the flags are honoured", func() {
			So(c.TotalGuestDiffs, ShouldEqual, 1)
			So(c.GuestBeatmapsets, ShouldEqual, 1)
			So(c.OwnBeatmapsets, ShouldEqual, 1)
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given mappers across modes", t, func() {
		noMode := bm("3", "3", "", "1", "1")
		mappers := []model.Mapper{
			{UserID: "1", Beatmaps: []model.Beatmap{bm("1", "1", "0", "1", "1"), bm("1", "2", "1", "1", "1")}},
			{UserID: "2", Beatmaps: []model.Beatmap{bm("2", "4", "3", "1", "1")}},
			{UserID: "3", Beatmaps: []model.Beatmap{noMode}},
		}

		Convey("When no mode is selected", func() {
			st := beatmapset.Stats(mappers, model.NewCodeSet())

			Convey("Then every mapper, beatmap and set counts", func() {
				So(st, ShouldResemble, beatmapset.FilteredStats{MapperCount: 3, BeatmapCount: 4, BeatmapsetCount: 3})
			})
		})

		Convey("When only standard is selected", func() {
			st := beatmapset.Stats(mappers, model.NewCodeSet(model.ModeStandard))

			Convey("Then beatmaps without a mode count as standard", func() {
				So(st, ShouldResemble, beatmapset.FilteredStats{MapperCount: 2, BeatmapCount: 2, BeatmapsetCount: 2})
			})
		})
	})
}
