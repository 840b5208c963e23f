// Package beatmapset rebuilds beatmapset aggregates from flat beatmap lists.
//
// Every function here is pure: no clock, no randomness and no state kept
// between calls, so the same input always yields the same output.
package beatmapset

import (
	"slices"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

// Construct groups beatmaps by beatmapset id in first-seen order.
//
// The first record seen for an id supplies title, artist, creator, approval
// status, approval date and favourite count. That record is not necessarily
// the "best" status among the members. Modes are unioned in order of first
// appearance, a record without a mode counting as standard. Play counts are
// summed, with malformed counts read as zero.
func Construct(beatmaps []model.Beatmap) []model.Beatmapset {
	sets := make([]model.Beatmapset, 0)
	index := make(map[string]int)

	for i := range beatmaps {
		b := &beatmaps[i]

		pos, ok := index[b.BeatmapsetID]
		if !ok {
			pos = len(sets)
			index[b.BeatmapsetID] = pos
			sets = append(sets, model.Beatmapset{
				BeatmapsetID:   b.BeatmapsetID,
				Title:          b.Title,
				Artist:         b.Artist,
				Creator:        b.Creator,
				ApprovedDate:   b.ApprovedDate,
				Approved:       b.Approved,
				FavouriteCount: model.ParseCount(b.FavouriteCount),
				Modes:          []string{},
				Difficulties:   []model.Difficulty{},
			})
		}

		set := &sets[pos]
		mode := model.EffectiveMode(b.Mode)
		if !slices.Contains(set.Modes, mode) {
			set.Modes = append(set.Modes, mode)
		}
		set.Difficulties = append(set.Difficulties, model.DifficultyOf(*b))
		set.Playcount += model.ParseCount(b.Playcount)
	}

	return sets
}

// AllFromMappers constructs the catalog-wide beatmapset list from every
// mapper's beatmaps, in mapper order.
func AllFromMappers(mappers []model.Mapper) []model.Beatmapset {
	n := 0
	for i := range mappers {
		n += len(mappers[i].Beatmaps)
	}
	all := make([]model.Beatmap, 0, n)
	for i := range mappers {
		all = append(all, mappers[i].Beatmaps...)
	}
	return Construct(all)
}

// ProcessMapper derives the load-time view of m.
func ProcessMapper(m model.Mapper) model.Profile { //nolint:gocritic // hugeParam: m is copied into the profile on purpose
	if m.Aliases == nil {
		m.Aliases = []string{}
	}
	return model.Profile{
		Mapper:               m,
		Beatmapsets:          Construct(m.Beatmaps),
		MostRecentRankedDate: mostRecentRankedDate(m.Beatmaps),
	}
}

// ProcessMappers applies ProcessMapper to each mapper.
func ProcessMappers(mappers []model.Mapper) []model.Profile {
	out := make([]model.Profile, len(mappers))
	for i := range mappers {
		out[i] = ProcessMapper(mappers[i])
	}
	return out
}

// mostRecentRankedDate returns the latest approval date among ranked and
// loved beatmaps, or "" when there are none. Ties keep the earlier record.
func mostRecentRankedDate(beatmaps []model.Beatmap) string {
	best := ""
	var bestAt time.Time
	found := false
	for i := range beatmaps {
		b := &beatmaps[i]
		if b.Approved != model.StatusRanked && b.Approved != model.StatusLoved {
			continue
		}
		at, _ := model.ParseDate(b.ApprovedDate)
		if !found || at.After(bestAt) {
			best, bestAt, found = b.ApprovedDate, at, true
		}
	}
	return best
}
