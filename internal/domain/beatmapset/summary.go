package beatmapset

import "github.com/kankokujin/kankokujin-no-map/internal/domain/model"

// Summarize recomputes a mapper's counters from its beatmaps.
//
// Guest difficulties are only counted when a record already carries the
// isGuestDiff flag; the upstream API exposes no per-difficulty creator, so
// nothing here tries to infer ownership. A set counts as the mapper's own
// when at least one member is not a guest difficulty.
func Summarize(beatmaps []model.Beatmap) model.Counters {
	var c model.Counters
	own := make(map[string]bool)
	order := make([]string, 0)

	for i := range beatmaps {
		b := &beatmaps[i]
		if b.IsGuestDiff {
			c.TotalGuestDiffs++
		} else {
			c.OwnDifficulties++
		}
		prev, seen := own[b.BeatmapsetID]
		if !seen {
			order = append(order, b.BeatmapsetID)
		}
		own[b.BeatmapsetID] = prev || !b.IsGuestDiff
	}

	c.RankedBeatmaps = len(beatmaps)
	c.RankedBeatmapsets = len(order)
	for _, id := range order {
		if own[id] {
			c.OwnBeatmapsets++
		} else {
			c.GuestBeatmapsets++
		}
	}
	return c
}

// FilteredStats are the catalog figures shown for the current mode filter.
type FilteredStats struct {
	MapperCount     int `json:"mapperCount"`
	BeatmapCount    int `json:"beatmapCount"`
	BeatmapsetCount int `json:"beatmapsetCount"`
}

// Stats counts mappers, beatmaps and distinct beatmapsets whose beatmaps are
// in one of modes. An empty modes set applies no mode restriction. Beatmaps
// without a mode are standard.
func Stats(mappers []model.Mapper, modes model.CodeSet) FilteredStats {
	var st FilteredStats
	sets := make(map[string]struct{})

	for i := range mappers {
		matched := false
		for j := range mappers[i].Beatmaps {
			b := &mappers[i].Beatmaps[j]
			mode := b.Mode
			if mode == "" {
				mode = model.ModeStandard
			}
			if !modes.Empty() && !modes.Has(mode) {
				continue
			}
			matched = true
			st.BeatmapCount++
			sets[b.BeatmapsetID] = struct{}{}
		}
		if matched || modes.Empty() {
			st.MapperCount++
		}
	}
	st.BeatmapsetCount = len(sets)
	return st
}
