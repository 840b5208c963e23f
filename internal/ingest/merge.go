package ingest

import (
	"context"
	"slices"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/dedupe"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

// RetainStatus reports whether a beatmap with the given approval status is
// kept. Ranked, approved and loved maps are kept; qualified maps are not
// final yet.
func RetainStatus(status string) bool {
	switch status {
	case model.StatusRanked, model.StatusApproved, model.StatusLoved:
		return true
	default:
		return false
	}
}

// Retained returns the beatmaps whose status is kept.
func Retained(beatmaps []model.Beatmap) []model.Beatmap {
	out := make([]model.Beatmap, 0, len(beatmaps))
	for i := range beatmaps {
		if RetainStatus(beatmaps[i].Approved) {
			out = append(out, beatmaps[i])
		}
	}
	return out
}

// MergeBeatmaps adds the fetched beatmaps that existing does not already
// hold, keyed by beatmap id. Existing records are never replaced. The result
// is ordered by approval date, newest first, and added is the number of new
// records.
func MergeBeatmaps(existing, fetched []model.Beatmap) (merged []model.Beatmap, added int) {
	ctx := context.Background()
	ids := make([]string, 0, len(existing))
	for i := range existing {
		ids = append(ids, existing[i].BeatmapID)
	}
	seen := dedupe.FromIDs(ids...)

	merged = make([]model.Beatmap, 0, len(existing)+len(fetched))
	merged = append(merged, existing...)
	for i := range fetched {
		if seen.SeenAndRecord(ctx, fetched[i].BeatmapID) {
			continue
		}
		merged = append(merged, fetched[i])
		added++
	}

	slices.SortStableFunc(merged, func(a, b model.Beatmap) int {
		ta, _ := model.ParseDate(a.ApprovedDate)
		tb, _ := model.ParseDate(b.ApprovedDate)
		return tb.Compare(ta)
	})
	return merged, added
}
