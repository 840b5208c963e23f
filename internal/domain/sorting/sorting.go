// Package sorting orders beatmapsets and mappers for display.
//
// Every sort takes an explicit Direction; no key carries an implied default.
// Sorts return a new slice and leave the input untouched. Equal elements may
// come out in any order.
package sorting

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/filter"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

// Key selects the beatmapset field to sort by.
type Key string

// Beatmapset sort keys.
const (
	KeyDate      Key = "date"
	KeyArtist    Key = "artist"
	KeyTitle     Key = "title"
	KeyFavorite  Key = "favorite"
	KeyPlaycount Key = "playcount"
)

// MapperKey selects the mapper figure to sort by.
type MapperKey string

// Mapper sort keys.
const (
	MapperKeyName     MapperKey = "name"
	MapperKeyBeatmaps MapperKey = "beatmaps"
	MapperKeyMapsets  MapperKey = "mapsets"
	MapperKeyRecent   MapperKey = "recent"
)

// Direction is the sort order. Its value multiplies an ascending comparison.
type Direction int

// Sort directions.
const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ParseKey validates a beatmapset sort key.
func ParseKey(s string) (Key, error) {
	switch k := Key(strings.ToLower(s)); k {
	case KeyDate, KeyArtist, KeyTitle, KeyFavorite, KeyPlaycount:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// ParseMapperKey validates a mapper sort key.
func ParseMapperKey(s string) (MapperKey, error) {
	switch k := MapperKey(strings.ToLower(s)); k {
	case MapperKeyName, MapperKeyBeatmaps, MapperKeyMapsets, MapperKeyRecent:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// ParseDirection accepts "asc" or "desc".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "asc":
		return Ascending, nil
	case "desc":
		return Descending, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Beatmapsets returns sets ordered by key in direction dir. Dates that do not
// parse sort as the zero time and malformed counts as zero. A nil collator
// uses the DefaultLocale collator.
func Beatmapsets(sets []model.Beatmapset, key Key, dir Direction, collator *Collator) []model.Beatmapset {
	out := slices.Clone(sets)
	if out == nil {
		out = []model.Beatmapset{}
	}

	orDefault(collator).locked(func(text func(a, b string) int) {
		var compare func(a, b *model.Beatmapset) int
		switch key {
		case KeyArtist:
			compare = func(a, b *model.Beatmapset) int { return text(a.Artist, b.Artist) }
		case KeyTitle:
			compare = func(a, b *model.Beatmapset) int { return text(a.Title, b.Title) }
		case KeyFavorite:
			compare = func(a, b *model.Beatmapset) int { return cmp.Compare(a.FavouriteCount, b.FavouriteCount) }
		case KeyPlaycount:
			compare = func(a, b *model.Beatmapset) int { return cmp.Compare(a.Playcount, b.Playcount) }
		default:
			compare = func(a, b *model.Beatmapset) int { return compareDates(a.ApprovedDate, b.ApprovedDate) }
		}
		slices.SortFunc(out, func(a, b model.Beatmapset) int {
			return int(dir) * compare(&a, &b)
		})
	})
	return out
}

// Mappers returns profiles ordered by key in direction dir. Counts and
// recency are computed under criteria, so the order matches what a filtered
// view shows.
func Mappers(profiles []model.Profile, key MapperKey, dir Direction, criteria filter.Criteria, collator *Collator) []model.Profile {
	out := slices.Clone(profiles)
	if out == nil {
		out = []model.Profile{}
	}
	if key == MapperKeyName {
		orDefault(collator).locked(func(text func(a, b string) int) {
			slices.SortFunc(out, func(a, b model.Profile) int {
				return int(dir) * text(a.Username, b.Username)
			})
		})
		return out
	}

	figures := make(map[string]int64, len(out))
	for i := range out {
		p := &out[i]
		switch key {
		case MapperKeyBeatmaps:
			figures[p.UserID] = int64(filter.BeatmapCount(p, criteria))
		case MapperKeyRecent:
			at, _ := model.ParseDate(filter.MostRecentRankedDate(p, criteria))
			figures[p.UserID] = at.Unix()
		default:
			figures[p.UserID] = int64(filter.BeatmapsetCount(p, criteria))
		}
	}
	slices.SortFunc(out, func(a, b model.Profile) int {
		return int(dir) * cmp.Compare(figures[a.UserID], figures[b.UserID])
	})
	return out
}

// HasRecentRankedMap reports whether the profile's most recent beatmapset
// under criteria was approved within one calendar month before now.
func HasRecentRankedMap(p *model.Profile, criteria filter.Criteria, now time.Time) bool {
	at, ok := model.ParseDate(filter.MostRecentRankedDate(p, criteria))
	if !ok {
		return false
	}
	return at.After(now.AddDate(0, -1, 0))
}

func compareDates(a, b string) int {
	ta, _ := model.ParseDate(a)
	tb, _ := model.ParseDate(b)
	return ta.Compare(tb)
}
