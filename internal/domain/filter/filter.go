// Package filter narrows beatmapsets and mappers by search text, game mode
// and approval status.
//
// An empty allowed-mode or allowed-status set matches nothing. Callers that
// want "no restriction" pass every code, see All.
package filter

import (
	"strings"
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

// Criteria is an immutable filter selection.
type Criteria struct {
	Search   string
	Modes    model.CodeSet
	Statuses model.CodeSet
}

// All returns criteria that admit every mode and status.
func All() Criteria {
	return Criteria{
		Modes:    model.NewCodeSet(model.AllModes()...),
		Statuses: model.NewCodeSet(model.AllStatuses()...),
	}
}

// WithSearch returns a copy of c with the search text replaced.
func (c Criteria) WithSearch(search string) Criteria {
	c.Search = search
	return c
}

// ToggleMode returns a copy of c with mode flipped in the allowed modes.
func (c Criteria) ToggleMode(mode string) Criteria {
	c.Modes = c.Modes.Toggle(mode)
	return c
}

// ToggleStatus returns a copy of c with status flipped in the allowed statuses.
func (c Criteria) ToggleStatus(status string) Criteria {
	c.Statuses = c.Statuses.Toggle(status)
	return c
}

// Beatmapsets keeps the sets whose title, artist or creator contains the
// search text, that have at least one allowed mode, and whose representative
// status is allowed. Input order is preserved.
func Beatmapsets(sets []model.Beatmapset, c Criteria) []model.Beatmapset {
	term := strings.ToLower(c.Search)
	out := make([]model.Beatmapset, 0, len(sets))
	for i := range sets {
		s := &sets[i]
		if term != "" && !containsAny(term, s.Title, s.Artist, s.Creator) {
			continue
		}
		if !c.admits(s) {
			continue
		}
		out = append(out, *s)
	}
	return out
}

// MatchesMapper reports whether search occurs in the mapper's username, any
// alias, or the title or artist of any of its beatmaps.
func MatchesMapper(m *model.Mapper, search string) bool {
	term := strings.ToLower(search)
	if term == "" {
		return true
	}
	if containsAny(term, m.Username) || containsAny(term, m.Aliases...) {
		return true
	}
	for i := range m.Beatmaps {
		if containsAny(term, m.Beatmaps[i].Title, m.Beatmaps[i].Artist) {
			return true
		}
	}
	return false
}

// Mappers keeps the profiles matching the search text that own at least one
// beatmapset passing the mode and status selection.
func Mappers(profiles []model.Profile, c Criteria) []model.Profile {
	out := make([]model.Profile, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if !MatchesMapper(&p.Mapper, c.Search) {
			continue
		}
		if BeatmapsetCount(p, c) == 0 {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// BeatmapCount counts the profile's beatmaps in an allowed mode and status.
// Statuses match exactly; a record without one is never counted.
func BeatmapCount(p *model.Profile, c Criteria) int {
	n := 0
	for i := range p.Beatmaps {
		b := &p.Beatmaps[i]
		if c.Statuses.Has(b.Approved) && c.Modes.Has(model.EffectiveMode(b.Mode)) {
			n++
		}
	}
	return n
}

// BeatmapsetCount counts the profile's beatmapsets passing the selection.
func BeatmapsetCount(p *model.Profile, c Criteria) int {
	n := 0
	for i := range p.Beatmapsets {
		if c.admits(&p.Beatmapsets[i]) {
			n++
		}
	}
	return n
}

// MostRecentRankedDate returns the latest approval date among the profile's
// beatmapsets passing the selection, or "" when none pass.
func MostRecentRankedDate(p *model.Profile, c Criteria) string {
	best := ""
	var bestAt time.Time
	for i := range p.Beatmapsets {
		s := &p.Beatmapsets[i]
		if s.ApprovedDate == "" || !c.admits(s) {
			continue
		}
		at, _ := model.ParseDate(s.ApprovedDate)
		if best == "" || at.After(bestAt) {
			best, bestAt = s.ApprovedDate, at
		}
	}
	return best
}

func (c Criteria) admits(s *model.Beatmapset) bool {
	if !c.Statuses.Has(s.Approved) {
		return false
	}
	for _, mode := range s.Modes {
		if c.Modes.Has(model.EffectiveMode(mode)) {
			return true
		}
	}
	return false
}

func containsAny(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
