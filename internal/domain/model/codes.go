package model

import "sort"

// Game mode codes.
const (
	ModeStandard = "0"
	ModeTaiko    = "1"
	ModeCatch    = "2"
	ModeMania    = "3"
)

// Approval status codes.
const (
	StatusRanked    = "1"
	StatusApproved  = "2"
	StatusQualified = "3"
	StatusLoved     = "4"
)

// AllModes lists every game mode code.
func AllModes() []string {
	return []string{ModeStandard, ModeTaiko, ModeCatch, ModeMania}
}

// AllStatuses lists every approval status a catalog entry may carry.
func AllStatuses() []string {
	return []string{StatusRanked, StatusApproved, StatusQualified, StatusLoved}
}

// EffectiveMode returns the mode a record counts under. Older records
// without a mode are standard.
func EffectiveMode(mode string) string {
	if mode == "" {
		return ModeStandard
	}
	return mode
}

// ModeName returns the display name of a mode code.
func ModeName(mode string) string {
	switch mode {
	case ModeTaiko:
		return "Taiko"
	case ModeCatch:
		return "Catch the Beat"
	case ModeMania:
		return "osu!mania"
	default:
		return "osu!"
	}
}

// StatusName returns the display name of an approval status code.
// Records without a status are older ranked data.
func StatusName(status string) string {
	switch status {
	case StatusApproved:
		return "Approved"
	case StatusQualified:
		return "Qualified"
	case StatusLoved:
		return "Loved"
	default:
		return "Ranked"
	}
}

// CodeSet is an immutable set of mode or status codes.
// The zero value is the empty set.
type CodeSet struct {
	m map[string]struct{}
}

// NewCodeSet builds a set from codes.
func NewCodeSet(codes ...string) CodeSet {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return CodeSet{m: m}
}

// Has reports whether code is a member.
func (s CodeSet) Has(code string) bool {
	_, ok := s.m[code]
	return ok
}

// Len returns the number of members.
func (s CodeSet) Len() int { return len(s.m) }

// Empty reports whether the set has no members.
func (s CodeSet) Empty() bool { return len(s.m) == 0 }

// Toggle returns a new set with code added when absent or removed when present.
func (s CodeSet) Toggle(code string) CodeSet {
	m := make(map[string]struct{}, len(s.m)+1)
	for c := range s.m {
		m[c] = struct{}{}
	}
	if _, ok := m[code]; ok {
		delete(m, code)
	} else {
		m[code] = struct{}{}
	}
	return CodeSet{m: m}
}

// Codes returns the members in ascending order.
func (s CodeSet) Codes() []string {
	out := make([]string, 0, len(s.m))
	for c := range s.m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
