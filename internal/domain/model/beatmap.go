// Package model contains domain models passed between layers.
package model

// Beatmap is a single difficulty chart as delivered by the osu! v1 API.
// Numeric fields stay decimal strings, matching the upstream payload and the
// persisted data file.
type Beatmap struct {
	BeatmapID        string `json:"beatmap_id"`
	BeatmapsetID     string `json:"beatmapset_id"`
	Title            string `json:"title"`
	Artist           string `json:"artist"`
	Version          string `json:"version"`
	Creator          string `json:"creator"`
	CreatorID        string `json:"creator_id,omitempty"`
	ApprovedDate     string `json:"approved_date"`
	DifficultyRating string `json:"difficultyrating"`
	Playcount        string `json:"playcount"`
	FavouriteCount   string `json:"favourite_count"`
	Approved         string `json:"approved"`
	Mode             string `json:"mode,omitempty"`
	IsGuestDiff      bool   `json:"isGuestDiff,omitempty"`
	HostMapper       string `json:"hostMapper,omitempty"`
}

// Difficulty is the per-chart view kept inside a Beatmapset.
type Difficulty struct {
	BeatmapID        string `json:"beatmap_id"`
	Version          string `json:"version"`
	DifficultyRating string `json:"difficultyrating"`
	Mode             string `json:"mode"`
	Playcount        string `json:"playcount"`
	FavouriteCount   string `json:"favourite_count"`
	IsGuestDiff      bool   `json:"isGuestDiff"`
}

// DifficultyOf derives the Difficulty view of b. A missing mode reads as
// standard.
func DifficultyOf(b Beatmap) Difficulty { //nolint:gocritic // hugeParam: value semantics keep the input untouched
	return Difficulty{
		BeatmapID:        b.BeatmapID,
		Version:          b.Version,
		DifficultyRating: b.DifficultyRating,
		Mode:             EffectiveMode(b.Mode),
		Playcount:        b.Playcount,
		FavouriteCount:   b.FavouriteCount,
		IsGuestDiff:      b.IsGuestDiff,
	}
}

// Beatmapset aggregates every difficulty sharing a beatmapset id.
// It is rebuilt on each aggregation call and never persisted.
type Beatmapset struct {
	BeatmapsetID   string       `json:"beatmapset_id"`
	Title          string       `json:"title"`
	Artist         string       `json:"artist"`
	Creator        string       `json:"creator"`
	ApprovedDate   string       `json:"approved_date"`
	Approved       string       `json:"approved"`
	Modes          []string     `json:"modes"`
	FavouriteCount int64        `json:"favourite_count"`
	Playcount      int64        `json:"playcount"`
	Difficulties   []Difficulty `json:"difficulties"`
}
