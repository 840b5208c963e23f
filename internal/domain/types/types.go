// Package types contains common types used across the application
package types

import "github.com/kankokujin/kankokujin-no-map/internal/domain/model"

// Page is one slice of a filtered, sorted result list.
type Page[T any] struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Pages    int `json:"pages"`
	Items    []T `json:"items"`
}

// Paginate cuts the 1-based page of size pageSize out of items.
// Pages past the end are empty but still report the total. The page index is
// compared against the page count before any offset is computed, so huge
// values cannot overflow.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(items)
	p := Page[T]{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    total / pageSize,
		Items:    []T{},
	}
	if total%pageSize != 0 {
		p.Pages++
	}
	if page > p.Pages {
		return p
	}
	start := (page - 1) * pageSize
	p.Items = items[start : start+min(pageSize, total-start)]
	return p
}

// Stats summarizes the loaded catalog.
type Stats struct {
	LastUpdated      string `json:"lastUpdated"`
	LoadedAt         string `json:"loadedAt,omitempty"`
	TotalMappers     int    `json:"totalMappers"`
	TotalBeatmaps    int    `json:"totalBeatmaps"`
	TotalBeatmapsets int    `json:"totalBeatmapsets"`
	Ready            bool   `json:"ready"`
}

// MapperEntry is a mapper as listed under the current filter. The counts,
// recency and beatmapsets reflect only what the filter admits.
type MapperEntry struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Aliases  []string `json:"aliases,omitempty"`
	Country  string   `json:"country"`
	model.Counters
	FilteredBeatmaps     int                `json:"filteredBeatmaps"`
	FilteredBeatmapsets  int                `json:"filteredBeatmapsets"`
	MostRecentRankedDate string             `json:"mostRecentRankedDate,omitempty"`
	RecentlyRanked       bool               `json:"recentlyRanked"`
	Beatmapsets          []model.Beatmapset `json:"beatmapsets"`
	LastUpdated          string             `json:"lastUpdated,omitempty"`
}
