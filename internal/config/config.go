// Package config defines process configuration shared by the catalog
// service and the fetch-mappers command.
package config

import (
	"time"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BasePath is the URL prefix every route is mounted under.
	BasePath string `koanf:"base_path"`

	// DataFile is the consolidated mapper document.
	DataFile string `koanf:"data_file"`

	// StateFile holds incremental-fetch bookkeeping.
	StateFile string `koanf:"state_file"`

	// OsuAPIKey is the osu! v1 API credential. OSU_API_KEY is honoured when unset.
	OsuAPIKey string `koanf:"osu_api_key"`

	// OsuBaseURL is the osu! v1 API root.
	OsuBaseURL string `koanf:"osu_base_url"`

	// TargetCountry is the country code whose users are included.
	TargetCountry string `koanf:"target_country"`

	// AllowList includes users regardless of country.
	AllowList []string `koanf:"allow_list"`

	// DenyList excludes users even when they match the country.
	DenyList []string `koanf:"deny_list"`

	// RequestIntervalMS is the minimum spacing between upstream requests.
	RequestIntervalMS int `koanf:"request_interval_ms"`

	// MaxAttempts bounds attempts per upstream request, including the first.
	MaxAttempts int `koanf:"max_attempts"`

	// RetryBackoffMS is the first retry delay; later delays double.
	RetryBackoffMS int `koanf:"retry_backoff_ms"`

	// PageLimit is the page size asked of get_beatmaps.
	PageLimit int `koanf:"page_limit"`

	// FullScanIntervalHours forces a full rescan once this much time passed.
	FullScanIntervalHours int `koanf:"full_scan_interval_hours"`

	// DiscoverSince and DiscoverLimit drive the recent-beatmaps probe that
	// discovers new candidate mappers. A zero limit disables the probe.
	DiscoverSince string `koanf:"discover_since"`
	DiscoverLimit int    `koanf:"discover_limit"`

	// CollationLocale is the BCP 47 tag used for text sorting.
	CollationLocale string `koanf:"collation_locale"`

	// DefaultPageSize and MaxPageSize bound API pagination.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// WatchDataFile reloads the catalog when the data file changes.
	WatchDataFile bool `koanf:"watch_data_file"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		BasePath:              "/kankokujin-no-map",
		DataFile:              "data/mappers.json",
		StateFile:             "data/fetch-state.json",
		OsuBaseURL:            "https://osu.ppy.sh/api",
		TargetCountry:         "KR",
		AllowList:             defaultAllowList(),
		DenyList:              []string{},
		RequestIntervalMS:     100,
		MaxAttempts:           3,
		RetryBackoffMS:        1000,
		PageLimit:             500,
		FullScanIntervalHours: 7 * 24,
		DiscoverSince:         "2020-01-01",
		DiscoverLimit:         500,
		CollationLocale:       "ko",
		DefaultPageSize:       50,
		MaxPageSize:           500,
		WatchDataFile:         true,
	}
}

// RequestInterval returns RequestIntervalMS as a duration.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMS) * time.Millisecond
}

// RetryBackoff returns RetryBackoffMS as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// FullScanInterval returns FullScanIntervalHours as a duration.
func (c *Config) FullScanInterval() time.Duration {
	return time.Duration(c.FullScanIntervalHours) * time.Hour
}

// DiscoverSinceTime parses DiscoverSince. An empty or unparsable value
// yields the zero time.
func (c *Config) DiscoverSinceTime() time.Time {
	t, _ := model.ParseDate(c.DiscoverSince)
	return t
}
