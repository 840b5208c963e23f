package ingest

import (
	"time"

	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
)

// DefaultFullScanInterval is how old the last full scan may get before the
// next run refetches every mapper's complete history.
const DefaultFullScanInterval = 7 * 24 * time.Hour

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithFullScanInterval sets the full scan interval.
func WithFullScanInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.fullScanInterval = d
		}
	}
}

// WithForceFull forces a full scan regardless of the stored state.
func WithForceFull(full bool) Option {
	return func(r *Runner) {
		r.forceFull = full
	}
}

// WithDiscovery enables the recent-beatmaps probe for new creators approved
// after since. A limit of zero disables it.
func WithDiscovery(since time.Time, limit int) Option {
	return func(r *Runner) {
		r.discoverSince = since
		r.discoverLimit = limit
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}
