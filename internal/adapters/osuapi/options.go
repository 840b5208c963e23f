package osuapi

import (
	"time"

	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a test server.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithMaxAttempts bounds attempts per request, including the first.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryBackoff sets the delay before the first retry. Each later retry
// waits twice as long as the one before.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithRequestInterval sets the minimum spacing between requests, retries
// included. Zero disables spacing.
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.interval = d
		}
	}
}

// WithPageLimit sets the get_beatmaps page size.
func WithPageLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageLimit = n
		}
	}
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
