// Package osuapi is a client for the osu! v1 API endpoints the ingestion
// command uses: get_user and get_beatmaps.
//
// Every attempt, retries included, waits on a shared rate limiter. Requests
// answered with 429 or 5xx, and transport failures, are retried with doubling
// backoff up to the configured attempt count. Any other non-2xx status fails
// at once with a *StatusError.
package osuapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/dedupe"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
	"github.com/kankokujin/kankokujin-no-map/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	DefaultBaseURL     = "https://osu.ppy.sh/api"
	DefaultMaxAttempts = 3
	DefaultPageLimit   = 500

	defaultBackoff  = time.Second
	defaultInterval = 100 * time.Millisecond
	defaultTimeout  = 30 * time.Second

	// maxPages stops runaway paging if the server keeps answering full pages.
	maxPages = 200
)

// Client talks to the osu! v1 API.
type Client struct {
	baseURL     string
	key         string
	maxAttempts int
	backoff     time.Duration
	interval    time.Duration
	pageLimit   int
	timeout     time.Duration
	log         logger.Logger

	http    *resty.Client
	limiter *rate.Limiter
}

// New builds a client for key. It fails with ErrMissingAPIKey when key is
// empty.
func New(key string, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		baseURL:     DefaultBaseURL,
		key:         key,
		maxAttempts: DefaultMaxAttempts,
		backoff:     defaultBackoff,
		interval:    defaultInterval,
		pageLimit:   DefaultPageLimit,
		timeout:     defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("osuapi")
	}

	if c.interval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(c.interval), 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	}

	c.http = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{log: c.log}).
		SetRetryCount(c.maxAttempts - 1).
		SetRetryWaitTime(c.backoff).
		SetRetryMaxWaitTime(c.backoff << (c.maxAttempts - 1)).
		SetRetryAfter(c.retryAfter).
		AddRetryCondition(shouldRetry).
		AddRetryHook(c.onRetry).
		OnBeforeRequest(c.wait).
		OnAfterResponse(recordAttempt)

	return c, nil
}

// PageLimit returns the get_beatmaps page size in use.
func (c *Client) PageLimit() int { return c.pageLimit }

// GetUser fetches a user by numeric id.
func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	var users []User
	err := c.get(ctx, "get_user", map[string]string{
		"u":    userID,
		"type": "id",
	}, &users)
	if err != nil {
		return User{}, err
	}
	if len(users) == 0 {
		return User{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	return users[0], nil
}

// GetBeatmaps fetches one page of beatmaps.
func (c *Client) GetBeatmaps(ctx context.Context, q BeatmapsQuery) ([]model.Beatmap, error) {
	params := map[string]string{}
	if q.UserID != "" {
		params["u"] = q.UserID
		params["type"] = "id"
	}
	if !q.Since.IsZero() {
		params["since"] = model.APIDate(q.Since)
	}
	if q.Limit > 0 {
		params["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Offset > 0 {
		params["offset"] = strconv.Itoa(q.Offset)
	}

	var beatmaps []model.Beatmap
	if err := c.get(ctx, "get_beatmaps", params, &beatmaps); err != nil {
		return nil, err
	}
	return beatmaps, nil
}

// AllBeatmapsForUser pages through a user's beatmaps approved after since.
// A zero since fetches everything. Paging stops on a short page, or on a
// page that brings no beatmap id not already seen.
func (c *Client) AllBeatmapsForUser(ctx context.Context, userID string, since time.Time) ([]model.Beatmap, error) {
	seen := dedupe.NewInMemoryDeduper()
	all := make([]model.Beatmap, 0)

	for page := 0; page < maxPages; page++ {
		batch, err := c.GetBeatmaps(ctx, BeatmapsQuery{
			UserID: userID,
			Since:  since,
			Limit:  c.pageLimit,
			Offset: page * c.pageLimit,
		})
		if err != nil {
			return nil, err
		}

		fresh := 0
		for i := range batch {
			if seen.SeenAndRecord(ctx, batch[i].BeatmapID) {
				continue
			}
			fresh++
			all = append(all, batch[i])
		}

		if len(batch) < c.pageLimit || fresh == 0 {
			return all, nil
		}
	}
	c.log.Warn(ctx, "page limit reached", logger.String("user_id", userID), logger.Int("pages", maxPages))
	return all, nil
}

// RecentCreators returns the distinct creator ids of up to limit beatmaps
// approved after since, in the order the API lists them.
func (c *Client) RecentCreators(ctx context.Context, since time.Time, limit int) ([]string, error) {
	batch, err := c.GetBeatmaps(ctx, BeatmapsQuery{Since: since, Limit: limit})
	if err != nil {
		return nil, err
	}
	seen := dedupe.NewInMemoryDeduper()
	ids := make([]string, 0)
	for i := range batch {
		id := batch[i].CreatorID
		if id == "" || seen.SeenAndRecord(ctx, id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("k", c.key).
		Get("/" + endpoint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		metrics.RecordErrorByComponent("osuapi", "transport")
		return fmt.Errorf("%w: %s: %w", ErrRequest, endpoint, err)
	}
	if res.IsError() {
		metrics.RecordErrorByComponent("osuapi", "status_"+strconv.Itoa(res.StatusCode()))
		return &StatusError{Endpoint: endpoint, StatusCode: res.StatusCode(), Body: truncate(res.String(), 200)}
	}
	if err := json.Unmarshal(res.Body(), out); err != nil {
		metrics.RecordErrorByComponent("osuapi", "decode")
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	return nil
}

func (c *Client) wait(_ *resty.Client, r *resty.Request) error {
	return c.limiter.Wait(r.Context())
}

// retryAfter doubles the backoff per attempt already made.
func (c *Client) retryAfter(_ *resty.Client, res *resty.Response) (time.Duration, error) {
	attempt := 1
	if res != nil && res.Request != nil && res.Request.Attempt > 0 {
		attempt = res.Request.Attempt
	}
	return c.backoff << (attempt - 1), nil
}

func (c *Client) onRetry(res *resty.Response, err error) {
	metrics.RecordUpstreamRetry()
	fields := []logger.Field{}
	if res != nil && res.Request != nil {
		fields = append(fields, logger.Int("attempt", res.Request.Attempt), logger.Int("status", res.StatusCode()))
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	c.log.Warn(context.Background(), "retrying osu! API request", fields...)
}

func shouldRetry(res *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return res != nil && retryableStatus(res.StatusCode())
}

func recordAttempt(_ *resty.Client, res *resty.Response) error {
	endpoint := "unknown"
	if raw := res.RawResponse; raw != nil && raw.Request != nil {
		endpoint = path.Base(raw.Request.URL.Path)
	}
	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(res.StatusCode()), float64(res.Time().Milliseconds()))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// restyLogger routes resty's own diagnostics into the structured logger.
type restyLogger struct {
	log logger.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(context.Background(), fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(context.Background(), fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(context.Background(), fmt.Sprintf(format, v...))
}
