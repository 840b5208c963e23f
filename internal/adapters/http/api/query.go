package api

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/filter"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/sorting"
)

// parseCriteria reads q, modes and statuses. An absent modes or statuses
// parameter selects every code; a present but empty one selects none.
func parseCriteria(v url.Values) (filter.Criteria, error) {
	c := filter.All().WithSearch(strings.TrimSpace(v.Get("q")))
	var err error
	if v.Has("modes") {
		if c.Modes, err = parseCodes(v.Get("modes"), model.AllModes()); err != nil {
			return filter.Criteria{}, fmt.Errorf("modes: %w", err)
		}
	}
	if v.Has("statuses") {
		if c.Statuses, err = parseCodes(v.Get("statuses"), model.AllStatuses()); err != nil {
			return filter.Criteria{}, fmt.Errorf("statuses: %w", err)
		}
	}
	return c, nil
}

func parseCodes(raw string, known []string) (model.CodeSet, error) {
	codes := make([]string, 0, len(known))
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !slices.Contains(known, part) {
			return model.CodeSet{}, fmt.Errorf("%w: unknown code %q", ErrBadRequest, part)
		}
		codes = append(codes, part)
	}
	return model.NewCodeSet(codes...), nil
}

// parseDirection reads dir, which is mandatory whenever sort is given.
func parseDirection(v url.Values) (sorting.Direction, error) {
	raw := v.Get("dir")
	if raw == "" {
		return 0, fmt.Errorf("%w: dir is required with sort", ErrBadRequest)
	}
	d, err := sorting.ParseDirection(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return d, nil
}

// parsePaging reads page and limit. Absent values are zero and take the
// service defaults.
func parsePaging(v url.Values) (page, limit int, err error) {
	if page, err = positiveInt(v, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = positiveInt(v, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func positiveInt(v url.Values, key string) (int, error) {
	raw := v.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrBadRequest, key)
	}
	return n, nil
}
