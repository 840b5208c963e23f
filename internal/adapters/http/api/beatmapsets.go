package api

import (
	"context"
	"fmt"
	"net/http"

	service "github.com/kankokujin/kankokujin-no-map/internal/app"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/sorting"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/types"
)

// BeatmapsetsDependencies defines the interface for beatmapset queries.
type BeatmapsetsDependencies interface {
	Beatmapsets(ctx context.Context, q service.BeatmapsetQuery) (types.Page[model.Beatmapset], error)
}

// BeatmapsetsHandler handles beatmapset listing requests.
type BeatmapsetsHandler struct {
	deps BeatmapsetsDependencies
}

// NewBeatmapsetsHandler creates a new beatmapsets handler.
func NewBeatmapsetsHandler(deps BeatmapsetsDependencies) *BeatmapsetsHandler {
	return &BeatmapsetsHandler{deps: deps}
}

// HandleList handles GET /api/beatmapsets?q=&modes=&statuses=&sort=&dir=&page=&limit=
func (h *BeatmapsetsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := parseBeatmapsetQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	page, err := h.deps.Beatmapsets(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseBeatmapsetQuery(r *http.Request) (service.BeatmapsetQuery, error) {
	v := r.URL.Query()
	var q service.BeatmapsetQuery
	var err error
	if q.Criteria, err = parseCriteria(v); err != nil {
		return q, err
	}
	if raw := v.Get("sort"); raw != "" {
		if q.Sort, err = sorting.ParseKey(raw); err != nil {
			return q, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if q.Direction, err = parseDirection(v); err != nil {
			return q, err
		}
	}
	q.Page, q.PageSize, err = parsePaging(v)
	return q, err
}
