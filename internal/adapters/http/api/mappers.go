package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	service "github.com/kankokujin/kankokujin-no-map/internal/app"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/filter"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/sorting"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/types"
)

// MappersDependencies defines the interface for mapper queries.
type MappersDependencies interface {
	Mappers(ctx context.Context, q service.MapperQuery) (types.Page[types.MapperEntry], error)
	Mapper(ctx context.Context, userID string, criteria filter.Criteria) (types.MapperEntry, error)
}

// MappersHandler handles mapper requests.
type MappersHandler struct {
	deps MappersDependencies
}

// NewMappersHandler creates a new mappers handler.
func NewMappersHandler(deps MappersDependencies) *MappersHandler {
	return &MappersHandler{deps: deps}
}

// HandleList handles GET /api/mappers?q=&modes=&statuses=&sort=&dir=&page=&limit=
func (h *MappersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := parseMapperQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	page, err := h.deps.Mappers(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGet handles GET /api/mappers/{user_id}. The modes and statuses
// parameters narrow the beatmapsets and counts shown.
func (h *MappersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/mappers/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	m, err := h.deps.Mapper(r.Context(), id, c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func parseMapperQuery(r *http.Request) (service.MapperQuery, error) {
	v := r.URL.Query()
	var q service.MapperQuery
	var err error
	if q.Criteria, err = parseCriteria(v); err != nil {
		return q, err
	}
	if raw := v.Get("sort"); raw != "" {
		if q.Sort, err = sorting.ParseMapperKey(raw); err != nil {
			return q, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		if q.Direction, err = parseDirection(v); err != nil {
			return q, err
		}
	}
	q.Page, q.PageSize, err = parsePaging(v)
	return q, err
}
