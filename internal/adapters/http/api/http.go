// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/kankokujin/kankokujin-no-map/internal/app"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/beatmapset"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/filter"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/types"
	"github.com/kankokujin/kankokujin-no-map/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Beatmapsets(ctx context.Context, q service.BeatmapsetQuery) (types.Page[model.Beatmapset], error)
	Mappers(ctx context.Context, q service.MapperQuery) (types.Page[types.MapperEntry], error)
	Mapper(ctx context.Context, userID string, criteria filter.Criteria) (types.MapperEntry, error)
	StatsProvider
}

// Server wires HTTP routes for the catalog API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	beatmapsetsHandler *BeatmapsetsHandler
	mappersHandler     *MappersHandler
	dataHandler        *DataHandler
	log                logger.Logger
}

// NewServer creates a new API server with all handlers. dataFile is the
// consolidated document served verbatim under /data/.
func NewServer(deps Dependencies, dataFile string, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		beatmapsetsHandler: NewBeatmapsetsHandler(deps),
		mappersHandler:     NewMappersHandler(deps),
		dataHandler:        NewDataHandler(dataFile),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("http")
	}
	return s
}

// Register attaches all HTTP routes to mux. Paths are relative to the
// deployment base path; the caller strips it.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.log, s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.log, s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/beatmapsets", MetricsMiddleware(s.log, s.beatmapsetsHandler.HandleList, "beatmapsets"))
	mux.HandleFunc("/api/mappers", MetricsMiddleware(s.log, s.mappersHandler.HandleList, "mappers"))
	mux.HandleFunc("/api/mappers/", MetricsMiddleware(s.log, s.mappersHandler.HandleGet, "mapper"))
	mux.HandleFunc("/data/mappers.json", MetricsMiddleware(s.log, s.dataHandler.HandleData, "data"))
}

// StatsProvider reports catalog totals.
type StatsProvider interface {
	Stats() types.Stats
	FilteredStats(modes model.CodeSet) (beatmapset.FilteredStats, error)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service sentinels to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
