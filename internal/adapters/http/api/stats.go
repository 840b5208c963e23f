// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/kankokujin/kankokujin-no-map/internal/domain/beatmapset"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/model"
	"github.com/kankokujin/kankokujin-no-map/internal/domain/types"
)

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

type statsResponse struct {
	types.Stats
	Filtered *beatmapset.FilteredStats `json:"filtered,omitempty"`
}

// HandleStats handles GET /stats requests. With a modes parameter the
// response also carries the figures for those modes; an empty modes value
// counts every mode.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := statsResponse{Stats: h.statsProvider.Stats()}
	v := r.URL.Query()
	if v.Has("modes") {
		modes, err := parseCodes(v.Get("modes"), model.AllModes())
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		fs, err := h.statsProvider.FilteredStats(modes)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp.Filtered = &fs
	}
	writeJSON(w, http.StatusOK, resp)
}
