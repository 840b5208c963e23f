package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// DataHandler serves the consolidated document verbatim.
type DataHandler struct {
	path string
}

// NewDataHandler creates a handler for the document at path.
func NewDataHandler(path string) *DataHandler {
	return &DataHandler{path: path}
}

// HandleData handles GET /data/mappers.json requests.
func (h *DataHandler) HandleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	fi, err := os.Stat(h.path)
	if err != nil || fi.IsDir() {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %s", ErrNoData, filepath.Base(h.path)))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, h.path)
}
