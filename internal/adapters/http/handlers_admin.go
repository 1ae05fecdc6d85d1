package web

import (
	"net/http"
	"strconv"
	"time"

	"checkin/internal/domain/apperr"
)

const (
	defaultPerfWindow = 15 * time.Minute
	defaultPerfTopN   = 10
	maxPerfTopN       = 50
)

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf returns request, upstream API and session-query timings for
// the last window (?window=15m) as JSON, with the top N (?top=10) paths.
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	window := defaultPerfWindow
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "window must be a positive duration such as 15m"})
			return
		}
		window = d
	}
	topN := defaultPerfTopN
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "top must be a positive integer"})
			return
		}
		topN = min(n, maxPerfTopN)
	}

	writeJSON(w, http.StatusOK, s.collector.Snapshot(s.now().Add(-window), topN))
}

func (s *server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, apperr.NotFound("Page not found."), "/")
}
