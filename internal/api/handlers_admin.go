package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/dofcatalog/internal/reindex"
)

// handleReindex runs a page-count sweep over the local document root and
// returns its report.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	report, err := s.sweeper.Run(r.Context(), "manual")
	if errors.Is(err, reindex.ErrSweepRunning) {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil && report != nil {
		// Interrupted sweeps still record a partial report.
		s.log.Error("reindex interrupted", "run_id", report.RunID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "reindex interrupted",
			"run_id": report.RunID,
		})
		return
	}
	if err != nil {
		s.log.Error("reindex failed", "error", err)
		jsonError(w, "failed to update pages_count", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReindexRun(w http.ResponseWriter, r *http.Request) {
	report := s.sweeper.Runs().Get(chi.URLParam(r, "runID"))
	if report == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRemoteStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "remote fetch stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window": s.cfg.RemoteStatsWindow.String(),
		"stats":  s.stats.Snapshot(),
	})
}
