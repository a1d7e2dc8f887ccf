package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/corpuslint/internal/history"
)

// handleScan runs a fresh scan of the configured root and returns the
// full report. Recording to history happens when a store is configured.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	run, err := s.scanner.Scan(r.Context(), s.cfg.Root)
	if err != nil {
		jsonError(w, "scan failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if s.store != nil {
		if err := s.store.RecordRun(r.Context(), run); err != nil {
			s.log.Error("record run failed", "run_id", run.ID, "error", err)
		}
	}

	writeJSON(w, map[string]any{
		"run_id":      run.ID,
		"root":        run.Root,
		"started_at":  run.StartedAt,
		"duration_ms": run.Duration.Milliseconds(),
		"report":      run.Report,
	})
}

// handleListRuns lists recent recorded runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "run history is not configured", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []history.RunSummary{}
	}
	writeJSON(w, map[string]any{"runs": runs})
}

// handleGetRun returns one recorded run with its document reports.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, "run history is not configured", http.StatusNotFound)
		return
	}

	runID := chi.URLParam(r, "runID")
	summary, docs, err := s.store.GetRun(r.Context(), runID)
	if errors.Is(err, history.ErrNotFound) {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"run":       summary,
		"documents": docs,
	})
}

// handleScanStats returns parse latency percentiles for recent scans.
func (s *Server) handleScanStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stats.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
