package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aang-iot/aircontrol/internal/models"
	"github.com/aang-iot/aircontrol/internal/storage"
	"github.com/rs/zerolog"
)

// APIHandler handles HTTP API requests for the dashboard
type APIHandler struct {
	store          EvaluationStore
	history        HistoricalStore // nil when persistence is disabled
	retentionStats func() storage.RetentionStats
	logger         zerolog.Logger
}

// NewAPIHandler creates an API handler backed only by the memory store
func NewAPIHandler(store EvaluationStore, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		store:  store,
		logger: logger,
	}
}

// NewAPIHandlerWithHistory creates an API handler that can also serve
// historical data from the database
func NewAPIHandlerWithHistory(store EvaluationStore, history HistoricalStore, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		store:   store,
		history: history,
		logger:  logger,
	}
}

// controllerID resolves the controller to serve, defaulting to the first known one
func (api *APIHandler) controllerID(r *http.Request) string {
	id := r.URL.Query().Get("controller_id")
	if id != "" {
		return id
	}
	ids := api.store.GetControllerIDs()
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// HandleCurrent returns the current evaluation for a controller
func (api *APIHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	id := api.controllerID(r)
	if id == "" {
		http.Error(w, "No controllers found", http.StatusNotFound)
		return
	}

	eval := api.store.GetCurrent(id)
	if eval == nil {
		http.Error(w, "No evaluations available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eval)
}

// HandleHistory returns recent evaluations for charting.
// With before/after query params and a database configured it scrolls
// through persisted history, otherwise it serves the memory store.
func (api *APIHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id := api.controllerID(r)
	if id == "" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.Evaluation{})
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if api.history != nil {
		if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
			before, err := time.Parse(time.RFC3339, beforeStr)
			if err != nil {
				http.Error(w, "Invalid before timestamp", http.StatusBadRequest)
				return
			}
			evals, err := api.history.GetEvaluationsBefore(id, before, limit)
			if err != nil {
				api.logger.Error().Err(err).Msg("History query failed")
				http.Error(w, "History query failed", http.StatusInternalServerError)
				return
			}
			writeJSON(w, evals)
			return
		}
		if afterStr := r.URL.Query().Get("after"); afterStr != "" {
			after, err := time.Parse(time.RFC3339, afterStr)
			if err != nil {
				http.Error(w, "Invalid after timestamp", http.StatusBadRequest)
				return
			}
			evals, err := api.history.GetEvaluationsAfter(id, after, limit)
			if err != nil {
				api.logger.Error().Err(err).Msg("History query failed")
				http.Error(w, "History query failed", http.StatusInternalServerError)
				return
			}
			writeJSON(w, evals)
			return
		}
	}

	writeJSON(w, api.store.GetLatest(id, limit))
}

// SetRetentionStats wires in the retention cleaner's stats so /api/stats
// can report how many evaluations have been pruned from the database
func (api *APIHandler) SetRetentionStats(fn func() storage.RetentionStats) {
	api.retentionStats = fn
}

// StatsResponse combines live-store and retention statistics
type StatsResponse struct {
	Store     StoreStats              `json:"store"`
	Retention *storage.RetentionStats `json:"retention,omitempty"`
}

// HandleStats returns store statistics, plus retention statistics when
// persistence is enabled
func (api *APIHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Store: api.store.Stats()}
	if api.retentionStats != nil {
		stats := api.retentionStats()
		resp.Retention = &stats
	}
	writeJSON(w, resp)
}

// HandleDailyStats returns aggregated daily statistics from the database
func (api *APIHandler) HandleDailyStats(w http.ResponseWriter, r *http.Request) {
	if api.history == nil {
		http.Error(w, "Historical storage not configured", http.StatusNotImplemented)
		return
	}

	id := api.controllerID(r)
	if id == "" {
		http.Error(w, "No controllers found", http.StatusNotFound)
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -7)
	if startStr := r.URL.Query().Get("start"); startStr != "" {
		if parsed, err := time.Parse(time.RFC3339, startStr); err == nil {
			start = parsed
		}
	}
	if endStr := r.URL.Query().Get("end"); endStr != "" {
		if parsed, err := time.Parse(time.RFC3339, endStr); err == nil {
			end = parsed
		}
	}

	stats, err := api.history.GetDailyStats(id, start, end)
	if err != nil {
		api.logger.Error().Err(err).Msg("Daily stats query failed")
		http.Error(w, "Daily stats query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

// HandleControllers returns the known controller IDs
func (api *APIHandler) HandleControllers(w http.ResponseWriter, r *http.Request) {
	ids := api.store.GetControllerIDs()

	if api.history != nil {
		dbIDs, err := api.history.GetControllerIDs()
		if err == nil {
			ids = mergeIDs(ids, dbIDs)
		}
	}

	writeJSON(w, ids)
}

// DashboardData contains all data for the dashboard
type DashboardData struct {
	Current       *models.Evaluation `json:"current"`
	Stats         StoreStats         `json:"stats"`
	ControllerIDs []string           `json:"controller_ids"`
	LastUpdate    time.Time          `json:"last_update"`
}

// HandleDashboardData returns combined data for the dashboard in one call
func (api *APIHandler) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	ids := api.store.GetControllerIDs()

	var current *models.Evaluation
	if len(ids) > 0 {
		requested := r.URL.Query().Get("controller_id")
		if requested != "" {
			current = api.store.GetCurrent(requested)
		} else {
			current = api.store.GetCurrent(ids[0])
		}
	}

	writeJSON(w, DashboardData{
		Current:       current,
		Stats:         api.store.Stats(),
		ControllerIDs: ids,
		LastUpdate:    time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// mergeIDs combines two ID lists, preserving order and dropping duplicates
func mergeIDs(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))
	for _, id := range append(a, b...) {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
