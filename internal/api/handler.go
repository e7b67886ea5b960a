package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/themclloyd/storefy-pulse/internal/alerts"
	"github.com/themclloyd/storefy-pulse/internal/metrics"
	"github.com/themclloyd/storefy-pulse/internal/store"
)

// maxReportBody caps POST /api/v1/report request bodies.
const maxReportBody = 1 << 20

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It reads dashboard state from the snapshot store and returns JSON.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine

	// targetMargin is the configured net-margin goal, applied to pushed
	// reports that don't carry their own target.
	targetMargin float64

	mux *http.ServeMux
}

// New creates a Handler wired to the given store and alert engine and
// registers all routes.
func New(st *store.Store, alertEngine *alerts.Engine, targetMargin float64) http.Handler {
	h := &Handler{store: st, alerts: alertEngine, targetMargin: targetMargin, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/dashboards", h.listDashboards)
	h.mux.HandleFunc("/api/v1/dashboards/", h.getDashboard) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)
	h.mux.HandleFunc("/api/v1/report", h.report)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — overall status and per-state counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{
		DashboardCount: len(entries),
		AlertCount:     alertCount(h.alerts),
	}

	if len(entries) == 0 {
		resp.Health = metrics.StatusUnknown
		jsonResp(w, http.StatusOK, resp)
		return
	}

	worst := metrics.StatusGood
	for _, e := range entries {
		switch e.Snapshot.Health {
		case metrics.StatusGood:
			resp.GoodCount++
		case metrics.StatusWarning:
			resp.WarningCount++
			if worst == metrics.StatusGood {
				worst = metrics.StatusWarning
			}
		case metrics.StatusCritical:
			resp.CriticalCount++
			worst = metrics.StatusCritical
		default:
			resp.UnknownCount++
		}
	}

	resp.Health = worst
	jsonResp(w, http.StatusOK, resp)
}

// listDashboards returns GET /api/v1/dashboards — all live dashboards.
func (h *Handler) listDashboards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]DashboardResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDashboardResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// getDashboard returns GET /api/v1/dashboards/{id} — a single dashboard.
func (h *Handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/dashboards/")
	if id == "" {
		// Redirect bare /api/v1/dashboards/ to list handler.
		h.listDashboards(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "dashboard not found")
		return
	}
	// Exclude stale entries — treat them as not found.
	if time.Since(e.UpdatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "dashboard not found")
		return
	}

	jsonResp(w, http.StatusOK, toDashboardResponse(e))
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// snapshot returns GET /api/v1/snapshot — full JSON dump of all dashboards.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// report handles POST /api/v1/report — push ingestion. The raw figures are
// classified immediately, stored, and run through the alert rules.
func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ReportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReportBody))
	if err := dec.Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceID == "" {
		jsonErr(w, http.StatusBadRequest, "source_id is required")
		return
	}

	mar := req.Margin
	if mar.TargetMargin == 0 {
		mar.TargetMargin = h.targetMargin
	}

	snap := metrics.BuildSnapshot(req.SourceID, req.SourceName, req.Acquisition, mar, time.Now().UTC())
	snap.UptimePct = 100 // pushed reports carry no poll history

	h.store.Put(snap)
	if h.alerts != nil {
		h.alerts.Evaluate(snap)
	}

	jsonResp(w, http.StatusOK, ReportResponse{OK: true, Health: snap.Health})
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
