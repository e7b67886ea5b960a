package api

import (
	"time"

	"github.com/themclloyd/storefy-pulse/internal/alerts"
	"github.com/themclloyd/storefy-pulse/internal/metrics"
	"github.com/themclloyd/storefy-pulse/internal/store"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Health         metrics.Status `json:"health"`
	DashboardCount int            `json:"dashboard_count"`
	GoodCount      int            `json:"good_count"`
	WarningCount   int            `json:"warning_count"`
	CriticalCount  int            `json:"critical_count"`
	UnknownCount   int            `json:"unknown_count"`
	AlertCount     int            `json:"alert_count"`
}

// DashboardResponse is one source's dashboard in GET /api/v1/dashboards or
// GET /api/v1/dashboards/{id}.
type DashboardResponse struct {
	SourceID     string         `json:"source_id"`
	SourceName   string         `json:"source_name,omitempty"`
	Health       metrics.Status `json:"health"`
	UptimePct    float64        `json:"uptime_pct"`
	ErrorMessage string         `json:"error_message,omitempty"`

	Cards []metrics.Card `json:"cards"`

	// Raw inputs behind the cards, omitted in compact (mobile) payloads.
	Acquisition *metrics.AcquisitionInput `json:"acquisition,omitempty"`
	Margin      *metrics.MarginInput      `json:"margin,omitempty"`

	// Insights are plain-English hints, omitted in compact payloads.
	Insights []Insight `json:"insights,omitempty"`

	LastSeen string `json:"last_seen"` // RFC3339
}

// SnapshotResponse is the payload for GET /api/v1/snapshot and the
// WebSocket broadcast envelope body.
type SnapshotResponse struct {
	Dashboards  []DashboardResponse `json:"dashboards"`
	GeneratedAt string              `json:"generated_at"` // RFC3339
}

// Compact returns a copy of s with the heavy per-dashboard detail (raw
// inputs, insights) stripped, for clients on small viewports.
func (s SnapshotResponse) Compact() SnapshotResponse {
	out := SnapshotResponse{
		Dashboards:  make([]DashboardResponse, len(s.Dashboards)),
		GeneratedAt: s.GeneratedAt,
	}
	for i, d := range s.Dashboards {
		d.Acquisition = nil
		d.Margin = nil
		d.Insights = nil
		out.Dashboards[i] = d
	}
	return out
}

// ReportRequest is the body of POST /api/v1/report — push ingestion for
// backends that submit their own figures instead of being polled.
type ReportRequest struct {
	SourceID    string                   `json:"source_id"`
	SourceName  string                   `json:"source_name"`
	Acquisition metrics.AcquisitionInput `json:"acquisition"`
	Margin      metrics.MarginInput      `json:"margin"`
}

// ReportResponse is the body returned by POST /api/v1/report.
type ReportResponse struct {
	OK     bool           `json:"ok"`
	Health metrics.Status `json:"health"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// BuildSnapshot assembles the full dashboard snapshot from the store.
// Shared by the /api/v1/snapshot handler and the WebSocket hub.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	dashboards := make([]DashboardResponse, 0, len(entries))
	for _, e := range entries {
		dashboards = append(dashboards, toDashboardResponse(e))
	}
	return SnapshotResponse{
		Dashboards:  dashboards,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// toDashboardResponse maps a store.Entry to its JSON representation.
func toDashboardResponse(e *store.Entry) DashboardResponse {
	snap := e.Snapshot
	acq, mar := snap.Acquisition, snap.Margin
	return DashboardResponse{
		SourceID:     snap.SourceID,
		SourceName:   snap.SourceName,
		Health:       snap.Health,
		UptimePct:    snap.UptimePct,
		ErrorMessage: snap.ErrorMessage,
		Cards:        snap.Cards,
		Acquisition:  &acq,
		Margin:       &mar,
		Insights:     computeInsights(snap),
		LastSeen:     e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// alertCount is the number of active alerts, tolerating a nil engine.
func alertCount(eng *alerts.Engine) int {
	if eng == nil {
		return 0
	}
	return len(eng.Active())
}
