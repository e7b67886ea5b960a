// Package api implements the REST surface of pulse: dashboard listings,
// overall health, alerts, the full snapshot dump, and push ingestion via
// POST /api/v1/report. insights.go derives the plain-English observations
// shown on each dashboard card.
package api
