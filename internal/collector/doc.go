// Package collector polls business data sources and derives dashboard
// snapshots from them.
//
// Two source types are supported: "storefy" reads a Prometheus text
// exposition of business counters (storefy_customers_total,
// storefy_revenue_total, ...); "json" reads the same counters from a plain
// JSON report endpoint.
//
// engine.go maintains per-source counter baselines: window figures such as
// new customers, window revenue, and CAC come from the delta between two
// consecutive reports, and an uptime percentage is tracked over the last
// 20 polls. The derived inputs are handed to the metrics package for
// classification.
package collector
