// Package metrics turns raw business figures into classified, displayable
// metric cards.
//
// classify.go provides the pure ComputeAcquisitionMetrics and
// ComputeMarginMetrics functions. Both are stateless, perform no I/O, and
// guard every division against a zero denominator by substituting 0 —
// identical inputs always produce identical cards.
//
// Card thresholds: LTV/CAC good ≥3 / warning ≥1; gross margin good ≥30 /
// warning ≥20; net margin measured against the configured target, warning
// from 80% of target down.
package metrics
