package alerts

import (
	"strconv"
	"strings"

	"github.com/themclloyd/storefy-pulse/internal/metrics"
)

// evalCondition evaluates a rule condition string against a Snapshot.
//
// Supported expressions (field operator value):
//
//	ltv_cac < 1
//	acquisition_rate < 2
//	new_customers == 0
//	gross_margin < 20
//	net_margin < 10
//	margin_progress < 80
//	uptime_pct < 99
//	health == critical
//	health == warning
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, snap *metrics.Snapshot) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if field == "health" {
		if op == "==" {
			return string(snap.Health) == rhs, 0
		}
		return false, 0
	}

	v := numericField(field, snap)
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// numericField maps a field name to its value in the snapshot. Derived
// ratios use the same zero-denominator substitution as the classifier.
func numericField(field string, snap *metrics.Snapshot) float64 {
	acq, mar := snap.Acquisition, snap.Margin
	switch field {
	case "ltv_cac":
		if acq.AcquisitionCost <= 0 {
			return 0
		}
		return acq.LifetimeValue / acq.AcquisitionCost
	case "acquisition_rate":
		if acq.TotalCustomers <= 0 {
			return 0
		}
		return float64(acq.NewCustomers) / float64(acq.TotalCustomers) * 100
	case "new_customers":
		return float64(acq.NewCustomers)
	case "gross_margin":
		return mar.GrossMargin
	case "net_margin":
		return mar.NetMargin
	case "margin_progress":
		if mar.TargetMargin <= 0 {
			return 0
		}
		return mar.NetMargin / mar.TargetMargin * 100
	case "uptime_pct":
		return snap.UptimePct
	default:
		return 0
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
