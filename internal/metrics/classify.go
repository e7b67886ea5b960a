package metrics

import "strconv"

// Status thresholds for the LTV/CAC ratio card.
// An LTV/CAC of 3x is the standard unit-economics benchmark; below 1x the
// business loses money on every customer acquired.
const (
	ThresholdLTVGood    = 3.0
	ThresholdLTVWarning = 1.0
)

// Status thresholds for the gross margin card (percentage points).
const (
	ThresholdGrossGood    = 30.0
	ThresholdGrossWarning = 20.0
)

// TargetWarningFactor is the fraction of the target margin below which net
// margin health degrades from warning to critical.
const TargetWarningFactor = 0.8

// ComputeAcquisitionMetrics derives the customer-acquisition cards from raw
// business inputs.
//
// Two cards are emitted:
//
//	"New Customers"  — value = NewCustomers, change = acquisition rate
//	                   (new / total × 100), increase when the rate is ≥ 0.
//	"LTV/CAC Ratio"  — value = LifetimeValue / AcquisitionCost,
//	                   good ≥3, warning ≥1, critical below.
//
// All divisions substitute 0 on a zero denominator; the function never
// panics. Inputs are not validated — negative or non-finite values produce
// numerically odd but non-crashing cards (caller's responsibility).
func ComputeAcquisitionMetrics(in AcquisitionInput) []Card {
	acquisitionRate := ratioOf(float64(in.NewCustomers), float64(in.TotalCustomers)) * 100
	ltvToCac := ratioOf(in.LifetimeValue, in.AcquisitionCost)

	changeType := ChangeIncrease
	if acquisitionRate < 0 {
		changeType = ChangeDecrease
	}

	return []Card{
		{
			Label:      "New Customers",
			Value:      float64(in.NewCustomers),
			Format:     FormatNumber,
			Change:     f64(acquisitionRate),
			ChangeType: changeType,
			Subtitle:   strconv.Itoa(in.TotalCustomers) + " total customers",
		},
		{
			Label:  "LTV/CAC Ratio",
			Value:  ltvToCac,
			Format: FormatNumber,
			Status: ltvStatus(ltvToCac),
		},
	}
}

// ComputeMarginMetrics derives the profit-margin cards from raw margin
// percentages.
//
// Two cards are emitted:
//
//	"Gross Margin" — good ≥30, warning ≥20, critical below.
//	"Net Margin"   — status is margin health relative to the target:
//	                 good at or above target, warning at ≥80% of target,
//	                 critical below. Progress is net/target × 100.
//
// A zero TargetMargin yields progress 0 rather than a non-finite value,
// consistent with the zero-denominator policy everywhere else in this
// package.
func ComputeMarginMetrics(in MarginInput) []Card {
	health := marginHealth(in.NetMargin, in.TargetMargin)
	progress := ratioOf(in.NetMargin, in.TargetMargin) * 100

	return []Card{
		{
			Label:  "Gross Margin",
			Value:  in.GrossMargin,
			Format: FormatPercentage,
			Status: grossStatus(in.GrossMargin),
		},
		{
			Label:    "Net Margin",
			Value:    in.NetMargin,
			Format:   FormatPercentage,
			Status:   health,
			Target:   f64(in.TargetMargin),
			Progress: f64(progress),
		},
	}
}

// ltvStatus maps an LTV/CAC ratio to a status.
func ltvStatus(ratio float64) Status {
	switch {
	case ratio >= ThresholdLTVGood:
		return StatusGood
	case ratio >= ThresholdLTVWarning:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// grossStatus maps a gross margin percentage to a status.
func grossStatus(margin float64) Status {
	switch {
	case margin >= ThresholdGrossGood:
		return StatusGood
	case margin >= ThresholdGrossWarning:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// marginHealth classifies net margin against the configured target.
func marginHealth(net, target float64) Status {
	switch {
	case net >= target:
		return StatusGood
	case net >= target*TargetWarningFactor:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// ratioOf returns num/den, or 0 when den is not positive.
func ratioOf(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// f64 returns a pointer to v, for the Card optional fields.
func f64(v float64) *float64 { return &v }
