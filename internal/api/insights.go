package api

import (
	"fmt"

	"github.com/themclloyd/storefy-pulse/internal/metrics"
)

// Insight is one human-readable observation about a dashboard. The UI shows
// these as chips on the dashboard card; clicking one shows Detail — written
// in plain English for a store operator, not an analyst.
type Insight struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip (≤ 5 words).
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this insight.
	Value *float64 `json:"value,omitempty"`
}

// computeInsights derives plain-English insights from a snapshot.
// Insights are ordered: critical first, then warnings, then info.
func computeInsights(snap *metrics.Snapshot) []Insight {
	var insights []Insight

	// Collection failure — nothing else is trustworthy.
	if snap.ErrorMessage != "" {
		detail := fmt.Sprintf(
			"The collector couldn't read data from this source. "+
				"It last tried and got: \"%s\". "+
				"Check that the endpoint is reachable, your credentials are correct, "+
				"and the backend is running. Until this is resolved, the numbers "+
				"below are from the last successful read.",
			snap.ErrorMessage,
		)
		insights = append(insights, Insight{
			Key:    "fetch_failed",
			Level:  "critical",
			Title:  "Can't reach source",
			Detail: detail,
		})
		return insights
	}

	// Unknown health with no cards: first cycle, no window yet.
	if snap.Health == metrics.StatusUnknown && len(snap.Cards) == 0 {
		insights = append(insights, Insight{
			Key:   "warming_up",
			Level: "info",
			Title: "Warming up",
			Detail: "The first data point was just collected. Window figures like " +
				"new customers and margins are computed from the difference between " +
				"two consecutive reads, so the cards will fill in after the next " +
				"poll cycle. No action needed.",
		})
		return insights
	}

	acq, mar := snap.Acquisition, snap.Margin

	// Unit economics.
	ltvCac := 0.0
	if acq.AcquisitionCost > 0 {
		ltvCac = acq.LifetimeValue / acq.AcquisitionCost
	}
	switch {
	case acq.AcquisitionCost > 0 && ltvCac < metrics.ThresholdLTVWarning:
		v := ltvCac
		insights = append(insights, Insight{
			Key:   "ltv_cac_underwater",
			Level: "critical",
			Title: fmt.Sprintf("%.1fx LTV/CAC", ltvCac),
			Detail: fmt.Sprintf(
				"You are spending more to acquire a customer (%.2f) than that "+
					"customer is worth (%.2f). Every new customer loses money at "+
					"this rate. Either acquisition cost has spiked — check recent "+
					"campaign spend — or lifetime value has dropped. Pausing the "+
					"worst-performing channels is usually the fastest fix.",
				acq.AcquisitionCost, acq.LifetimeValue,
			),
			Value: &v,
		})
	case acq.AcquisitionCost > 0 && ltvCac < metrics.ThresholdLTVGood:
		v := ltvCac
		insights = append(insights, Insight{
			Key:   "ltv_cac_thin",
			Level: "warning",
			Title: fmt.Sprintf("%.1fx LTV/CAC", ltvCac),
			Detail: fmt.Sprintf(
				"LTV/CAC is %.1fx. You're profitable per customer, but below the "+
					"3x benchmark that leaves room for overheads and payback time. "+
					"Watch whether this is trending down across windows.",
				ltvCac,
			),
			Value: &v,
		})
	}

	// Margin versus target.
	if mar.TargetMargin > 0 && mar.NetMargin < mar.TargetMargin {
		v := mar.NetMargin / mar.TargetMargin * 100
		level := "warning"
		if mar.NetMargin < mar.TargetMargin*metrics.TargetWarningFactor {
			level = "critical"
		}
		insights = append(insights, Insight{
			Key:   "net_margin_below_target",
			Level: level,
			Title: fmt.Sprintf("%.0f%% of margin target", v),
			Detail: fmt.Sprintf(
				"Net margin is %.1f%% against a target of %.1f%%. Gross margin is "+
					"%.1f%%, so the gap is %s. Compare this window's operating and "+
					"marketing spend to the previous one to find what moved.",
				mar.NetMargin, mar.TargetMargin, mar.GrossMargin, gapCause(mar),
			),
			Value: &v,
		})
	}

	// Weak gross margin is a pricing/COGS problem regardless of target.
	if mar.GrossMargin < metrics.ThresholdGrossWarning {
		v := mar.GrossMargin
		insights = append(insights, Insight{
			Key:   "gross_margin_weak",
			Level: "warning",
			Title: fmt.Sprintf("%.0f%% gross margin", mar.GrossMargin),
			Detail: fmt.Sprintf(
				"Gross margin is %.1f%%, below the 20%% floor. This is a pricing "+
					"or cost-of-goods problem — no amount of overhead trimming "+
					"fixes it. Check for recent supplier price changes or heavy "+
					"discounting in this window.",
				mar.GrossMargin,
			),
			Value: &v,
		})
	}

	// No growth this window.
	if acq.NewCustomers == 0 && acq.TotalCustomers > 0 {
		insights = append(insights, Insight{
			Key:   "no_new_customers",
			Level: "info",
			Title: "No new customers",
			Detail: "No customers were acquired in this window. For a short window " +
				"this can be normal; if it persists across several windows while " +
				"marketing spend continues, acquisition is broken somewhere.",
		})
	}

	// Collection reliability.
	if snap.UptimePct < 100 && snap.UptimePct > 0 {
		v := snap.UptimePct
		level := "info"
		switch {
		case snap.UptimePct < 70:
			level = "critical"
		case snap.UptimePct < 90:
			level = "warning"
		}
		insights = append(insights, Insight{
			Key:   "uptime",
			Level: level,
			Title: fmt.Sprintf("%.0f%% data uptime", snap.UptimePct),
			Detail: fmt.Sprintf(
				"The source answered %.0f%% of recent polls (last 20 tracked). "+
					"Anything below 100%% means some windows were computed over a "+
					"longer span than configured, which smooths out short-lived "+
					"swings. Look for backend restarts or network issues.",
				snap.UptimePct,
			),
			Value: &v,
		})
	}

	// All clear.
	if len(insights) == 0 {
		insights = append(insights, Insight{
			Key:   "healthy",
			Level: "ok",
			Title: "All clear",
			Detail: fmt.Sprintf(
				"Unit economics are solid (%.1fx LTV/CAC) and net margin is at or "+
					"above target. Keep an eye on the acquisition trend — a "+
					"healthy margin on a shrinking customer base doesn't stay "+
					"healthy long.",
				ltvCac,
			),
		})
	}

	return insights
}

// gapCause names the likelier driver of a net-margin shortfall.
func gapCause(mar metrics.MarginInput) string {
	if mar.GrossMargin >= metrics.ThresholdGrossGood {
		return "in operating costs, not in pricing"
	}
	return "partly upstream, in gross margin itself"
}
