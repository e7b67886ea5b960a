package metrics

import "time"

// Format tells the display layer how to render a card value.
type Format string

// Card value formats.
const (
	FormatNumber     Format = "number"
	FormatPercentage Format = "percentage"
)

// Status is the discrete health classification attached to cards and
// snapshots.
type Status string

// Status values, ordered worst to best. StatusUnknown appears only at the
// snapshot level — a card always classifies to one of the other three.
const (
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusGood     Status = "good"
	StatusUnknown  Status = "unknown"
)

// ChangeType marks the direction of a card's period-over-period change.
type ChangeType string

// Change directions.
const (
	ChangeIncrease ChangeType = "increase"
	ChangeDecrease ChangeType = "decrease"
)

// AcquisitionInput holds the raw customer-acquisition figures for one
// reporting window. Values are never mutated by this package.
type AcquisitionInput struct {
	// NewCustomers is the number of customers acquired in the window.
	NewCustomers int `json:"new_customers"`

	// TotalCustomers is the total customer count at the end of the window.
	TotalCustomers int `json:"total_customers"`

	// AcquisitionCost is the average cost to acquire one customer (CAC).
	AcquisitionCost float64 `json:"acquisition_cost"`

	// LifetimeValue is the average customer lifetime value (LTV).
	LifetimeValue float64 `json:"lifetime_value"`
}

// MarginInput holds the raw profit-margin percentages for one reporting
// window. All fields are percentage points (e.g. 22.5 for 22.5%).
type MarginInput struct {
	GrossMargin  float64 `json:"gross_margin"`
	NetMargin    float64 `json:"net_margin"`
	TargetMargin float64 `json:"target_margin"`
}

// Card is one displayable, classified metric record. Optional fields are
// explicit: pointer fields and empty-string enums mean "absent", never a
// meaningful zero.
type Card struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Format Format  `json:"format"`

	// Status is empty for cards that carry no health classification.
	Status Status `json:"status,omitempty"`

	// Change is the period-over-period delta, in the unit implied by Format.
	Change     *float64   `json:"change,omitempty"`
	ChangeType ChangeType `json:"change_type,omitempty"`

	// Subtitle is a secondary display line (e.g. the total count backing a
	// per-window figure).
	Subtitle string `json:"subtitle,omitempty"`

	// Target and Progress are set on cards measured against a goal.
	// Progress is percent-of-target.
	Target   *float64 `json:"target,omitempty"`
	Progress *float64 `json:"progress,omitempty"`
}

// Snapshot is the fully-derived dashboard state for one business data
// source, ready for the store, the REST API, and the WebSocket hub.
type Snapshot struct {
	SourceID   string    `json:"source_id"`
	SourceName string    `json:"source_name,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// The raw inputs the cards were derived from, kept for the API and for
	// alert-rule evaluation.
	Acquisition AcquisitionInput `json:"acquisition"`
	Margin      MarginInput      `json:"margin"`

	// Cards are the classified metric records, acquisition cards first.
	Cards []Card `json:"cards"`

	// Health is the worst card status, or StatusUnknown when the source
	// could not be read this cycle.
	Health Status `json:"health"`

	// UptimePct is the share of recent collection cycles that produced data.
	UptimePct float64 `json:"uptime_pct"`

	// ErrorMessage is non-empty when the collection itself failed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// BuildSnapshot runs both classifiers over the inputs and assembles a
// Snapshot with its overall health.
func BuildSnapshot(sourceID, sourceName string, acq AcquisitionInput, mar MarginInput, ts time.Time) *Snapshot {
	cards := append(ComputeAcquisitionMetrics(acq), ComputeMarginMetrics(mar)...)
	return &Snapshot{
		SourceID:    sourceID,
		SourceName:  sourceName,
		Timestamp:   ts,
		Acquisition: acq,
		Margin:      mar,
		Cards:       cards,
		Health:      WorstStatus(cards),
	}
}

// WorstStatus returns the lowest status present across cards. Cards without
// a status are skipped; if no card carries one, the result is StatusGood.
func WorstStatus(cards []Card) Status {
	worst := StatusGood
	for _, c := range cards {
		switch c.Status {
		case StatusCritical:
			return StatusCritical
		case StatusWarning:
			worst = StatusWarning
		}
	}
	return worst
}
