package collector

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/themclloyd/storefy-pulse/internal/metrics"
)

// uptimeWindow is the number of recent poll outcomes tracked for uptime %.
const uptimeWindow = 20

// Engine maintains per-source counter baselines across poll cycles and
// derives the classifier inputs from the deltas between two consecutive
// reports.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	states map[string]*sourceState
}

// NewEngine returns a ready-to-use Engine.
func NewEngine() *Engine {
	return &Engine{states: make(map[string]*sourceState)}
}

// Process ingests a Report and returns the derived dashboard snapshot.
//
// targetMargin is the configured net-margin goal; now is passed explicitly
// so callers (and tests) control the clock. Use time.Now() in production.
//
// The first call for a source records the baseline counter values and
// returns a Snapshot with unknown health — window figures cannot be
// computed without a delta.
func (e *Engine) Process(rep *Report, targetMargin float64, now time.Time) *metrics.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stateFor(rep.SourceID)
	success := rep.Err == nil
	st.recordPoll(success)

	if !success {
		slog.Warn("collector: fetch failed, marking unknown",
			"source", rep.SourceID, "err", rep.Err)
		return &metrics.Snapshot{
			SourceID:     rep.SourceID,
			SourceName:   rep.SourceName,
			Timestamp:    now,
			Health:       metrics.StatusUnknown,
			UptimePct:    st.uptimePct(),
			ErrorMessage: rep.Err.Error(),
		}
	}

	if !st.hasBaseline {
		// First successful fetch — store counters but report unknown, since
		// no window figures exist yet.
		st.updateBaseline(rep, now)
		return &metrics.Snapshot{
			SourceID:   rep.SourceID,
			SourceName: rep.SourceName,
			Timestamp:  now,
			Health:     metrics.StatusUnknown,
			UptimePct:  st.uptimePct(),
		}
	}

	// Window deltas since the previous report. Counter resets (upstream
	// restart) clamp to 0 rather than going negative.
	newCustomers := deltaOf(rep.CustomersTotal, st.prev.CustomersTotal)
	revenue := deltaOf(rep.RevenueTotal, st.prev.RevenueTotal)
	cogs := deltaOf(rep.COGSTotal, st.prev.COGSTotal)
	opex := deltaOf(rep.OpexTotal, st.prev.OpexTotal)
	spend := deltaOf(rep.MarketingSpendTotal, st.prev.MarketingSpendTotal)

	var grossMargin, netMargin float64
	if revenue > 0 {
		grossMargin = (revenue - cogs) / revenue * 100
		netMargin = (revenue - cogs - opex - spend) / revenue * 100
	}

	// CAC for the window: marketing spend per customer acquired.
	var cac float64
	if newCustomers > 0 {
		cac = spend / newCustomers
	}

	acq := metrics.AcquisitionInput{
		NewCustomers:    int(math.Round(newCustomers)),
		TotalCustomers:  int(math.Round(rep.CustomersTotal)),
		AcquisitionCost: cac,
		LifetimeValue:   rep.AvgLifetimeValue,
	}
	mar := metrics.MarginInput{
		GrossMargin:  grossMargin,
		NetMargin:    netMargin,
		TargetMargin: targetMargin,
	}

	snap := metrics.BuildSnapshot(rep.SourceID, rep.SourceName, acq, mar, now)
	snap.UptimePct = st.uptimePct()

	st.updateBaseline(rep, now)
	return snap
}

// sourceState holds per-source counter baselines and uptime history.
type sourceState struct {
	prev        *Report
	prevTime    time.Time
	hasBaseline bool
	history     []bool // circular buffer of poll outcomes, newest last
}

func (e *Engine) stateFor(id string) *sourceState {
	if st, ok := e.states[id]; ok {
		return st
	}
	st := &sourceState{}
	e.states[id] = st
	return st
}

func (st *sourceState) updateBaseline(rep *Report, now time.Time) {
	if rep.Err == nil {
		st.prev = rep
		st.prevTime = now
		st.hasBaseline = true
	}
}

func (st *sourceState) recordPoll(success bool) {
	if len(st.history) >= uptimeWindow {
		st.history = st.history[1:]
	}
	st.history = append(st.history, success)
}

func (st *sourceState) uptimePct() float64 {
	if len(st.history) == 0 {
		return 100 // assume up before first observation
	}
	var ok int
	for _, s := range st.history {
		if s {
			ok++
		}
	}
	return float64(ok) / float64(len(st.history)) * 100
}

// deltaOf returns the positive counter delta between current and previous.
// If current < previous (counter reset after restart), returns 0.
func deltaOf(current, previous float64) float64 {
	d := current - previous
	if d < 0 {
		return 0
	}
	return d
}
