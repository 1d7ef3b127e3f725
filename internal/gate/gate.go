// Package gate implements C3, the PnL Gate: day-relative gap% and
// daily PnL% tracking, and the pure RUN/DEGRADED/PAUSED classification
// derived from them. The day-rollover-by-calendar-date bookkeeping is
// grounded on the teacher's internal/risk/overseer.go, which tracks a
// lastResetDate and rolls daily PnL tracking forward when the date
// changes; this package narrows that idiom to exactly the day frame
// described in spec §3/§4.3.
package gate

import (
	"time"

	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// DayFrame is the rolling day-open reference used to compute gap% and
// daily PnL%.
type DayFrame struct {
	DayOpenPrice  float64
	DayOpenEquity float64
	CurrentDate   time.Time
	initialized   bool
}

// Gate tracks the day frame and classifies the current bar's state.
type Gate struct {
	frame DayFrame
}

// New creates a Gate with no day frame yet established; it is set on
// the first bar processed.
func New() *Gate {
	return &Gate{}
}

// Frame returns the current day frame (for reporting/tests).
func (g *Gate) Frame() DayFrame {
	return g.frame
}

// Result is the per-bar output of the gate evaluation.
type Result struct {
	State        types.GateState
	GapPct       float64
	DailyPnLPct  float64
	RolledOver   bool
}

// Evaluate rolls the day frame over if bar's calendar date differs from
// the tracked one (§3: "the roll happens before any gate evaluation
// uses the new bar"), then classifies RUN/DEGRADED/PAUSED per §4.3.
// There is no hysteresis at this layer: recovery is instantaneous when
// thresholds are crossed back, by design (§4.3 rationale — hysteresis
// lives in C4's hard-stop controller instead).
func (g *Gate) Evaluate(policy config.Policy, bar types.Bar, equity float64) Result {
	rolled := g.rollIfNeeded(bar, equity)

	gapPct := 0.0
	if g.frame.DayOpenPrice != 0 {
		gapPct = (bar.Close - g.frame.DayOpenPrice) / g.frame.DayOpenPrice * 100
	}
	dailyPnLPct := 0.0
	if g.frame.DayOpenEquity != 0 {
		dailyPnLPct = (equity - g.frame.DayOpenEquity) / g.frame.DayOpenEquity * 100
	}

	state := classify(policy, gapPct, dailyPnLPct)

	return Result{
		State:       state,
		GapPct:      gapPct,
		DailyPnLPct: dailyPnLPct,
		RolledOver:  rolled,
	}
}

// rollIfNeeded sets day_open_price and day_open_equity exactly once per
// calendar date, at the first bar whose date differs from the tracked
// current_date (§3 invariant), then reports whether a roll happened.
func (g *Gate) rollIfNeeded(bar types.Bar, equity float64) bool {
	barDate := dateOf(bar.Timestamp)

	if !g.frame.initialized {
		g.frame = DayFrame{
			DayOpenPrice:  bar.Open,
			DayOpenEquity: equity,
			CurrentDate:   barDate,
			initialized:   true,
		}
		return true
	}

	if barDate.After(g.frame.CurrentDate) {
		g.frame.DayOpenPrice = bar.Open
		g.frame.DayOpenEquity = equity
		g.frame.CurrentDate = barDate
		return true
	}

	return false
}

func classify(policy config.Policy, gapPct, dailyPnLPct float64) types.GateState {
	if gapPct <= policy.GatePausedGapPct || dailyPnLPct <= policy.GatePausedDailyPnLPct {
		return types.GatePaused
	}
	if gapPct <= policy.GateDegradedGapPct || dailyPnLPct <= policy.GateDegradedDailyPnLPct {
		return types.GateDegraded
	}
	return types.GateRun
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
