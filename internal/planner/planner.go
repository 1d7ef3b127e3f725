// Package planner implements C5, the Order Planner: given the resolved
// band/spread, the indicator snapshot, the gate state, and the stop
// state, it emits the grid/DCA/TP intents for one bar. Grounded on the
// teacher's internal/strategy package's per-signal gating idiom
// (sequential threshold checks producing a single intent) generalized
// from the teacher's many strategy types down to the three order kinds
// this engine recognizes; the grid ladder itself has no direct teacher
// analogue since the teacher's internal/grid/engine.go models absolute
// margin levels rather than a spread-relative ladder, so it is built
// fresh from §4.5.
package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/tranvietduc/hybridgrid-engine/internal/indicators"
	"github.com/tranvietduc/hybridgrid-engine/internal/hardstop"
	"github.com/tranvietduc/hybridgrid-engine/internal/spread"
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// Planner tracks the cross-bar state the §4.5 gates depend on: the last
// grid reference price/timestamp, and the last DCA fill's price plus
// how many bars have elapsed since it.
type Planner struct {
	haveGrid          bool
	lastGridRefPrice  float64
	lastGridTimestamp time.Time

	haveDCAFill          bool
	lastDCAFillPrice     float64
	barsSinceLastDCAFill int
}

// New creates a Planner with no grid or DCA history.
func New() *Planner {
	return &Planner{}
}

// RecordDCAFill must be called by the lifecycle manager whenever a DCA
// order fills, so gates 3 and 4 of §4.5 track the right baseline.
func (p *Planner) RecordDCAFill(fillPrice float64) {
	p.haveDCAFill = true
	p.lastDCAFillPrice = fillPrice
	p.barsSinceLastDCAFill = 0
}

// Plan emits the per-bar plan per §4.5's suppression and gating rules.
func (p *Planner) Plan(policy config.Policy, bar types.Bar, snap indicators.Snapshot, res spread.Resolution, gateState types.GateState, stop hardstop.Stop) types.Plan {
	p.barsSinceLastDCAFill++

	plan := types.Plan{
		Timestamp: bar.Timestamp,
		GateState: gateState,
		Band:      res.Band,
		SpreadPct: res.SpreadPct,
		RefPrice:  bar.Close,
	}

	if stop.Active {
		plan.SLAction = types.StopAction{Stop: true, Reason: stop.Reason}
		return plan
	}
	if gateState == types.GatePaused {
		return plan
	}

	if gateState == types.GateRun && policy.GridEnabled && snap.ATRAvailable {
		plan.GridOrders, plan.KillReplace = p.planGrid(policy, bar, res)
	}
	if policy.DCAEnabled {
		plan.DCAOrders = p.planDCA(policy, bar, snap)
	}
	if policy.TPEnabled {
		plan.TPOrders = p.planTP(policy, bar, snap, res)
	}

	return plan
}

// planGrid implements the §4.5 grid-kill-replace ladder. It only runs
// when gate is RUN; callers gate that separately.
func (p *Planner) planGrid(policy config.Policy, bar types.Bar, res spread.Resolution) ([]types.OrderIntent, bool) {
	refPrice := bar.Close

	drift := math.Inf(1)
	if p.haveGrid && p.lastGridRefPrice != 0 {
		drift = math.Abs(refPrice-p.lastGridRefPrice) / p.lastGridRefPrice * 100
	}

	if p.haveGrid {
		elapsed := bar.Timestamp.Sub(p.lastGridTimestamp)
		if elapsed < policy.GridMinIntervalDuration() {
			return nil, false
		}
	}

	if p.haveGrid && drift < policy.GridKillReplaceThresholdPct {
		return nil, false
	}

	n := policy.GridLevelsPerSide
	orders := make([]types.OrderIntent, 0, n*2)
	for k := 1; k <= n; k++ {
		buyPrice := refPrice * (1 - res.SpreadPct*float64(k)/100)
		orders = append(orders, types.OrderIntent{
			Side:  types.SideBuy,
			Price: buyPrice,
			Tag:   fmt.Sprintf("grid_buy_%d", k),
		})
	}
	for k := 1; k <= n; k++ {
		sellPrice := refPrice * (1 + res.SpreadPct*float64(k)/100)
		orders = append(orders, types.OrderIntent{
			Side:  types.SideSell,
			Price: sellPrice,
			Tag:   fmt.Sprintf("grid_sell_%d", k),
		})
	}

	p.haveGrid = true
	p.lastGridRefPrice = refPrice
	p.lastGridTimestamp = bar.Timestamp

	return orders, true
}

// planDCA implements the §4.5 DCA gates. Runs in RUN or DEGRADED;
// callers only suppress it in PAUSED or on hard stop.
func (p *Planner) planDCA(policy config.Policy, bar types.Bar, snap indicators.Snapshot) []types.OrderIntent {
	if !snap.RSIAvailable || snap.RSI >= policy.DCARSIThreshold {
		return nil
	}
	if policy.DCAUseEMAGate {
		if !snap.EMAFastAvailable || bar.Close >= snap.EMAFast {
			return nil
		}
	}
	if p.haveDCAFill && p.barsSinceLastDCAFill < policy.DCACooldownBars {
		return nil
	}
	if p.haveDCAFill && p.lastDCAFillPrice != 0 {
		distPct := math.Abs(bar.Close-p.lastDCAFillPrice) / p.lastDCAFillPrice * 100
		if distPct < policy.DCAMinDistanceFromLastFillPct {
			return nil
		}
	}

	price := bar.Close * (1 - policy.DCAPriceOffsetPct/100)
	return []types.OrderIntent{{
		Side:  types.SideBuy,
		Price: price,
		Tag:   fmt.Sprintf("dca_rsi_%.0f", snap.RSI),
	}}
}

// planTP implements the §4.5 TP gates. Runs in RUN or DEGRADED.
func (p *Planner) planTP(policy config.Policy, bar types.Bar, snap indicators.Snapshot, res spread.Resolution) []types.OrderIntent {
	if !snap.RSIAvailable || snap.RSI <= policy.TPRSIThreshold {
		return nil
	}
	if !snap.EMAFastAvailable || bar.Close <= snap.EMAFast {
		return nil
	}

	price := bar.Close * (1 + res.TPSpreadPct/100)
	return []types.OrderIntent{{
		Side:  types.SideSell,
		Price: price,
		Tag:   fmt.Sprintf("tp_rsi_%.0f_%s", snap.RSI, res.Band),
	}}
}
