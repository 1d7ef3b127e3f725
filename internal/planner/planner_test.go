package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvietduc/hybridgrid-engine/internal/hardstop"
	"github.com/tranvietduc/hybridgrid-engine/internal/indicators"
	"github.com/tranvietduc/hybridgrid-engine/internal/spread"
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func barAt(hour int, close float64) types.Bar {
	ts := time.Date(2026, 1, 1, hour, 0, 0, 0, time.UTC)
	return types.Bar{Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 1, Timestamp: ts}
}

func noStop() hardstop.Stop { return hardstop.Stop{} }

func TestPlan_GridEmissionOnFirstBar(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true, ATRAvailable: true}
	res := spread.Resolve(policy, 1.2, 50)

	plan := p.Plan(policy, barAt(0, 100), snap, res, types.GateRun, noStop())

	require.True(t, plan.KillReplace)
	require.Len(t, plan.GridOrders, 6)
	assert.InDelta(t, 99.50, plan.GridOrders[0].Price, 1e-9)
	assert.InDelta(t, 99.00, plan.GridOrders[1].Price, 1e-9)
	assert.InDelta(t, 98.50, plan.GridOrders[2].Price, 1e-9)
	assert.InDelta(t, 100.50, plan.GridOrders[3].Price, 1e-9)
	assert.InDelta(t, 101.00, plan.GridOrders[4].Price, 1e-9)
	assert.InDelta(t, 101.50, plan.GridOrders[5].Price, 1e-9)
	assert.Equal(t, types.BandMid, plan.Band)
	assert.InDelta(t, 0.5, plan.SpreadPct, 1e-9)
}

func TestPlan_GridSkippedBeforeMinInterval(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true, ATRAvailable: true}
	res := spread.Resolve(policy, 1.2, 50)

	p.Plan(policy, barAt(0, 100), snap, res, types.GateRun, noStop())
	second := p.Plan(policy, barAt(0, 105), snap, res, types.GateRun, noStop())

	assert.Empty(t, second.GridOrders)
	assert.False(t, second.KillReplace)
}

func TestPlan_GridKillReplaceOnDrift(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true, ATRAvailable: true}
	res := spread.Resolve(policy, 1.2, 50)

	p.Plan(policy, barAt(0, 100), snap, res, types.GateRun, noStop())
	later := time.Date(2026, 1, 1, 0, 6, 0, 0, time.UTC)
	drifted := types.Bar{Open: 102, High: 103, Low: 101, Close: 102, Volume: 1, Timestamp: later}

	plan := p.Plan(policy, drifted, snap, res, types.GateRun, noStop())
	assert.True(t, plan.KillReplace)
	assert.Len(t, plan.GridOrders, 6)
}

func TestPlan_DCATrigger(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 30, RSIAvailable: true, EMAFast: 96, EMAFastAvailable: true}
	res := spread.Resolve(policy, 1.2, 30)

	plan := p.Plan(policy, barAt(0, 95), snap, res, types.GateRun, noStop())

	require.Len(t, plan.DCAOrders, 1)
	assert.InDelta(t, 94.905, plan.DCAOrders[0].Price, 1e-6)
	assert.Contains(t, plan.DCAOrders[0].Tag, "30")
}

func TestPlan_DCACooldownSuppressesRepeat(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 30, RSIAvailable: true}
	res := spread.Resolve(policy, 1.2, 30)

	p.RecordDCAFill(95)
	for i := 1; i < policy.DCACooldownBars; i++ {
		plan := p.Plan(policy, barAt(i, 95), snap, res, types.GateRun, noStop())
		assert.Empty(t, plan.DCAOrders, "bar %d should still be cooling down", i)
	}
}

func TestPlan_DCAMinDistanceFromLastFillGate(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 30, RSIAvailable: true}
	res := spread.Resolve(policy, 1.2, 30)

	p.RecordDCAFill(95)
	for i := 1; i <= policy.DCACooldownBars; i++ {
		p.Plan(policy, barAt(i, 95.05), snap, res, types.GateRun, noStop())
	}
	plan := p.Plan(policy, barAt(policy.DCACooldownBars+1, 95.05), snap, res, types.GateRun, noStop())
	assert.Empty(t, plan.DCAOrders)
}

func TestPlan_TPSuppressedInPaused(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 72, RSIAvailable: true, EMAFast: 100, EMAFastAvailable: true}
	res := spread.Resolve(policy, 1.2, 72)

	plan := p.Plan(policy, barAt(0, 105), snap, res, types.GatePaused, noStop())

	assert.True(t, plan.Empty())
	assert.False(t, plan.SLAction.Stop)
}

func TestPlan_HardStopEmitsEmptyPlanWithReason(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true, ATRAvailable: true}
	res := spread.Resolve(policy, 1.2, 50)
	stop := hardstop.Stop{Active: true, Reason: "daily PnL below hard-stop threshold"}

	plan := p.Plan(policy, barAt(0, 100), snap, res, types.GateRun, stop)

	assert.True(t, plan.Empty())
	assert.True(t, plan.SLAction.Stop)
	assert.Contains(t, plan.SLAction.Reason, "daily PnL")
}

func TestPlan_DegradedSkipsGridOnly(t *testing.T) {
	p := New()
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 30, RSIAvailable: true}
	res := spread.Resolve(policy, 1.2, 30)

	plan := p.Plan(policy, barAt(0, 95), snap, res, types.GateDegraded, noStop())

	assert.Empty(t, plan.GridOrders)
	assert.NotEmpty(t, plan.DCAOrders)
}
