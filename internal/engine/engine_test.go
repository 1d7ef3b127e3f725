package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvietduc/hybridgrid-engine/internal/indicators"
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func minuteBar(start time.Time, i int, close float64) types.Bar {
	ts := start.Add(time.Duration(i) * time.Minute)
	return types.Bar{Open: close, High: close, Low: close, Close: close, Volume: 1, Timestamp: ts}
}

func warmUp(t *testing.T, e *Engine, start time.Time, n int, close float64) {
	t.Helper()
	for i := 0; i < n; i++ {
		res, err := e.ProcessBar(minuteBar(start, i, close))
		require.NoError(t, err)
		_ = res
	}
}

func TestEngine_SkipsDuplicateTimestampBar(t *testing.T) {
	policy := config.DefaultPolicy()
	e := New("BTCUSDT", policy, 10000, nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	bar := minuteBar(start, 0, 100)
	res1, err := e.ProcessBar(bar)
	require.NoError(t, err)
	assert.False(t, res1.Skipped)

	res2, err := e.ProcessBar(bar)
	require.NoError(t, err)
	assert.True(t, res2.Skipped)
	assert.Equal(t, indicators.RejectNonMonotonic, res2.Reason)
}

func TestEngine_GridEmissionOnFirstBar(t *testing.T) {
	policy := config.DefaultPolicy()
	e := New("BTCUSDT", policy, 10000, nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// ATR needs atr_period bars of history before it is available, so no
	// grid is emitted until then, even though no prior grid exists.
	warmUp(t, e, start, policy.ATRPeriod-1, 100)

	res, err := e.ProcessBar(minuteBar(start, policy.ATRPeriod-1, 100))
	require.NoError(t, err)
	require.False(t, res.Skipped)

	require.True(t, res.Plan.KillReplace)
	require.Len(t, res.Plan.GridOrders, policy.GridLevelsPerSide*2)
	for _, o := range res.Plan.GridOrders[:policy.GridLevelsPerSide] {
		assert.Equal(t, types.SideBuy, o.Side)
		assert.Less(t, o.Price, res.Plan.RefPrice)
	}
	for _, o := range res.Plan.GridOrders[policy.GridLevelsPerSide:] {
		assert.Equal(t, types.SideSell, o.Side)
		assert.Greater(t, o.Price, res.Plan.RefPrice)
	}
}

func TestEngine_DegradedSuppressesGridOnly(t *testing.T) {
	policy := config.DefaultPolicy()
	e := New("BTCUSDT", policy, 10000, nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	warmUp(t, e, start, policy.BBPeriod+5, 100)

	// gap of -3.5% from the day-open price triggers DEGRADED, not PAUSED.
	res, err := e.ProcessBar(minuteBar(start, policy.BBPeriod+5, 96.5))
	require.NoError(t, err)

	assert.Equal(t, types.GateDegraded, res.Plan.GateState)
	assert.Empty(t, res.Plan.GridOrders)
}

func TestEngine_PausedSuppressesEntirePlan(t *testing.T) {
	policy := config.DefaultPolicy()
	e := New("BTCUSDT", policy, 10000, nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	warmUp(t, e, start, policy.BBPeriod+5, 100)

	// gap of -6% triggers PAUSED (below -5% threshold, above -8% hard stop).
	res, err := e.ProcessBar(minuteBar(start, policy.BBPeriod+5, 94))
	require.NoError(t, err)

	assert.Equal(t, types.GatePaused, res.Plan.GateState)
	assert.True(t, res.Plan.Empty())
	assert.False(t, res.Plan.SLAction.Stop)
}

func TestEngine_HardStopSuppressesPlanUntilResume(t *testing.T) {
	policy := config.DefaultPolicy()
	// disable order kinds so this test isolates C3/C4 behavior from
	// incidental fills that would otherwise perturb equity.
	policy.GridEnabled = false
	policy.DCAEnabled = false
	policy.TPEnabled = false
	e := New("BTCUSDT", policy, 10000, nil)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	warmUp(t, e, start, policy.BBPeriod+5, 100)
	i := policy.BBPeriod + 5

	// gap of -8.5% trips the hard stop.
	res, err := e.ProcessBar(minuteBar(start, i, 91.5))
	require.NoError(t, err)
	require.True(t, res.Plan.SLAction.Stop)
	require.True(t, res.Plan.Empty())
	i++

	// bars_since_stop has not reached resume_cooldown_bars yet: still stopped.
	// Price sits at the stop price here, so it has not recovered either.
	for ; i < policy.BBPeriod+5+1+policy.ResumeCooldownBars-1; i++ {
		res, err = e.ProcessBar(minuteBar(start, i, 91.5))
		require.NoError(t, err)
		require.True(t, res.Plan.SLAction.Stop, "bar %d should remain stopped", i)
	}

	// climb the price well past the recovery threshold and hold it so RSI
	// has room to recover across the remaining cooldown bars.
	for ; i < policy.BBPeriod+5+1+policy.ResumeCooldownBars+60; i++ {
		price := 91.5 * (1 + 0.03*float64(i-(policy.BBPeriod+5+1+policy.ResumeCooldownBars-1))/60)
		res, err = e.ProcessBar(minuteBar(start, i, price))
		require.NoError(t, err)
	}

	assert.False(t, res.Plan.SLAction.Stop, "hard stop should eventually clear once all resume conditions hold")
}
