package hardstop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func bar(hour int, close float64) types.Bar {
	ts := time.Date(2026, 1, 1, hour, 0, 0, 0, time.UTC)
	return types.Bar{Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 1, Timestamp: ts}
}

func TestController_TriggersOnDailyPnLBreach(t *testing.T) {
	c := New()
	p := config.DefaultPolicy()

	// day_open_equity=10000, equity=9490 -> daily PnL -5.1%
	stop := c.Evaluate(p, bar(1, 100), 50, true, 0, -5.1)

	require.True(t, stop.Active)
	assert.Contains(t, stop.Reason, "daily PnL")
}

func TestController_TriggersOnGapBreach(t *testing.T) {
	c := New()
	p := config.DefaultPolicy()

	stop := c.Evaluate(p, bar(1, 100), 50, true, p.HardStopGapPct-1, 0)

	require.True(t, stop.Active)
	assert.Contains(t, stop.Reason, "gap")
}

func TestController_StaysActiveUntilAllResumeConditionsHold(t *testing.T) {
	c := New()
	p := config.DefaultPolicy()

	stop := c.Evaluate(p, bar(0, 100), 50, true, 0, p.HardStopDailyPnLPct-1)
	require.True(t, stop.Active)
	stopPrice := stop.StopPrice

	// cooldown not yet satisfied, even though RSI and price look fine
	for i := 1; i < p.ResumeCooldownBars; i++ {
		stop = c.Evaluate(p, bar(i, stopPrice*1.03), p.ResumeRSIThreshold+5, true, 0, 0)
		assert.True(t, stop.Active, "bar %d should still be stopped", i)
	}

	// cooldown satisfied but RSI still below threshold
	stop = c.Evaluate(p, bar(p.ResumeCooldownBars, stopPrice*1.03), p.ResumeRSIThreshold-1, true, 0, 0)
	assert.True(t, stop.Active)

	// cooldown and RSI satisfied but price hasn't recovered enough
	stop = c.Evaluate(p, bar(p.ResumeCooldownBars+1, stopPrice*1.001), p.ResumeRSIThreshold+5, true, 0, 0)
	assert.True(t, stop.Active)

	// all three conditions satisfied simultaneously
	stop = c.Evaluate(p, bar(p.ResumeCooldownBars+2, stopPrice*(1+p.ResumePriceRecoveryPct/100+0.001)), p.ResumeRSIThreshold+5, true, 0, 0)
	assert.False(t, stop.Active)
}

func TestController_NoResumeWithoutRSIAvailable(t *testing.T) {
	c := New()
	p := config.DefaultPolicy()

	stop := c.Evaluate(p, bar(0, 100), 50, true, 0, p.HardStopDailyPnLPct-1)
	require.True(t, stop.Active)
	stopPrice := stop.StopPrice

	for i := 1; i <= p.ResumeCooldownBars+1; i++ {
		stop = c.Evaluate(p, bar(i, stopPrice*1.05), 0, false, 0, 0)
	}
	assert.True(t, stop.Active)
}

func TestController_AutoResumeDisabledNeverClears(t *testing.T) {
	c := New()
	p := config.DefaultPolicy()
	p.AutoResumeEnabled = false

	stop := c.Evaluate(p, bar(0, 100), 50, true, 0, p.HardStopDailyPnLPct-1)
	require.True(t, stop.Active)
	stopPrice := stop.StopPrice

	for i := 1; i <= p.ResumeCooldownBars+5; i++ {
		stop = c.Evaluate(p, bar(i, stopPrice*1.1), p.ResumeRSIThreshold+10, true, 0, 0)
	}
	assert.True(t, stop.Active)
}

func TestController_StateChangeCallbackFiresOnTriggerAndResume(t *testing.T) {
	c := New()
	p := config.DefaultPolicy()

	var transitions []string
	c.SetStateChangeCallback(func(from, to State) {
		transitions = append(transitions, stateLabel(from)+"->"+stateLabel(to))
	})

	stop := c.Evaluate(p, bar(0, 100), 50, true, 0, p.HardStopDailyPnLPct-1)
	require.True(t, stop.Active)

	for i := 1; i < p.ResumeCooldownBars; i++ {
		c.Evaluate(p, bar(i, stop.StopPrice*1.03), p.ResumeRSIThreshold+5, true, 0, 0)
	}
	c.Evaluate(p, bar(p.ResumeCooldownBars, stop.StopPrice*(1+p.ResumePriceRecoveryPct/100+0.001)), p.ResumeRSIThreshold+5, true, 0, 0)

	require.Equal(t, []string{"running->stopped", "stopped->running"}, transitions)
}

func stateLabel(s State) string {
	if s == StateStopped {
		return "stopped"
	}
	return "running"
}
