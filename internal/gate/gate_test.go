package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func bar(day int, hour int, open, close float64) types.Bar {
	ts := time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC)
	return types.Bar{Open: open, High: close + 1, Low: close - 1, Close: close, Volume: 1, Timestamp: ts}
}

func TestGate_FirstBarRollsOverAndRunsClean(t *testing.T) {
	g := New()
	p := config.DefaultPolicy()

	res := g.Evaluate(p, bar(1, 0, 100, 100), 10000)
	assert.True(t, res.RolledOver)
	assert.Equal(t, types.GateRun, res.State)
	assert.InDelta(t, 0, res.GapPct, 1e-9)
	assert.InDelta(t, 0, res.DailyPnLPct, 1e-9)
}

func TestGate_DegradedOnGap(t *testing.T) {
	g := New()
	p := config.DefaultPolicy()
	g.Evaluate(p, bar(1, 0, 100, 100), 10000)

	res := g.Evaluate(p, bar(1, 1, 100, 96.5), 10000) // -3.5% gap
	assert.Equal(t, types.GateDegraded, res.State)
}

func TestGate_PausedOnDailyPnL(t *testing.T) {
	g := New()
	p := config.DefaultPolicy()
	g.Evaluate(p, bar(1, 0, 100, 100), 10000)

	res := g.Evaluate(p, bar(1, 1, 100, 100), 9500) // -5% daily pnl
	assert.Equal(t, types.GatePaused, res.State)
}

func TestGate_RecoversInstantlyNoHysteresis(t *testing.T) {
	g := New()
	p := config.DefaultPolicy()
	g.Evaluate(p, bar(1, 0, 100, 100), 10000)
	g.Evaluate(p, bar(1, 1, 100, 94), 9500) // paused

	res := g.Evaluate(p, bar(1, 2, 100, 100), 10000) // back to baseline, same day
	assert.Equal(t, types.GateRun, res.State)
}

func TestGate_RollsOverOnNewCalendarDate(t *testing.T) {
	g := New()
	p := config.DefaultPolicy()
	g.Evaluate(p, bar(1, 0, 100, 105), 10500)

	res := g.Evaluate(p, bar(2, 0, 110, 110), 11000)
	assert.True(t, res.RolledOver)
	assert.InDelta(t, 0, res.GapPct, 1e-9)
	assert.InDelta(t, 0, res.DailyPnLPct, 1e-9)
	assert.InDelta(t, 110, g.Frame().DayOpenPrice, 1e-9)
	assert.InDelta(t, 11000, g.Frame().DayOpenEquity, 1e-9)
}
