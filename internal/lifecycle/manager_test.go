package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvietduc/hybridgrid-engine/internal/indicators"
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func lcBar(hour int, open, high, low, close float64) types.Bar {
	return types.Bar{
		Open: open, High: high, Low: low, Close: close, Volume: 1,
		Timestamp: time.Date(2026, 1, 1, hour, 0, 0, 0, time.UTC),
	}
}

func gridPlan(hour int, refPrice, spreadPct float64) types.Plan {
	return types.Plan{
		Timestamp:   lcBar(hour, refPrice, refPrice, refPrice, refPrice).Timestamp,
		KillReplace: true,
		GridOrders: []types.OrderIntent{
			{Side: types.SideBuy, Price: refPrice * (1 - spreadPct/100), Tag: "grid_buy_1"},
			{Side: types.SideSell, Price: refPrice * (1 + spreadPct/100), Tag: "grid_sell_1"},
		},
	}
}

func TestProcessBar_PlacesGridOrders(t *testing.T) {
	m := New("BTCUSDT", 10000)
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true}

	bar := lcBar(0, 100, 101, 99, 100)
	_, err := m.ProcessBar(policy, bar, snap, gridPlan(0, 100, 0.5))
	require.NoError(t, err)

	assert.Len(t, m.LiveOrders(), 2)
}

func TestProcessBar_BuyFillsOnLowTouch(t *testing.T) {
	m := New("BTCUSDT", 10000)
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true}

	m.ProcessBar(policy, lcBar(0, 100, 100, 100, 100), snap, gridPlan(0, 100, 0.5))

	dropBar := lcBar(1, 99.4, 99.4, 99.0, 99.4)
	fills, err := m.ProcessBar(policy, dropBar, snap, types.Plan{})
	require.NoError(t, err)

	require.Len(t, fills, 1)
	assert.Equal(t, types.SideBuy, fills[0].Side)

	qty, avg := m.Position()
	assert.Greater(t, qty, 0.0)
	assert.InDelta(t, 99.5, avg, 1e-6)
}

func TestProcessBar_CancelsOnAge(t *testing.T) {
	m := New("BTCUSDT", 10000)
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true}

	m.ProcessBar(policy, lcBar(0, 100, 100, 100, 100), snap, gridPlan(0, 100, 0.5))
	require.Len(t, m.LiveOrders(), 2)

	later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(policy.OrderMaxAgeSeconds+1) * time.Second)
	staleBar := types.Bar{Open: 100, High: 100.1, Low: 99.9, Close: 100, Volume: 1, Timestamp: later}

	m.ProcessBar(policy, staleBar, snap, types.Plan{})
	assert.Empty(t, m.LiveOrders())
}

func TestProcessBar_CancelsOnPriceDrift(t *testing.T) {
	m := New("BTCUSDT", 10000)
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true}

	// scenario 6: a single BUY placed at 100.00 when close was 100.00.
	singleBuyPlan := types.Plan{
		KillReplace: true,
		GridOrders:  []types.OrderIntent{{Side: types.SideBuy, Price: 100.00, Tag: "grid_buy_1"}},
	}
	m.ProcessBar(policy, lcBar(0, 100, 100, 100, 100), snap, singleBuyPlan)
	require.Len(t, m.LiveOrders(), 1)

	driftTime := time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	driftedBar := types.Bar{Open: 102.05, High: 102.1, Low: 102.0, Close: 102.05, Volume: 1, Timestamp: driftTime}
	m.ProcessBar(policy, driftedBar, snap, types.Plan{})

	require.Empty(t, m.LiveOrders())
	for _, o := range m.orders {
		assert.Equal(t, "price drift", o.CancelNote)
	}
}

func TestProcessBar_SkipsCollidingIntent(t *testing.T) {
	m := New("BTCUSDT", 10000)
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true}

	singleBuyPlan := types.Plan{
		GridOrders: []types.OrderIntent{{Side: types.SideBuy, Price: 99.5, Tag: "grid_buy_1"}},
	}
	m.ProcessBar(policy, lcBar(0, 100, 100, 100, 100), snap, singleBuyPlan)
	before := len(m.LiveOrders())

	// same (side, rounded price) intent without kill_replace must be skipped
	m.ProcessBar(policy, lcBar(0, 100, 100, 100, 100), snap, singleBuyPlan)
	after := len(m.LiveOrders())

	assert.Equal(t, before, after)
}

func TestProcessBar_SkipsBelowMinNotional(t *testing.T) {
	m := New("BTCUSDT", 10000)
	policy := config.DefaultPolicy()
	policy.OrderNotionalPct = 0.0001
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true}

	m.ProcessBar(policy, lcBar(0, 100, 100, 100, 100), snap, gridPlan(0, 100, 0.5))

	assert.Empty(t, m.LiveOrders())
}

func TestProcessBar_CancelIsIdempotent(t *testing.T) {
	m := New("BTCUSDT", 10000)
	policy := config.DefaultPolicy()
	snap := indicators.Snapshot{RSI: 50, RSIAvailable: true}

	m.ProcessBar(policy, lcBar(0, 100, 100, 100, 100), snap, gridPlan(0, 100, 0.5))
	var id string
	for _, o := range m.orders {
		id = o.ID
		break
	}

	m.Cancel(id, "manual")
	m.Cancel(id, "manual again")

	assert.Equal(t, "manual", m.orders[id].CancelNote)
}
