package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func genBars(n int, start, step float64) []types.Bar {
	bars := make([]types.Bar, 0, n)
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		bars = append(bars, types.Bar{
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price,
			Volume:    100,
			Timestamp: ts.Add(time.Duration(i) * time.Minute),
		})
		price += step
	}
	return bars
}

func TestPipeline_UnavailableUntilWarm(t *testing.T) {
	p := NewPipeline(14, 14, 9, 21, 50, 20, 2.0, 500)

	bars := genBars(5, 100, 0.1)
	var last Snapshot
	for _, b := range bars {
		require.Equal(t, RejectNone, p.Append(b))
		last = p.Latest()
	}

	assert.False(t, last.RSIAvailable)
	assert.False(t, last.ATRAvailable)
	assert.False(t, last.BBAvailable)
	assert.False(t, last.EMASlowAvailable)
}

func TestPipeline_BecomesAvailableAfterWarmup(t *testing.T) {
	p := NewPipeline(14, 14, 9, 21, 50, 20, 2.0, 500)

	bars := genBars(60, 100, 0.05)
	var last Snapshot
	for _, b := range bars {
		require.Equal(t, RejectNone, p.Append(b))
		last = p.Latest()
	}

	assert.True(t, last.RSIAvailable)
	assert.True(t, last.ATRAvailable)
	assert.True(t, last.BBAvailable)
	assert.True(t, last.EMAFastAvailable)
	assert.True(t, last.EMAMidAvailable)
	assert.True(t, last.EMASlowAvailable)

	// Monotonically rising closes should push RSI toward the top of its range.
	assert.Greater(t, last.RSI, 50.0)
	assert.Greater(t, last.BBUpper, last.BBLower)
}

func TestPipeline_RejectsDuplicateTimestamp(t *testing.T) {
	p := NewPipeline(14, 14, 9, 21, 50, 20, 2.0, 500)
	bars := genBars(3, 100, 1)
	for _, b := range bars {
		require.Equal(t, RejectNone, p.Append(b))
	}

	dup := bars[len(bars)-1]
	assert.Equal(t, RejectNonMonotonic, p.Append(dup))

	older := bars[0]
	assert.Equal(t, RejectNonMonotonic, p.Append(older))
}

func TestPipeline_RejectsNonFiniteBar(t *testing.T) {
	p := NewPipeline(14, 14, 9, 21, 50, 20, 2.0, 500)
	bad := types.Bar{Open: 1, High: math.NaN(), Low: 1, Close: 1, Volume: 1, Timestamp: time.Now()}
	assert.Equal(t, RejectNonFinite, p.Append(bad))
	assert.Equal(t, 0, p.Len())
}

func TestPipeline_WindowCapacity(t *testing.T) {
	p := NewPipeline(14, 14, 9, 21, 50, 20, 2.0, 10)
	bars := genBars(30, 100, 0.1)
	for _, b := range bars {
		p.Append(b)
	}
	assert.LessOrEqual(t, p.Len(), 10)
}
