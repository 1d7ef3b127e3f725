package indicators

import (
	"math"

	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// ATR computes the Average True Range using Wilder's smoothing (an EMA
// of true range with alpha = 1/period), adapted from the teacher's
// internal/indicators/base/atr.go. Same true-range formula and EMA
// smoothing; rewritten to consume one bar at a time instead of a data
// slice, and to depend on the local EMA instead of an internal/common
// package the teacher's retrieval snapshot referenced but did not ship.
type ATR struct {
	period    int
	ema       *EMA
	lastClose float64
	haveClose bool
}

// NewATR creates an ATR indicator over the given period.
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		ema:    &EMA{period: period, alpha: 1.0 / float64(period)},
	}
}

// RequiredPeriods is the number of bars needed before ATR is available.
func (a *ATR) RequiredPeriods() int {
	return a.period
}

// Update feeds the next bar and returns the updated ATR value.
func (a *ATR) Update(bar types.Bar) float64 {
	var trueRange float64
	if a.haveClose {
		trueRange = a.trueRange(bar, a.lastClose)
	} else {
		trueRange = bar.High - bar.Low
	}

	value := a.ema.UpdateSingle(trueRange)
	a.lastClose = bar.Close
	a.haveClose = true
	return value
}

func (a *ATR) trueRange(current types.Bar, prevClose float64) float64 {
	hl := current.High - current.Low
	hc := math.Abs(current.High - prevClose)
	lc := math.Abs(current.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// Initialized reports whether ATR has produced its first value.
func (a *ATR) Initialized() bool {
	return a.ema.Initialized()
}

// Value returns the last computed ATR value.
func (a *ATR) Value() float64 {
	return a.ema.Value()
}

// Period returns the ATR period.
func (a *ATR) Period() int {
	return a.period
}
