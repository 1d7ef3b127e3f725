// Package indicators implements C1, the indicator pipeline: a
// fixed-capacity rolling window of bars plus the incremental indicator
// state (RSI, ATR, EMA fast/mid/slow, Bollinger Bands) derived from it.
package indicators

import (
	"math"
	"time"

	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// Snapshot is the derived, per-bar indicator readout described in
// spec §3. A field is zero-valued and its companion Available flag is
// false until the pipeline has seen enough bars to compute it.
type Snapshot struct {
	Timestamp time.Time

	RSI          float64
	RSIAvailable bool

	ATR          float64
	ATRPct       float64
	ATRAvailable bool
	PrevATRPct   float64

	EMAFast          float64
	EMAMid           float64
	EMASlow          float64
	EMAFastAvailable bool
	EMAMidAvailable  bool
	EMASlowAvailable bool

	BBUpper        float64
	BBLower        float64
	BBMiddle       float64
	BBAvailable    bool
}

// Pipeline maintains the rolling OHLCV window and the incremental
// indicator state for one symbol. Grounded on the teacher's per-symbol
// stateful indicators (internal/indicators/rsi.go, ema.go,
// base/atr.go, bands/bollinger.go): §9 replaces "pandas-style" batch
// recomputation with an explicit ring buffer plus incremental updates.
type Pipeline struct {
	capacity int
	window   []types.Bar

	rsi  *RSI
	atr  *ATR
	emaF *EMA
	emaM *EMA
	emaS *EMA
	bb   *Bollinger

	last     Snapshot
	previous Snapshot
	hasLast  bool

	lastTimestamp time.Time
	haveTimestamp bool
}

// NewPipeline builds a Pipeline sized per the given policy periods.
func NewPipeline(rsiPeriod, atrPeriod, emaFast, emaMid, emaSlow, bbPeriod int, bbStdDev float64, capacity int) *Pipeline {
	return &Pipeline{
		capacity: capacity,
		window:   make([]types.Bar, 0, capacity),
		rsi:      NewRSI(rsiPeriod),
		atr:      NewATR(atrPeriod),
		emaF:     NewEMA(emaFast),
		emaM:     NewEMA(emaMid),
		emaS:     NewEMA(emaSlow),
		bb:       NewBollinger(bbPeriod, bbStdDev),
	}
}

// RejectReason explains why Append refused a bar.
type RejectReason string

const (
	RejectNone         RejectReason = ""
	RejectNonFinite    RejectReason = "non-finite values"
	RejectNonMonotonic RejectReason = "non-monotonic or duplicate timestamp"
)

// Append feeds the next bar into the pipeline. Bars must arrive in
// strict ascending timestamp order; duplicates and non-finite bars are
// rejected and the previous snapshot is retained unchanged (§4.1
// failure mode, §3 "duplicates are ignored").
func (p *Pipeline) Append(bar types.Bar) RejectReason {
	if !isFinite(bar.Open, bar.High, bar.Low, bar.Close, bar.Volume) {
		return RejectNonFinite
	}
	if p.haveTimestamp && !bar.Timestamp.After(p.lastTimestamp) {
		return RejectNonMonotonic
	}

	p.lastTimestamp = bar.Timestamp
	p.haveTimestamp = true

	p.window = append(p.window, bar)
	if len(p.window) > p.capacity {
		p.window = p.window[len(p.window)-p.capacity:]
	}

	p.previous = p.last
	p.last = p.computeSnapshot(bar)
	p.hasLast = true

	return RejectNone
}

func (p *Pipeline) computeSnapshot(bar types.Bar) Snapshot {
	snap := Snapshot{Timestamp: bar.Timestamp}

	if rsiVal, ok := p.rsi.Update(bar.Close); ok {
		snap.RSI = rsiVal
		snap.RSIAvailable = true
	}

	atrVal := p.atr.Update(bar)
	if p.atr.Initialized() && len(p.window) >= p.atr.Period() {
		snap.ATR = atrVal
		if bar.Close != 0 {
			snap.ATRPct = atrVal / bar.Close * 100
		}
		snap.ATRAvailable = true
		if p.hasLast && p.previous.ATRAvailable {
			snap.PrevATRPct = p.previous.ATRPct
		} else {
			snap.PrevATRPct = snap.ATRPct
		}
	}

	fVal := p.emaF.UpdateSingle(bar.Close)
	if p.emaF.Initialized() && len(p.window) >= p.emaF.Period() {
		snap.EMAFast = fVal
		snap.EMAFastAvailable = true
	}
	mVal := p.emaM.UpdateSingle(bar.Close)
	if p.emaM.Initialized() && len(p.window) >= p.emaM.Period() {
		snap.EMAMid = mVal
		snap.EMAMidAvailable = true
	}
	sVal := p.emaS.UpdateSingle(bar.Close)
	if p.emaS.Initialized() && len(p.window) >= p.emaS.Period() {
		snap.EMASlow = sVal
		snap.EMASlowAvailable = true
	}

	if upper, middle, lower, ready := p.bb.Update(bar.Close); ready {
		snap.BBUpper = upper
		snap.BBMiddle = middle
		snap.BBLower = lower
		snap.BBAvailable = true
	}

	return snap
}

// Latest returns the most recently computed snapshot. Fields not yet
// available report zero with their Available flag false.
func (p *Pipeline) Latest() Snapshot {
	return p.last
}

// Previous returns the snapshot computed on the bar before the latest
// one, used by C6 for volatility-spike ratio detection.
func (p *Pipeline) Previous() Snapshot {
	return p.previous
}

// Len reports how many bars are currently held in the rolling window.
func (p *Pipeline) Len() int {
	return len(p.window)
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
