package indicators

import "math"

// Bollinger computes Bollinger Bands over a fixed period using a
// circular buffer with running sum/sum-of-squares for O(1) variance per
// update, adapted from the teacher's
// internal/indicators/bands/bollinger.go. The EMA-middle-band mode and
// %B overbought/oversold thresholds from the teacher are dropped — this
// spec only needs the SMA-based upper/lower bands (§3 Indicator
// Snapshot: bb_upper, bb_lower).
type Bollinger struct {
	period int
	stdDev float64

	values     []float64
	writeIndex int
	count      int

	sum        float64
	sumSquares float64

	lastUpper  float64
	lastLower  float64
	lastMiddle float64
}

// NewBollinger creates a Bollinger Bands indicator.
func NewBollinger(period int, stdDev float64) *Bollinger {
	return &Bollinger{
		period: period,
		stdDev: stdDev,
		values: make([]float64, period),
	}
}

// RequiredPeriods is the number of closes needed before bands are
// available.
func (b *Bollinger) RequiredPeriods() int {
	return b.period
}

// Update feeds the next close price and returns (upper, middle, lower,
// ready).
func (b *Bollinger) Update(close float64) (upper, middle, lower float64, ready bool) {
	if b.count < b.period {
		b.values[b.writeIndex] = close
		b.sum += close
		b.sumSquares += close * close
		b.count++
	} else {
		old := b.values[b.writeIndex]
		b.sum += close - old
		b.sumSquares += close*close - old*old
		b.values[b.writeIndex] = close
	}
	b.writeIndex = (b.writeIndex + 1) % b.period

	if b.count < b.period {
		return 0, 0, 0, false
	}

	mean := b.sum / float64(b.period)
	variance := b.sumSquares/float64(b.period) - mean*mean
	if variance < 0 {
		variance = 0
	}
	sd := math.Sqrt(variance)

	b.lastMiddle = mean
	b.lastUpper = mean + b.stdDev*sd
	b.lastLower = mean - b.stdDev*sd

	return b.lastUpper, b.lastMiddle, b.lastLower, true
}

// Initialized reports whether the buffer has filled.
func (b *Bollinger) Initialized() bool {
	return b.count >= b.period
}

// Values returns the last computed (upper, middle, lower) bands.
func (b *Bollinger) Values() (upper, middle, lower float64) {
	return b.lastUpper, b.lastMiddle, b.lastLower
}
