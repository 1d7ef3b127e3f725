// Package monitoring exposes the engine's Prometheus metrics. Adapted
// from the teacher's internal/monitoring/metrics.go vars, narrowed to
// what the core itself observes: fills, gate/stop transitions, and
// indicator values. Trade-strategy and exchange-latency labels are
// dropped since this engine has a single planner rather than a
// strategy registry and the exchange connector is out of scope (§1).
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hybridgrid_fills_total",
			Help: "Total number of bar-synchronous fills, by symbol/side/reason.",
		},
		[]string{"symbol", "side", "reason"},
	)

	RealizedPnL = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hybridgrid_realized_pnl",
			Help:    "Realized PnL per fill; buy fills record zero.",
			Buckets: prometheus.LinearBuckets(-1000, 100, 20),
		},
		[]string{"symbol"},
	)

	Equity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hybridgrid_equity_usd",
			Help: "Current equity (cash + position at mark price).",
		},
		[]string{"symbol"},
	)

	IndicatorValues = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hybridgrid_indicator_value",
			Help: "Current indicator readouts from the pipeline.",
		},
		[]string{"indicator", "symbol"},
	)

	GateState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hybridgrid_gate_state",
			Help: "Current PnL gate state: 0=RUN, 1=DEGRADED, 2=PAUSED.",
		},
		[]string{"symbol"},
	)

	HardStopActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hybridgrid_hard_stop_active",
			Help: "1 if the hard stop is currently latched for the symbol.",
		},
		[]string{"symbol"},
	)
)

// RecordFill updates the fill counter and PnL histogram for one bar's
// settled fill.
func RecordFill(symbol, side, reason string, realizedPnL float64) {
	FillsTotal.WithLabelValues(symbol, side, reason).Inc()
	RealizedPnL.WithLabelValues(symbol).Observe(realizedPnL)
}

// RecordGateState encodes the gate state as a small ordinal so it can
// be graphed; RUN=0, DEGRADED=1, PAUSED=2.
func RecordGateState(symbol, state string) {
	var v float64
	switch state {
	case "DEGRADED":
		v = 1
	case "PAUSED":
		v = 2
	}
	GateState.WithLabelValues(symbol).Set(v)
}
