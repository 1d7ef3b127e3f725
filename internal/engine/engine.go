// Package engine wires C1 through C6 into the single per-symbol,
// bar-synchronous decision loop described in §2 and §5: one instance
// owns the indicator window, the day frame, the stop state, and the
// live-order set, and processes exactly one bar at a time with no
// suspension inside a bar. There is no teacher analogue for this exact
// orchestrator — the teacher dispatches across a strategy registry
// (internal/engines/interface.go) rather than a fixed six-component
// pipeline — so the wiring order follows §2's data-flow diagram
// directly, while individual component calls reuse the teacher-derived
// packages built for each one.
package engine

import (
	"fmt"

	"github.com/tranvietduc/hybridgrid-engine/internal/boterrors"
	"github.com/tranvietduc/hybridgrid-engine/internal/gate"
	"github.com/tranvietduc/hybridgrid-engine/internal/hardstop"
	"github.com/tranvietduc/hybridgrid-engine/internal/indicators"
	"github.com/tranvietduc/hybridgrid-engine/internal/lifecycle"
	"github.com/tranvietduc/hybridgrid-engine/internal/monitoring"
	"github.com/tranvietduc/hybridgrid-engine/internal/obslog"
	"github.com/tranvietduc/hybridgrid-engine/internal/planner"
	"github.com/tranvietduc/hybridgrid-engine/internal/spread"
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// Engine owns every piece of per-symbol state the core requires and
// implements the §4.6 ordering guarantee by construction: ProcessBar
// always runs fill detection, then the cancellation sweep, then plan
// application, inside lifecycle.Manager.ProcessBar.
type Engine struct {
	Symbol string
	Policy config.Policy

	pipeline  *indicators.Pipeline
	gate      *gate.Gate
	hardStop  *hardstop.Controller
	planner   *planner.Planner
	lifecycle *lifecycle.Manager

	logger *obslog.Logger

	lastTimestampSeen bool
	fatal             error
}

// New builds an Engine for one symbol with the given policy and
// starting cash, optionally logging to the given obslog.Logger (nil
// disables logging).
func New(symbol string, policy config.Policy, startingCash float64, logger *obslog.Logger) *Engine {
	p := indicators.NewPipeline(
		policy.RSIPeriod, policy.ATRPeriod,
		policy.EMAFast, policy.EMAMid, policy.EMASlow,
		policy.BBPeriod, policy.BBStdDev,
		policy.WindowCapacity,
	)
	pl := planner.New()
	lc := lifecycle.New(symbol, startingCash)
	lc.SetDCAFillObserver(pl)

	return &Engine{
		Symbol:    symbol,
		Policy:    policy,
		pipeline:  p,
		gate:      gate.New(),
		hardStop:  hardstop.New(),
		planner:   pl,
		lifecycle: lc,
		logger:    logger,
	}
}

// Result is the outcome of processing one bar.
type Result struct {
	Plan    types.Plan
	Fills   []types.Fill
	Equity  float64
	Skipped bool
	Reason  indicators.RejectReason
}

// Fatal reports the invariant breach, if any, that halted the engine.
// Once set, ProcessBar refuses to process further bars (§7).
func (e *Engine) Fatal() error {
	return e.fatal
}

// SetOrderObserver forwards to the lifecycle manager's order observer,
// so a driver can publish every placement/fill/cancellation as a
// discrete persisted event per §6, without the engine depending on any
// reporting package.
func (e *Engine) SetOrderObserver(obs func(order types.PendingOrder, event string)) {
	e.lifecycle.SetOrderObserver(obs)
}

// ProcessBar runs one bar through C1-C6 per §2's data-flow diagram and
// §4.6's within-bar ordering guarantee.
func (e *Engine) ProcessBar(bar types.Bar) (Result, error) {
	if e.fatal != nil {
		return Result{}, e.fatal
	}

	reject := e.pipeline.Append(bar)
	if reject != indicators.RejectNone {
		e.log(obslog.LevelWarn, "pipeline", "skipped bar", map[string]any{"reason": string(reject), "timestamp": bar.Timestamp})
		return Result{Skipped: true, Reason: reject}, nil
	}

	snap := e.pipeline.Latest()

	equity := e.lifecycle.Equity(bar.Close)
	monitoring.Equity.WithLabelValues(e.Symbol).Set(equity)
	e.recordIndicatorMetrics(snap)

	gateResult := e.gate.Evaluate(e.Policy, bar, equity)
	monitoring.RecordGateState(e.Symbol, string(gateResult.State))

	stop := e.hardStop.Evaluate(e.Policy, bar, snap.RSI, snap.RSIAvailable, gateResult.GapPct, gateResult.DailyPnLPct)
	if stop.Active {
		monitoring.HardStopActive.WithLabelValues(e.Symbol).Set(1)
	} else {
		monitoring.HardStopActive.WithLabelValues(e.Symbol).Set(0)
	}

	res := spread.Resolve(e.Policy, snap.ATRPct, snap.RSI)

	plan := e.planner.Plan(e.Policy, bar, snap, res, gateResult.State, stop)

	if err := validatePlan(plan); err != nil {
		e.fatal = err
		e.log(obslog.LevelError, "engine", "invariant breach", map[string]any{"error": err.Error()})
		return Result{Plan: plan}, err
	}

	fills, err := e.lifecycle.ProcessBar(e.Policy, bar, snap, plan)
	for _, f := range fills {
		monitoring.RecordFill(e.Symbol, string(f.Side), string(f.Reason), f.RealizedPnL)
		e.log(obslog.LevelTrade, "lifecycle", "fill", map[string]any{
			"order_id": f.OrderID, "side": f.Side, "price": f.FillPrice, "qty": f.FillQty, "reason": f.Reason,
		})
	}
	if err != nil {
		e.fatal = err
		e.log(obslog.LevelError, "lifecycle", "plan application failed", map[string]any{"error": err.Error()})
		return Result{Plan: plan, Fills: fills, Equity: equity}, err
	}

	return Result{Plan: plan, Fills: fills, Equity: equity}, nil
}

func (e *Engine) recordIndicatorMetrics(snap indicators.Snapshot) {
	if snap.RSIAvailable {
		monitoring.IndicatorValues.WithLabelValues("rsi", e.Symbol).Set(snap.RSI)
	}
	if snap.ATRAvailable {
		monitoring.IndicatorValues.WithLabelValues("atr_pct", e.Symbol).Set(snap.ATRPct)
	}
	if snap.EMAFastAvailable {
		monitoring.IndicatorValues.WithLabelValues("ema_fast", e.Symbol).Set(snap.EMAFast)
	}
}

func (e *Engine) log(level obslog.Level, component, message string, fields map[string]any) {
	if e.logger == nil {
		return
	}
	e.logger.Event(level, component, message, fields)
}

// validatePlan enforces P1/P2/P3 as an internal consistency check
// before the plan reaches the lifecycle manager: a violation here means
// the planner itself produced an impossible plan, which §7 treats as a
// fatal invariant breach rather than a recoverable fault.
func validatePlan(plan types.Plan) error {
	if plan.SLAction.Stop && !plan.Empty() {
		return boterrors.New(boterrors.CategoryInvariantBreach, "engine", "validatePlan", "hard stop active but plan carries order intents")
	}
	if plan.GateState == types.GatePaused && !plan.Empty() {
		return boterrors.New(boterrors.CategoryInvariantBreach, "engine", "validatePlan", "gate paused but plan carries order intents")
	}
	if plan.GateState == types.GateDegraded && len(plan.GridOrders) != 0 {
		return boterrors.New(boterrors.CategoryInvariantBreach, "engine", "validatePlan", "gate degraded but plan carries grid orders")
	}
	if len(plan.GridOrders) != 0 {
		n := len(plan.GridOrders) / 2
		if len(plan.GridOrders) != n*2 {
			return boterrors.New(boterrors.CategoryInvariantBreach, "engine", "validatePlan", fmt.Sprintf("grid orders not evenly split between sides: %d", len(plan.GridOrders)))
		}
	}
	return nil
}
