// Package lifecycle implements C6, the Order Lifecycle Manager: the
// live order set, fill detection, the cancellation sweep, and plan
// application, in the ordering guarantee required by §4.6 (fill
// detection, then cancellation sweep, then plan application). Grounded
// on the teacher's internal/backtest/engine.go bar-synchronous
// limit-fill simulation (commission-on-notional, cash/position update
// in lockstep) and internal/safety/validation.go's pre-placement sanity
// checks, narrowed to the single-symbol spot model this spec defines.
package lifecycle

import (
	"math"

	"github.com/google/uuid"

	"github.com/tranvietduc/hybridgrid-engine/internal/boterrors"
	"github.com/tranvietduc/hybridgrid-engine/internal/indicators"
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// DCAFillObserver is notified whenever a DCA order fills, so the
// planner's cooldown/distance gates track the right baseline.
type DCAFillObserver interface {
	RecordDCAFill(fillPrice float64)
}

// Manager owns the live order set and the cash/position ledger for one
// symbol.
type Manager struct {
	symbol string

	orders map[string]*types.PendingOrder

	cash          float64
	positionQty   float64
	avgEntryPrice float64
	cumulativePnL float64

	dcaObserver DCAFillObserver

	// orderObserver is notified on every placement and status
	// transition, so a reporter collaborator can publish the discrete
	// placement/state-transition events §6 requires of the "Persisted
	// output" without the manager depending on any reporting package.
	orderObserver func(order types.PendingOrder, event string)
}

// New creates a Manager seeded with the given starting cash.
func New(symbol string, startingCash float64) *Manager {
	return &Manager{
		symbol: symbol,
		orders: make(map[string]*types.PendingOrder),
		cash:   startingCash,
	}
}

// SetDCAFillObserver registers the planner (or any observer) to be told
// about DCA fills.
func (m *Manager) SetDCAFillObserver(o DCAFillObserver) {
	m.dcaObserver = o
}

// SetOrderObserver registers a callback invoked with (order, event)
// whenever an order is placed, filled, or cancelled — event is one of
// "PLACED", "FILLED", "CANCELLED". A nil observer disables reporting.
func (m *Manager) SetOrderObserver(o func(order types.PendingOrder, event string)) {
	m.orderObserver = o
}

func (m *Manager) notifyOrder(o *types.PendingOrder, event string) {
	if m.orderObserver != nil {
		m.orderObserver(*o, event)
	}
}

// Equity reports cash + qty*markPrice, the invariant §3 requires to
// hold after every fill event.
func (m *Manager) Equity(markPrice float64) float64 {
	return m.cash + m.positionQty*markPrice
}

// Position reports the current quantity and average entry price.
func (m *Manager) Position() (qty, avgEntry float64) {
	return m.positionQty, m.avgEntryPrice
}

// LiveOrders returns a snapshot copy of the currently live orders,
// safe for a reporter to read without synchronizing with the engine.
func (m *Manager) LiveOrders() []types.PendingOrder {
	out := make([]types.PendingOrder, 0, len(m.orders))
	for _, o := range m.orders {
		if o.Status == types.OrderStatusNew {
			out = append(out, *o)
		}
	}
	return out
}

// ProcessBar runs the §4.6 three-step sequence for one bar: fill
// detection, cancellation sweep, plan application. It returns the
// fills produced by this bar, in the order they were detected.
func (m *Manager) ProcessBar(policy config.Policy, bar types.Bar, snap indicators.Snapshot, plan types.Plan) ([]types.Fill, error) {
	fills := m.detectFills(policy, bar)
	m.sweepCancellations(policy, bar, snap)
	if err := m.applyPlan(policy, bar, snap, plan); err != nil {
		return fills, err
	}
	return fills, nil
}

// detectFills applies the bar-synchronous limit-fill rule to every live
// order: a BUY fills if bar.low <= order.price; a SELL fills if
// bar.high >= order.price. No slippage; the fill price is the limit
// price.
func (m *Manager) detectFills(policy config.Policy, bar types.Bar) []types.Fill {
	var fills []types.Fill

	for _, o := range m.orders {
		if o.Status != types.OrderStatusNew {
			continue
		}

		var filled bool
		switch o.Side {
		case types.SideBuy:
			filled = bar.Low <= o.Price
		case types.SideSell:
			filled = bar.High >= o.Price
		}
		if !filled {
			continue
		}

		fill := m.settleFill(policy, o, bar)
		o.Status = types.OrderStatusFilled
		fills = append(fills, fill)
		m.notifyOrder(o, "FILLED")

		if o.Reason == types.ReasonDCA && m.dcaObserver != nil {
			m.dcaObserver.RecordDCAFill(fill.FillPrice)
		}
	}

	return fills
}

func (m *Manager) settleFill(policy config.Policy, o *types.PendingOrder, bar types.Bar) types.Fill {
	fillValue := o.Price * o.Quantity
	feePct := policy.TakerFeePct / 100
	fee := fillValue * feePct
	feeAsset := "USDT"
	if policy.UseBNBDiscount {
		fee *= 1 - policy.BNBDiscountPct/100
		feeAsset = "BNB"
	}

	var realizedPnL float64
	switch o.Side {
	case types.SideBuy:
		totalCost := m.avgEntryPrice*m.positionQty + fillValue
		m.positionQty += o.Quantity
		if m.positionQty > 0 {
			m.avgEntryPrice = totalCost / m.positionQty
		}
		m.cash -= fillValue + fee
	case types.SideSell:
		realizedPnL = o.Quantity*(o.Price-m.avgEntryPrice) - fee
		m.positionQty -= o.Quantity
		if m.positionQty <= 1e-12 {
			m.positionQty = 0
			m.avgEntryPrice = 0
		}
		m.cash += fillValue - fee
		m.cumulativePnL += realizedPnL
	}

	return types.Fill{
		OrderID:       o.ID,
		Symbol:        m.symbol,
		Side:          o.Side,
		FillPrice:     o.Price,
		FillQty:       o.Quantity,
		Fee:           fee,
		FeeAsset:      feeAsset,
		RealizedPnL:   realizedPnL,
		CumulativePnL: m.cumulativePnL,
		Timestamp:     bar.Timestamp,
		Reason:        o.Reason,
	}
}

// sweepCancellations cancels live orders on price drift, age,
// volatility spike (grid orders only), or RSI reversal, per §4.6,
// checked in that order; the first match sets the cancel note.
// Cancellation is idempotent and never touches cash.
func (m *Manager) sweepCancellations(policy config.Policy, bar types.Bar, snap indicators.Snapshot) {
	volatilitySpike := policy.OrderCancelOnVolatilitySpike &&
		snap.ATRAvailable &&
		snap.PrevATRPct > 0 &&
		snap.ATRPct >= snap.PrevATRPct*policy.OrderVolatilitySpikeThreshold

	for _, o := range m.orders {
		if o.Status != types.OrderStatusNew {
			continue
		}

		if o.Price != 0 {
			driftPct := math.Abs(bar.Close-o.Price) / o.Price * 100
			if driftPct >= policy.OrderPriceDriftThresholdPct {
				m.cancel(o, "price drift")
				continue
			}
		}

		if age := bar.Timestamp.Sub(o.PlacedAt); age >= policy.OrderMaxAgeDuration() {
			m.cancel(o, "order age exceeded maximum")
			continue
		}

		if volatilitySpike && o.Reason == types.ReasonGrid {
			m.cancel(o, "volatility spike")
			continue
		}

		if policy.OrderCancelOnRSIReversal && snap.RSIAvailable && m.rsiReversed(o, snap.RSI, policy.OrderRSIReversalThreshold) {
			m.cancel(o, "RSI reversal")
			continue
		}
	}
}

func (m *Manager) rsiReversed(o *types.PendingOrder, currentRSI, threshold float64) bool {
	switch o.Side {
	case types.SideBuy:
		return o.InitialRSI < 40 && currentRSI > 60 && math.Abs(currentRSI-o.InitialRSI) >= threshold
	case types.SideSell:
		return o.InitialRSI > 60 && currentRSI < 40 && math.Abs(currentRSI-o.InitialRSI) >= threshold
	}
	return false
}

// cancel transitions an order to CANCELLED. Idempotent: a second call
// on an already-cancelled order is a no-op (R2).
func (m *Manager) cancel(o *types.PendingOrder, reason string) {
	if o.Status != types.OrderStatusNew {
		return
	}
	o.Status = types.OrderStatusCancelled
	o.CancelNote = reason
	m.notifyOrder(o, "CANCELLED")
}

// Cancel exposes cancel for collaborator-reported rejections/timeouts.
func (m *Manager) Cancel(orderID, reason string) {
	if o, ok := m.orders[orderID]; ok {
		m.cancel(o, reason)
	}
}

// applyPlan places a new order for each intent in grid, then DCA, then
// TP order (§4.5 tie-break), skipping collisions and below-minimum
// notional per §4.6. kill_replace on the grid cancels the prior live
// grid orders before placing the fresh ladder.
func (m *Manager) applyPlan(policy config.Policy, bar types.Bar, snap indicators.Snapshot, plan types.Plan) error {
	if plan.KillReplace {
		for _, o := range m.orders {
			if o.Status == types.OrderStatusNew && o.Reason == types.ReasonGrid {
				m.cancel(o, "kill-replace")
			}
		}
	}

	equity := m.Equity(bar.Close)

	for _, intent := range plan.GridOrders {
		m.place(policy, bar, snap, intent, types.ReasonGrid, equity)
	}
	for _, intent := range plan.DCAOrders {
		m.place(policy, bar, snap, intent, types.ReasonDCA, equity)
	}
	for _, intent := range plan.TPOrders {
		m.place(policy, bar, snap, intent, types.ReasonTP, equity)
	}

	return nil
}

func (m *Manager) place(policy config.Policy, bar types.Bar, snap indicators.Snapshot, intent types.OrderIntent, reason types.OrderReason, equity float64) {
	roundedPrice := roundToTick(intent.Price)

	for _, existing := range m.orders {
		if existing.Status == types.OrderStatusNew && existing.Side == intent.Side && roundToTick(existing.Price) == roundedPrice {
			return
		}
	}

	notional := equity * policy.OrderNotionalPct / 100
	if notional < policy.MinNotionalUSD {
		return
	}
	quantity := notional / intent.Price

	rsi := 0.0
	if snap.RSIAvailable {
		rsi = snap.RSI
	}

	order := &types.PendingOrder{
		ID:         uuid.NewString(),
		Symbol:     m.symbol,
		Side:       intent.Side,
		Price:      intent.Price,
		Quantity:   quantity,
		Value:      notional,
		PlacedAt:   bar.Timestamp,
		InitialRSI: rsi,
		Reason:     reason,
		Tag:        intent.Tag,
		Status:     types.OrderStatusNew,
	}
	m.orders[order.ID] = order
	m.notifyOrder(order, "PLACED")
}

// roundToTick rounds a price to the same precision used for "same
// price" comparisons across the lifecycle (§9: "comparisons on 'same
// price' must compare rounded ticks"). A fixed 1e-8 tick is used here;
// symbol-specific tick sizes are an execution-boundary concern outside
// this package.
func roundToTick(price float64) float64 {
	const tick = 1e-8
	return math.Round(price/tick) * tick
}

// InvariantCheck validates the equity identity after a batch of fills,
// surfacing a fatal EngineError on breach per §7.
func InvariantCheck(m *Manager, markPrice, expectedEquity float64) error {
	actual := m.Equity(markPrice)
	if math.Abs(actual-expectedEquity) > 1e-6 {
		return boterrors.New(boterrors.CategoryInvariantBreach, "lifecycle", "InvariantCheck", "equity mismatch after fill")
	}
	return nil
}
