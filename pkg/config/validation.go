package config

import "fmt"

// Validate performs basic sanity checks on a resolved Policy, in the
// style of the teacher's DCAValidator.validateDCAConfig: reject
// nonsensical values before they reach the engine rather than letting
// them silently produce degenerate plans.
func (p Policy) Validate() error {
	if p.GridLevelsPerSide <= 0 {
		return fmt.Errorf("grid_levels_per_side must be positive, got: %d", p.GridLevelsPerSide)
	}
	if p.RSIPeriod <= 1 {
		return fmt.Errorf("rsi_period must be greater than 1, got: %d", p.RSIPeriod)
	}
	if p.ATRPeriod <= 0 {
		return fmt.Errorf("atr_period must be positive, got: %d", p.ATRPeriod)
	}
	if p.BBPeriod <= 1 {
		return fmt.Errorf("bb_period must be greater than 1, got: %d", p.BBPeriod)
	}
	if p.BandNearThreshold <= 0 || p.BandMidThreshold <= p.BandNearThreshold {
		return fmt.Errorf("band thresholds must be positive and increasing, got near=%.4f mid=%.4f", p.BandNearThreshold, p.BandMidThreshold)
	}
	if p.GatePausedGapPct > p.GateDegradedGapPct {
		return fmt.Errorf("gate_paused_gap_pct (%.2f) must be <= gate_degraded_gap_pct (%.2f)", p.GatePausedGapPct, p.GateDegradedGapPct)
	}
	if p.GatePausedDailyPnLPct > p.GateDegradedDailyPnLPct {
		return fmt.Errorf("gate_paused_daily_pnl_pct (%.2f) must be <= gate_degraded_daily_pnl_pct (%.2f)", p.GatePausedDailyPnLPct, p.GateDegradedDailyPnLPct)
	}
	if p.MinNotionalUSD < 0 {
		return fmt.Errorf("min_notional_usd must not be negative, got: %.2f", p.MinNotionalUSD)
	}
	if p.TakerFeePct < 0 || p.MakerFeePct < 0 {
		return fmt.Errorf("fee percentages must not be negative, got maker=%.4f taker=%.4f", p.MakerFeePct, p.TakerFeePct)
	}
	if p.WindowCapacity < p.BBPeriod || p.WindowCapacity < p.ATRPeriod || p.WindowCapacity < p.RSIPeriod {
		return fmt.Errorf("window_capacity (%d) must be at least as large as every indicator period", p.WindowCapacity)
	}
	if p.OrderNotionalPct <= 0 {
		return fmt.Errorf("order_notional_pct must be positive, got: %.4f", p.OrderNotionalPct)
	}
	return nil
}
