// Package config holds the immutable per-symbol trading Policy that
// parameterizes every component of the hybrid grid/DCA engine.
package config

import "time"

// Policy is the flat, immutable configuration consumed by the engine.
// All fields have a default (see DefaultPolicy); per-symbol overrides
// shallow-merge onto the default — no deep merge, no inheritance chain.
type Policy struct {
	// Band & spread resolver (C2)
	UseDynamicSpread bool    `yaml:"use_dynamic_spread" json:"use_dynamic_spread"`
	BandNearThreshold float64 `yaml:"band_near_threshold" json:"band_near_threshold"`
	BandMidThreshold  float64 `yaml:"band_mid_threshold" json:"band_mid_threshold"`

	SpreadNearPct float64 `yaml:"spread_near_pct" json:"spread_near_pct"`
	SpreadMidPct  float64 `yaml:"spread_mid_pct" json:"spread_mid_pct"`
	SpreadFarPct  float64 `yaml:"spread_far_pct" json:"spread_far_pct"`
	FixedSpreadPct float64 `yaml:"fixed_spread_pct" json:"fixed_spread_pct"`

	RSIAdjustEnabled bool    `yaml:"rsi_adjust_enabled" json:"rsi_adjust_enabled"`
	RSIAdjustFactor  float64 `yaml:"rsi_adjust_factor" json:"rsi_adjust_factor"`

	TPSpreadNearPct float64 `yaml:"tp_spread_near_pct" json:"tp_spread_near_pct"`
	TPSpreadMidPct  float64 `yaml:"tp_spread_mid_pct" json:"tp_spread_mid_pct"`
	TPSpreadFarPct  float64 `yaml:"tp_spread_far_pct" json:"tp_spread_far_pct"`

	// Grid planner (C5)
	GridEnabled                  bool    `yaml:"grid_enabled" json:"grid_enabled"`
	GridLevelsPerSide            int     `yaml:"grid_levels_per_side" json:"grid_levels_per_side"`
	GridKillReplaceThresholdPct  float64 `yaml:"grid_kill_replace_threshold_pct" json:"grid_kill_replace_threshold_pct"`
	GridMinSecondsBetween        int     `yaml:"grid_min_seconds_between" json:"grid_min_seconds_between"`

	// DCA planner (C5)
	DCAEnabled                      bool    `yaml:"dca_enabled" json:"dca_enabled"`
	DCARSIThreshold                 float64 `yaml:"dca_rsi_threshold" json:"dca_rsi_threshold"`
	DCAUseEMAGate                   bool    `yaml:"dca_use_ema_gate" json:"dca_use_ema_gate"`
	DCACooldownBars                 int     `yaml:"dca_cooldown_bars" json:"dca_cooldown_bars"`
	DCAMinDistanceFromLastFillPct   float64 `yaml:"dca_min_distance_from_last_fill_pct" json:"dca_min_distance_from_last_fill_pct"`
	DCAPriceOffsetPct               float64 `yaml:"dca_price_offset_pct" json:"dca_price_offset_pct"`

	// TP planner (C5)
	TPEnabled       bool    `yaml:"tp_enabled" json:"tp_enabled"`
	TPRSIThreshold  float64 `yaml:"tp_rsi_threshold" json:"tp_rsi_threshold"`

	// PnL gate (C3)
	GateDegradedGapPct      float64 `yaml:"gate_degraded_gap_pct" json:"gate_degraded_gap_pct"`
	GatePausedGapPct        float64 `yaml:"gate_paused_gap_pct" json:"gate_paused_gap_pct"`
	GateDegradedDailyPnLPct float64 `yaml:"gate_degraded_daily_pnl_pct" json:"gate_degraded_daily_pnl_pct"`
	GatePausedDailyPnLPct   float64 `yaml:"gate_paused_daily_pnl_pct" json:"gate_paused_daily_pnl_pct"`

	// Hard stop / auto-resume (C4)
	HardStopDailyPnLPct   float64 `yaml:"hard_stop_daily_pnl_pct" json:"hard_stop_daily_pnl_pct"`
	HardStopGapPct        float64 `yaml:"hard_stop_gap_pct" json:"hard_stop_gap_pct"`
	AutoResumeEnabled     bool    `yaml:"auto_resume_enabled" json:"auto_resume_enabled"`
	ResumeRSIThreshold    float64 `yaml:"resume_rsi_threshold" json:"resume_rsi_threshold"`
	ResumePriceRecoveryPct float64 `yaml:"resume_price_recovery_pct" json:"resume_price_recovery_pct"`
	ResumeCooldownBars    int     `yaml:"resume_cooldown_bars" json:"resume_cooldown_bars"`

	// Order lifecycle manager (C6)
	OrderMaxAgeSeconds               int     `yaml:"order_max_age_seconds" json:"order_max_age_seconds"`
	OrderPriceDriftThresholdPct      float64 `yaml:"order_price_drift_threshold_pct" json:"order_price_drift_threshold_pct"`
	OrderCancelOnVolatilitySpike     bool    `yaml:"order_cancel_on_volatility_spike" json:"order_cancel_on_volatility_spike"`
	OrderVolatilitySpikeThreshold    float64 `yaml:"order_volatility_spike_threshold" json:"order_volatility_spike_threshold"`
	OrderCancelOnRSIReversal         bool    `yaml:"order_cancel_on_rsi_reversal" json:"order_cancel_on_rsi_reversal"`
	OrderRSIReversalThreshold        float64 `yaml:"order_rsi_reversal_threshold" json:"order_rsi_reversal_threshold"`

	MakerFeePct     float64 `yaml:"maker_fee_pct" json:"maker_fee_pct"`
	TakerFeePct     float64 `yaml:"taker_fee_pct" json:"taker_fee_pct"`
	UseBNBDiscount  bool    `yaml:"use_bnb_discount" json:"use_bnb_discount"`
	BNBDiscountPct  float64 `yaml:"bnb_discount_pct" json:"bnb_discount_pct"`

	// Exchange boundary, not in spec's enumeration but required to
	// evaluate the "too small" notional gate of §4.6.
	MinNotionalUSD float64 `yaml:"min_notional_usd" json:"min_notional_usd"`

	// OrderNotionalPct resolves an intent's quantity against current
	// equity, per §6 ("quantity is resolved by the execution
	// collaborator against equity"). Grounded on the teacher's
	// risk_manager.go base/max/min position-size-from-balance pattern,
	// narrowed to a flat percentage since the spec carries no signal
	// strength or confidence concept.
	OrderNotionalPct float64 `yaml:"order_notional_pct" json:"order_notional_pct"`

	// Indicator pipeline periods (C1); not individually named in §6's
	// policy enumeration but required to parameterize it.
	RSIPeriod  int `yaml:"rsi_period" json:"rsi_period"`
	ATRPeriod  int `yaml:"atr_period" json:"atr_period"`
	EMAFast    int `yaml:"ema_fast_period" json:"ema_fast_period"`
	EMAMid     int `yaml:"ema_mid_period" json:"ema_mid_period"`
	EMASlow    int `yaml:"ema_slow_period" json:"ema_slow_period"`
	BBPeriod   int `yaml:"bb_period" json:"bb_period"`
	BBStdDev   float64 `yaml:"bb_std_dev" json:"bb_std_dev"`
	WindowCapacity int `yaml:"window_capacity" json:"window_capacity"`
}

// GridMinIntervalDuration is GridMinSecondsBetween as a time.Duration.
func (p Policy) GridMinIntervalDuration() time.Duration {
	return time.Duration(p.GridMinSecondsBetween) * time.Second
}

// OrderMaxAgeDuration is OrderMaxAgeSeconds as a time.Duration.
func (p Policy) OrderMaxAgeDuration() time.Duration {
	return time.Duration(p.OrderMaxAgeSeconds) * time.Second
}

// DefaultPolicy returns the spec's documented defaults.
func DefaultPolicy() Policy {
	return Policy{
		UseDynamicSpread:  true,
		BandNearThreshold: 1.0,
		BandMidThreshold:  2.0,

		SpreadNearPct:  0.3,
		SpreadMidPct:   0.5,
		SpreadFarPct:   0.8,
		FixedSpreadPct: 0.5,

		RSIAdjustEnabled: true,
		RSIAdjustFactor:  0.1,

		TPSpreadNearPct: 0.5,
		TPSpreadMidPct:  0.8,
		TPSpreadFarPct:  1.2,

		GridEnabled:                 true,
		GridLevelsPerSide:           3,
		GridKillReplaceThresholdPct: 1.0,
		GridMinSecondsBetween:       300,

		DCAEnabled:                    true,
		DCARSIThreshold:               35,
		DCAUseEMAGate:                 false,
		DCACooldownBars:               5,
		DCAMinDistanceFromLastFillPct: 1.0,
		DCAPriceOffsetPct:             0.1,

		TPEnabled:      true,
		TPRSIThreshold: 65,

		GateDegradedGapPct:      -3.0,
		GatePausedGapPct:        -5.0,
		GateDegradedDailyPnLPct: -2.0,
		GatePausedDailyPnLPct:   -4.0,

		HardStopDailyPnLPct:    -5.0,
		HardStopGapPct:         -8.0,
		AutoResumeEnabled:      true,
		ResumeRSIThreshold:     40,
		ResumePriceRecoveryPct: 2.0,
		ResumeCooldownBars:     60,

		OrderMaxAgeSeconds:            300,
		OrderPriceDriftThresholdPct:   2.0,
		OrderCancelOnVolatilitySpike:  true,
		OrderVolatilitySpikeThreshold: 1.5,
		OrderCancelOnRSIReversal:      true,
		OrderRSIReversalThreshold:     20,

		MakerFeePct:    0.1,
		TakerFeePct:    0.1,
		UseBNBDiscount: true,
		BNBDiscountPct: 25,

		MinNotionalUSD: 11,
		OrderNotionalPct: 2.0,

		RSIPeriod:      14,
		ATRPeriod:      14,
		EMAFast:        9,
		EMAMid:         21,
		EMASlow:        50,
		BBPeriod:       20,
		BBStdDev:       2.0,
		WindowCapacity: 500,
	}
}
