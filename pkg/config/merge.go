package config

// PolicyOverride mirrors Policy field-for-field with pointers so a
// per-symbol override document can express "set this field to false/0"
// distinctly from "leave this field at the default" — a plain Policy
// value merged by zero-check can never express the former, since a
// disabled bool and an unset bool are both Go's zero value. There is no
// deep merge and no inheritance chain: a field set on the override
// always wins outright, field by field.
type PolicyOverride struct {
	UseDynamicSpread  *bool    `yaml:"use_dynamic_spread,omitempty" json:"use_dynamic_spread,omitempty"`
	BandNearThreshold *float64 `yaml:"band_near_threshold,omitempty" json:"band_near_threshold,omitempty"`
	BandMidThreshold  *float64 `yaml:"band_mid_threshold,omitempty" json:"band_mid_threshold,omitempty"`

	SpreadNearPct  *float64 `yaml:"spread_near_pct,omitempty" json:"spread_near_pct,omitempty"`
	SpreadMidPct   *float64 `yaml:"spread_mid_pct,omitempty" json:"spread_mid_pct,omitempty"`
	SpreadFarPct   *float64 `yaml:"spread_far_pct,omitempty" json:"spread_far_pct,omitempty"`
	FixedSpreadPct *float64 `yaml:"fixed_spread_pct,omitempty" json:"fixed_spread_pct,omitempty"`

	RSIAdjustEnabled *bool    `yaml:"rsi_adjust_enabled,omitempty" json:"rsi_adjust_enabled,omitempty"`
	RSIAdjustFactor  *float64 `yaml:"rsi_adjust_factor,omitempty" json:"rsi_adjust_factor,omitempty"`

	TPSpreadNearPct *float64 `yaml:"tp_spread_near_pct,omitempty" json:"tp_spread_near_pct,omitempty"`
	TPSpreadMidPct  *float64 `yaml:"tp_spread_mid_pct,omitempty" json:"tp_spread_mid_pct,omitempty"`
	TPSpreadFarPct  *float64 `yaml:"tp_spread_far_pct,omitempty" json:"tp_spread_far_pct,omitempty"`

	GridEnabled                 *bool    `yaml:"grid_enabled,omitempty" json:"grid_enabled,omitempty"`
	GridLevelsPerSide           *int     `yaml:"grid_levels_per_side,omitempty" json:"grid_levels_per_side,omitempty"`
	GridKillReplaceThresholdPct *float64 `yaml:"grid_kill_replace_threshold_pct,omitempty" json:"grid_kill_replace_threshold_pct,omitempty"`
	GridMinSecondsBetween       *int     `yaml:"grid_min_seconds_between,omitempty" json:"grid_min_seconds_between,omitempty"`

	DCAEnabled                    *bool    `yaml:"dca_enabled,omitempty" json:"dca_enabled,omitempty"`
	DCARSIThreshold               *float64 `yaml:"dca_rsi_threshold,omitempty" json:"dca_rsi_threshold,omitempty"`
	DCAUseEMAGate                 *bool    `yaml:"dca_use_ema_gate,omitempty" json:"dca_use_ema_gate,omitempty"`
	DCACooldownBars               *int     `yaml:"dca_cooldown_bars,omitempty" json:"dca_cooldown_bars,omitempty"`
	DCAMinDistanceFromLastFillPct *float64 `yaml:"dca_min_distance_from_last_fill_pct,omitempty" json:"dca_min_distance_from_last_fill_pct,omitempty"`
	DCAPriceOffsetPct             *float64 `yaml:"dca_price_offset_pct,omitempty" json:"dca_price_offset_pct,omitempty"`

	TPEnabled      *bool    `yaml:"tp_enabled,omitempty" json:"tp_enabled,omitempty"`
	TPRSIThreshold *float64 `yaml:"tp_rsi_threshold,omitempty" json:"tp_rsi_threshold,omitempty"`

	GateDegradedGapPct      *float64 `yaml:"gate_degraded_gap_pct,omitempty" json:"gate_degraded_gap_pct,omitempty"`
	GatePausedGapPct        *float64 `yaml:"gate_paused_gap_pct,omitempty" json:"gate_paused_gap_pct,omitempty"`
	GateDegradedDailyPnLPct *float64 `yaml:"gate_degraded_daily_pnl_pct,omitempty" json:"gate_degraded_daily_pnl_pct,omitempty"`
	GatePausedDailyPnLPct   *float64 `yaml:"gate_paused_daily_pnl_pct,omitempty" json:"gate_paused_daily_pnl_pct,omitempty"`

	HardStopDailyPnLPct    *float64 `yaml:"hard_stop_daily_pnl_pct,omitempty" json:"hard_stop_daily_pnl_pct,omitempty"`
	HardStopGapPct         *float64 `yaml:"hard_stop_gap_pct,omitempty" json:"hard_stop_gap_pct,omitempty"`
	AutoResumeEnabled      *bool    `yaml:"auto_resume_enabled,omitempty" json:"auto_resume_enabled,omitempty"`
	ResumeRSIThreshold     *float64 `yaml:"resume_rsi_threshold,omitempty" json:"resume_rsi_threshold,omitempty"`
	ResumePriceRecoveryPct *float64 `yaml:"resume_price_recovery_pct,omitempty" json:"resume_price_recovery_pct,omitempty"`
	ResumeCooldownBars     *int     `yaml:"resume_cooldown_bars,omitempty" json:"resume_cooldown_bars,omitempty"`

	OrderMaxAgeSeconds            *int     `yaml:"order_max_age_seconds,omitempty" json:"order_max_age_seconds,omitempty"`
	OrderPriceDriftThresholdPct   *float64 `yaml:"order_price_drift_threshold_pct,omitempty" json:"order_price_drift_threshold_pct,omitempty"`
	OrderCancelOnVolatilitySpike  *bool    `yaml:"order_cancel_on_volatility_spike,omitempty" json:"order_cancel_on_volatility_spike,omitempty"`
	OrderVolatilitySpikeThreshold *float64 `yaml:"order_volatility_spike_threshold,omitempty" json:"order_volatility_spike_threshold,omitempty"`
	OrderCancelOnRSIReversal      *bool    `yaml:"order_cancel_on_rsi_reversal,omitempty" json:"order_cancel_on_rsi_reversal,omitempty"`
	OrderRSIReversalThreshold     *float64 `yaml:"order_rsi_reversal_threshold,omitempty" json:"order_rsi_reversal_threshold,omitempty"`

	MakerFeePct    *float64 `yaml:"maker_fee_pct,omitempty" json:"maker_fee_pct,omitempty"`
	TakerFeePct    *float64 `yaml:"taker_fee_pct,omitempty" json:"taker_fee_pct,omitempty"`
	UseBNBDiscount *bool    `yaml:"use_bnb_discount,omitempty" json:"use_bnb_discount,omitempty"`
	BNBDiscountPct *float64 `yaml:"bnb_discount_pct,omitempty" json:"bnb_discount_pct,omitempty"`

	MinNotionalUSD   *float64 `yaml:"min_notional_usd,omitempty" json:"min_notional_usd,omitempty"`
	OrderNotionalPct *float64 `yaml:"order_notional_pct,omitempty" json:"order_notional_pct,omitempty"`

	RSIPeriod      *int     `yaml:"rsi_period,omitempty" json:"rsi_period,omitempty"`
	ATRPeriod      *int     `yaml:"atr_period,omitempty" json:"atr_period,omitempty"`
	EMAFast        *int     `yaml:"ema_fast_period,omitempty" json:"ema_fast_period,omitempty"`
	EMAMid         *int     `yaml:"ema_mid_period,omitempty" json:"ema_mid_period,omitempty"`
	EMASlow        *int     `yaml:"ema_slow_period,omitempty" json:"ema_slow_period,omitempty"`
	BBPeriod       *int     `yaml:"bb_period,omitempty" json:"bb_period,omitempty"`
	BBStdDev       *float64 `yaml:"bb_std_dev,omitempty" json:"bb_std_dev,omitempty"`
	WindowCapacity *int     `yaml:"window_capacity,omitempty" json:"window_capacity,omitempty"`
}

// MergeOverride shallow-merges a per-symbol override onto the default
// policy: every non-nil field in override replaces the base's value,
// field by field; every nil field leaves the base untouched. Because
// override fields are pointers, a symbol can explicitly set
// grid_enabled: false or use_bnb_discount: false and have it stick.
func MergeOverride(base Policy, override PolicyOverride) Policy {
	merged := base

	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}

	setBool(&merged.UseDynamicSpread, override.UseDynamicSpread)
	setFloat(&merged.BandNearThreshold, override.BandNearThreshold)
	setFloat(&merged.BandMidThreshold, override.BandMidThreshold)

	setFloat(&merged.SpreadNearPct, override.SpreadNearPct)
	setFloat(&merged.SpreadMidPct, override.SpreadMidPct)
	setFloat(&merged.SpreadFarPct, override.SpreadFarPct)
	setFloat(&merged.FixedSpreadPct, override.FixedSpreadPct)

	setBool(&merged.RSIAdjustEnabled, override.RSIAdjustEnabled)
	setFloat(&merged.RSIAdjustFactor, override.RSIAdjustFactor)

	setFloat(&merged.TPSpreadNearPct, override.TPSpreadNearPct)
	setFloat(&merged.TPSpreadMidPct, override.TPSpreadMidPct)
	setFloat(&merged.TPSpreadFarPct, override.TPSpreadFarPct)

	setBool(&merged.GridEnabled, override.GridEnabled)
	setInt(&merged.GridLevelsPerSide, override.GridLevelsPerSide)
	setFloat(&merged.GridKillReplaceThresholdPct, override.GridKillReplaceThresholdPct)
	setInt(&merged.GridMinSecondsBetween, override.GridMinSecondsBetween)

	setBool(&merged.DCAEnabled, override.DCAEnabled)
	setFloat(&merged.DCARSIThreshold, override.DCARSIThreshold)
	setBool(&merged.DCAUseEMAGate, override.DCAUseEMAGate)
	setInt(&merged.DCACooldownBars, override.DCACooldownBars)
	setFloat(&merged.DCAMinDistanceFromLastFillPct, override.DCAMinDistanceFromLastFillPct)
	setFloat(&merged.DCAPriceOffsetPct, override.DCAPriceOffsetPct)

	setBool(&merged.TPEnabled, override.TPEnabled)
	setFloat(&merged.TPRSIThreshold, override.TPRSIThreshold)

	setFloat(&merged.GateDegradedGapPct, override.GateDegradedGapPct)
	setFloat(&merged.GatePausedGapPct, override.GatePausedGapPct)
	setFloat(&merged.GateDegradedDailyPnLPct, override.GateDegradedDailyPnLPct)
	setFloat(&merged.GatePausedDailyPnLPct, override.GatePausedDailyPnLPct)

	setFloat(&merged.HardStopDailyPnLPct, override.HardStopDailyPnLPct)
	setFloat(&merged.HardStopGapPct, override.HardStopGapPct)
	setBool(&merged.AutoResumeEnabled, override.AutoResumeEnabled)
	setFloat(&merged.ResumeRSIThreshold, override.ResumeRSIThreshold)
	setFloat(&merged.ResumePriceRecoveryPct, override.ResumePriceRecoveryPct)
	setInt(&merged.ResumeCooldownBars, override.ResumeCooldownBars)

	setInt(&merged.OrderMaxAgeSeconds, override.OrderMaxAgeSeconds)
	setFloat(&merged.OrderPriceDriftThresholdPct, override.OrderPriceDriftThresholdPct)
	setBool(&merged.OrderCancelOnVolatilitySpike, override.OrderCancelOnVolatilitySpike)
	setFloat(&merged.OrderVolatilitySpikeThreshold, override.OrderVolatilitySpikeThreshold)
	setBool(&merged.OrderCancelOnRSIReversal, override.OrderCancelOnRSIReversal)
	setFloat(&merged.OrderRSIReversalThreshold, override.OrderRSIReversalThreshold)

	setFloat(&merged.MakerFeePct, override.MakerFeePct)
	setFloat(&merged.TakerFeePct, override.TakerFeePct)
	setBool(&merged.UseBNBDiscount, override.UseBNBDiscount)
	setFloat(&merged.BNBDiscountPct, override.BNBDiscountPct)

	setFloat(&merged.MinNotionalUSD, override.MinNotionalUSD)
	setFloat(&merged.OrderNotionalPct, override.OrderNotionalPct)

	setInt(&merged.RSIPeriod, override.RSIPeriod)
	setInt(&merged.ATRPeriod, override.ATRPeriod)
	setInt(&merged.EMAFast, override.EMAFast)
	setInt(&merged.EMAMid, override.EMAMid)
	setInt(&merged.EMASlow, override.EMASlow)
	setInt(&merged.BBPeriod, override.BBPeriod)
	setFloat(&merged.BBStdDev, override.BBStdDev)
	setInt(&merged.WindowCapacity, override.WindowCapacity)

	return merged
}

// SymbolPolicies is the document shape loaded from a policy file: a
// default override plus a set of named per-symbol overrides, both
// shallow-merged onto DefaultPolicy() so a file may omit fields
// entirely.
type SymbolPolicies struct {
	Default   PolicyOverride            `yaml:"default" json:"default"`
	Overrides map[string]PolicyOverride `yaml:"symbols" json:"symbols"`
}

// Resolve returns the effective policy for a symbol: the file's default
// shallow-merged with any override registered for that symbol, itself
// shallow-merged onto DefaultPolicy().
func (s SymbolPolicies) Resolve(symbol string) Policy {
	base := MergeOverride(DefaultPolicy(), s.Default)
	if override, ok := s.Overrides[symbol]; ok {
		base = MergeOverride(base, override)
	}
	return base
}
