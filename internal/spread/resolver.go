// Package spread implements C2, the Band & Spread Resolver: a pure,
// side-effect-free mapping from (atr_pct, rsi) to a volatility band and
// a dynamic spread percentage. There is no teacher analogue for this
// exact resolver; it follows the teacher's pattern of small, stateless,
// single-purpose indicator-adjacent types (e.g.
// internal/indicators/rsi.go's GetSignalStrength).
package spread

import (
	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// Resolution is the resolver's per-bar output.
type Resolution struct {
	Band         types.Band
	SpreadPct    float64
	TPSpreadPct  float64
}

// Resolve maps current ATR% and RSI to a band and spread per spec §4.2.
func Resolve(policy config.Policy, atrPct, rsi float64) Resolution {
	band := classifyBand(policy, atrPct)

	base, tpBase := bandSpreads(policy, band)

	spreadPct := base
	if policy.RSIAdjustEnabled {
		spreadPct = adjustForRSI(policy, base, rsi)
	}
	if !policy.UseDynamicSpread {
		spreadPct = policy.FixedSpreadPct
	}

	return Resolution{
		Band:        band,
		SpreadPct:   spreadPct,
		TPSpreadPct: tpBase,
	}
}

func classifyBand(policy config.Policy, atrPct float64) types.Band {
	switch {
	case atrPct < policy.BandNearThreshold:
		return types.BandNear
	case atrPct < policy.BandMidThreshold:
		return types.BandMid
	default:
		return types.BandFar
	}
}

func bandSpreads(policy config.Policy, band types.Band) (spreadPct, tpSpreadPct float64) {
	switch band {
	case types.BandNear:
		return policy.SpreadNearPct, policy.TPSpreadNearPct
	case types.BandMid:
		return policy.SpreadMidPct, policy.TPSpreadMidPct
	default:
		return policy.SpreadFarPct, policy.TPSpreadFarPct
	}
}

func adjustForRSI(policy config.Policy, base, rsi float64) float64 {
	switch {
	case rsi < 30:
		return base * (1 - policy.RSIAdjustFactor)
	case rsi > 70:
		return base * (1 + policy.RSIAdjustFactor)
	default:
		return base
	}
}
