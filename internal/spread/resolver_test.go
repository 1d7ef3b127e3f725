package spread

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

func TestResolve_MidBandNeutralRSI(t *testing.T) {
	p := config.DefaultPolicy()
	res := Resolve(p, 1.2, 50)
	assert.Equal(t, types.BandMid, res.Band)
	assert.InDelta(t, 0.5, res.SpreadPct, 1e-9)
	assert.InDelta(t, 0.8, res.TPSpreadPct, 1e-9)
}

func TestResolve_NearBand(t *testing.T) {
	p := config.DefaultPolicy()
	res := Resolve(p, 0.5, 50)
	assert.Equal(t, types.BandNear, res.Band)
	assert.InDelta(t, 0.3, res.SpreadPct, 1e-9)
}

func TestResolve_FarBand(t *testing.T) {
	p := config.DefaultPolicy()
	res := Resolve(p, 2.5, 50)
	assert.Equal(t, types.BandFar, res.Band)
	assert.InDelta(t, 0.8, res.SpreadPct, 1e-9)
}

func TestResolve_OversoldNarrowsSpread(t *testing.T) {
	p := config.DefaultPolicy()
	res := Resolve(p, 1.2, 25)
	assert.InDelta(t, 0.5*0.9, res.SpreadPct, 1e-9)
}

func TestResolve_OverboughtWidensSpread(t *testing.T) {
	p := config.DefaultPolicy()
	res := Resolve(p, 1.2, 75)
	assert.InDelta(t, 0.5*1.1, res.SpreadPct, 1e-9)
}

func TestResolve_FixedSpreadOverridesDynamic(t *testing.T) {
	p := config.DefaultPolicy()
	p.UseDynamicSpread = false
	res := Resolve(p, 2.5, 75)
	assert.InDelta(t, p.FixedSpreadPct, res.SpreadPct, 1e-9)
}
