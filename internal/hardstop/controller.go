// Package hardstop implements C4, the Hard-Stop & Auto-Resume
// Controller. Adapted from the teacher's internal/safety/circuit_breaker.go:
// its Closed / Open states become Running / Stopped, the multi-condition
// resume check takes the place of the HalfOpen trial, and the
// changeState-with-callback idiom is kept, but the mutex and goroutine-dispatched callback are
// dropped — §5 requires the core to be single-threaded and cooperative
// at the bar level, so state transitions are plain synchronous calls.
package hardstop

import (
	"time"

	"github.com/tranvietduc/hybridgrid-engine/pkg/config"
	"github.com/tranvietduc/hybridgrid-engine/pkg/types"
)

// State is the controller's two-value state machine.
type State int

const (
	StateRunning State = iota // no stop active
	StateStopped              // hard stop latched, waiting on auto-resume cooldown
)

// Stop records the active stop's origin.
type Stop struct {
	Active        bool
	StopPrice     float64
	StopTimestamp time.Time
	BarsSinceStop int
	Reason        string
}

// Controller owns the latched stop state for one symbol.
type Controller struct {
	stop          Stop
	onStateChange func(from, to State)
}

// New creates a Controller with no stop active.
func New() *Controller {
	return &Controller{}
}

// SetStateChangeCallback registers a hook invoked whenever the stop
// transitions between active and inactive.
func (c *Controller) SetStateChangeCallback(cb func(from, to State)) {
	c.onStateChange = cb
}

// Snapshot returns the current stop state.
func (c *Controller) Snapshot() Stop {
	return c.stop
}

// Active reports whether the hard stop currently suppresses the plan.
func (c *Controller) Active() bool {
	return c.stop.Active
}

// Evaluate runs the §4.4 hard-stop trigger and auto-resume checks for
// one bar and returns the resulting stop state. It must be called every
// bar, before the plan is emitted, regardless of whether a stop is
// already active — bars_since_stop only advances through this call.
func (c *Controller) Evaluate(policy config.Policy, bar types.Bar, rsi float64, rsiAvailable bool, gapPct, dailyPnLPct float64) Stop {
	if c.stop.Active {
		c.stop.BarsSinceStop++
		if policy.AutoResumeEnabled && c.resumeConditionsMet(policy, bar, rsi, rsiAvailable) {
			c.transition(StateRunning)
			c.stop = Stop{}
		}
		return c.stop
	}

	if dailyPnLPct <= policy.HardStopDailyPnLPct {
		c.trigger(bar, "daily PnL below hard-stop threshold")
		return c.stop
	}
	if gapPct <= policy.HardStopGapPct {
		c.trigger(bar, "gap below hard-stop threshold")
		return c.stop
	}

	return c.stop
}

func (c *Controller) resumeConditionsMet(policy config.Policy, bar types.Bar, rsi float64, rsiAvailable bool) bool {
	if c.stop.BarsSinceStop < policy.ResumeCooldownBars {
		return false
	}
	if !rsiAvailable || rsi < policy.ResumeRSIThreshold {
		return false
	}
	if c.stop.StopPrice == 0 {
		return false
	}
	recoveryPct := (bar.Close - c.stop.StopPrice) / c.stop.StopPrice * 100
	return recoveryPct >= policy.ResumePriceRecoveryPct
}

func (c *Controller) trigger(bar types.Bar, reason string) {
	c.transition(StateStopped)
	c.stop = Stop{
		Active:        true,
		StopPrice:     bar.Close,
		StopTimestamp: bar.Timestamp,
		BarsSinceStop: 0,
		Reason:        reason,
	}
}

// transition fires the state-change callback based on the state active
// before this call. Callers invoke it before mutating c.stop so "from"
// reflects the prior state.
func (c *Controller) transition(to State) {
	from := StateRunning
	if c.stop.Active {
		from = StateStopped
	}
	if c.onStateChange != nil && from != to {
		c.onStateChange(from, to)
	}
}
