package control

import "github.com/san-kum/dpisim/internal/dynamo"

type Incremental struct {
	K0     float64
	K1     float64
	Limits dynamo.Limits
}

func NewIncremental(g dynamo.Gains, ts float64, limits dynamo.Limits) (Incremental, error) {
	if err := limits.Validate(); err != nil {
		return Incremental{}, err
	}
	k0, k1, err := g.Incremental(ts)
	if err != nil {
		return Incremental{}, err
	}
	return Incremental{K0: k0, K1: k1, Limits: limits}, nil
}

// Raw is the unsaturated command.
func (c Incremental) Raw(uPrev, e, ePrev float64) float64 {
	return uPrev + c.K0*e + c.K1*ePrev
}

// Command returns the clamped command and whether clamping changed it.
// A raw command exactly on a bound is not saturated.
func (c Incremental) Command(uPrev, e, ePrev float64) (u float64, saturated bool) {
	raw := c.Raw(uPrev, e, ePrev)
	u = c.Limits.Clamp(raw)
	return u, u != raw
}

// Step returns the command clamped to the actuator limits.
func (c Incremental) Step(uPrev, e, ePrev float64) float64 {
	u, _ := c.Command(uPrev, e, ePrev)
	return u
}

// Params returns the controller coefficients for reporting.
func (c Incremental) Params() map[string]float64 {
	return map[string]float64{
		"K0":   c.K0,
		"K1":   c.K1,
		"UMin": c.Limits.Min,
		"UMax": c.Limits.Max,
	}
}
