// Package reference builds setpoint trajectories sampled on the simulation grid.
package reference

import (
	"fmt"
	"math"
)

// Generator returns the setpoint at time t.
type Generator interface {
	At(t float64) float64
}

// Constant holds one value for all t.
type Constant float64

func (c Constant) At(float64) float64 { return float64(c) }

// Step switches from Initial to Value at Time (inclusive).
type Step struct {
	Initial float64
	Value   float64
	Time    float64
}

func (s Step) At(t float64) float64 {
	if t+1e-12 >= s.Time {
		return s.Value
	}
	return s.Initial
}

// Ramp rises from Initial with Slope starting at Start, capped at Value when Slope != 0.
type Ramp struct {
	Initial float64
	Slope   float64
	Start   float64
	Value   float64
}

func (r Ramp) At(t float64) float64 {
	if t <= r.Start {
		return r.Initial
	}
	v := r.Initial + r.Slope*(t-r.Start)
	if r.Slope > 0 {
		return math.Min(v, r.Value)
	}
	if r.Slope < 0 {
		return math.Max(v, r.Value)
	}
	return v
}

// Sample evaluates g at t[k] = k*ts for k in [0, n).
func Sample(g Generator, ts float64, n int) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = g.At(float64(k) * ts)
	}
	return out
}

// Spec is the serializable description of a generator.
type Spec struct {
	Kind    string  `yaml:"kind" json:"kind"`
	Value   float64 `yaml:"value" json:"value"`
	Initial float64 `yaml:"initial" json:"initial"`
	At      float64 `yaml:"at" json:"at"`
	Slope   float64 `yaml:"slope,omitempty" json:"slope,omitempty"`
}

// Build turns a Spec into a Generator. An empty kind is a step.
func (s Spec) Build() (Generator, error) {
	switch s.Kind {
	case "", "step":
		return Step{Initial: s.Initial, Value: s.Value, Time: s.At}, nil
	case "constant":
		return Constant(s.Value), nil
	case "ramp":
		return Ramp{Initial: s.Initial, Slope: s.Slope, Start: s.At, Value: s.Value}, nil
	default:
		return nil, fmt.Errorf("unknown reference kind: %s", s.Kind)
	}
}
