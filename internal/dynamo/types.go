package dynamo

import (
	"fmt"
	"math"
)

// MaxHorizon caps the number of samples of a single run.
const MaxHorizon = 10_000_000

// horizonEps absorbs the rounding in tEnd/ts so that 60/0.1 counts 600 whole periods.
const horizonEps = 1e-9

// ContinuousPlant is a rational transfer function in s, highest power first.
type ContinuousPlant struct {
	Num []float64 `yaml:"num" json:"num"`
	Den []float64 `yaml:"den" json:"den"`
}

// Trimmed returns copies of Num and Den without leading zeros.
func (p ContinuousPlant) Trimmed() (num, den []float64) {
	return TrimLeadingZeros(p.Num), TrimLeadingZeros(p.Den)
}

// Order is the degree of the trimmed denominator, or -1 if it is empty.
func (p ContinuousPlant) Order() int {
	_, den := p.Trimmed()
	return len(den) - 1
}

// Validate checks that the plant is proper and has a usable denominator.
func (p ContinuousPlant) Validate() error {
	num, den := p.Trimmed()
	if len(den) == 0 {
		return ErrDegenerateModel
	}
	if len(num) > len(den) {
		return fmt.Errorf("%w: numerator order %d > denominator order %d", ErrImproperPlant, len(num)-1, len(den)-1)
	}
	for _, v := range append(append([]float64{}, num...), den...) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coefficient", ErrDegenerateModel)
		}
	}
	return nil
}

func (p ContinuousPlant) String() string {
	return fmt.Sprintf("%v / %v", p.Num, p.Den)
}

// TrimLeadingZeros drops exact leading zeros, returning a fresh slice.
func TrimLeadingZeros(c []float64) []float64 {
	i := 0
	for i < len(c) && c[i] == 0 {
		i++
	}
	out := make([]float64, len(c)-i)
	copy(out, c[i:])
	return out
}

// DiscreteCoefficients is the canonical first-order recurrence
// y[k] = B1*u[k-1] - A1*y[k-1], together with the normalized sequences it was read from.
type DiscreteCoefficients struct {
	B1  float64   `json:"b1"`
	A1  float64   `json:"a1"`
	Num []float64 `json:"num"`
	Den []float64 `json:"den"`
}

// Next evaluates the plant recurrence from the previous step's input and output.
func (c DiscreteCoefficients) Next(uPrev, yPrev float64) float64 {
	return c.B1*uPrev - c.A1*yPrev
}

// DCGain is the steady-state gain B1/(1+A1); +Inf for an integrating plant.
func (c DiscreteCoefficients) DCGain() float64 {
	return c.B1 / (1 + c.A1)
}

func (c DiscreteCoefficients) String() string {
	return fmt.Sprintf("y[k] = %.6g*u[k-1] - (%.6g)*y[k-1]", c.B1, c.A1)
}

// Gains are the PI tuning parameters: proportional gain and integral time.
type Gains struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Ti float64 `yaml:"ti" json:"ti"`
}

// Incremental converts the gains to the two-term incremental form
//
//	u[k] = u[k-1] + K0*e[k] + K1*e[k-1]
func (g Gains) Incremental(ts float64) (k0, k1 float64, err error) {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return 0, 0, ErrInvalidSamplePeriod
	}
	if !(g.Ti > 0) || math.IsInf(g.Ti, 0) || math.IsNaN(g.Kp) || math.IsInf(g.Kp, 0) {
		return 0, 0, fmt.Errorf("%w: kp=%g ti=%g", ErrInvalidGains, g.Kp, g.Ti)
	}
	half := g.Kp * ts / (2 * g.Ti)
	return g.Kp + half, -g.Kp + half, nil
}

// Limits is the inclusive actuator range [Min, Max].
type Limits struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// DefaultLimits is the 0..100 % actuator range.
var DefaultLimits = Limits{Min: 0, Max: 100}

func (l Limits) Validate() error {
	if math.IsNaN(l.Min) || math.IsNaN(l.Max) || l.Min > l.Max {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidLimits, l.Min, l.Max)
	}
	return nil
}

// Clamp returns u limited to [Min, Max]. Values on a bound are unchanged.
func (l Limits) Clamp(u float64) float64 {
	return math.Max(l.Min, math.Min(l.Max, u))
}

// Contains reports whether u lies in the closed interval.
func (l Limits) Contains(u float64) bool {
	return u >= l.Min && u <= l.Max
}

// State is the one-step history of the loop.
type State struct {
	YPrev   float64
	UPrev   float64
	ErrPrev float64
}

// Series holds the per-step signals of a run, indexed by k.
type Series struct {
	Times []float64 `json:"times"`
	Ref   []float64 `json:"ref"`
	Y     []float64 `json:"y"`
	U     []float64 `json:"u"`
	Err   []float64 `json:"error"`
}

// NewSeries allocates a series of n samples with the time axis t[k] = k*ts filled in.
func NewSeries(n int, ts float64) *Series {
	s := &Series{
		Times: make([]float64, n),
		Ref:   make([]float64, n),
		Y:     make([]float64, n),
		U:     make([]float64, n),
		Err:   make([]float64, n),
	}
	for k := range s.Times {
		s.Times[k] = float64(k) * ts
	}
	return s
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Times)
}

// Horizon returns the number of samples N = floor(tEnd/ts) + 1 covering [0, tEnd].
// N is limited to MaxHorizon.
func Horizon(tEnd, ts float64) (int, error) {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return 0, fmt.Errorf("%w: ts=%g", ErrInvalidHorizon, ts)
	}
	if !(tEnd > 0) || math.IsInf(tEnd, 0) {
		return 0, fmt.Errorf("%w: duration=%g", ErrInvalidHorizon, tEnd)
	}
	r := tEnd / ts
	if r >= MaxHorizon {
		return 0, fmt.Errorf("%w: duration=%g ts=%g exceeds %d steps", ErrInvalidHorizon, tEnd, ts, MaxHorizon)
	}
	n := int(math.Floor(r+horizonEps*math.Max(1, r))) + 1
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d steps", ErrInvalidHorizon, n)
	}
	return n, nil
}

// RawTransferFunction is a discrete transfer function as returned by a
// continuous-to-discrete transform: one coefficient row per channel, not
// necessarily normalized or flat.
type RawTransferFunction struct {
	Num [][]float64
	Den [][]float64
}

// Sample is one committed step of the loop, handed to metrics and observers.
type Sample struct {
	K         int
	T         float64
	Dt        float64
	Ref       float64
	Y         float64
	U         float64
	Err       float64
	Saturated bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Sample)
}
