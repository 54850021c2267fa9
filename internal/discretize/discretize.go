// Package discretize turns a continuous first-order plant into the canonical
// coefficient pair consumed by the closed-loop simulator.
package discretize

import (
	"fmt"

	"github.com/san-kum/dpisim/internal/c2d"
	"github.com/san-kum/dpisim/internal/dynamo"
)

// Transform is a continuous-to-discrete conversion. Its output shape is not
// trusted: rows may be ragged and the leading denominator coefficient need not be 1.
type Transform interface {
	C2D(plant dynamo.ContinuousPlant, ts float64) (dynamo.RawTransferFunction, error)
}

type Discretizer struct {
	transform Transform
}

// New returns a Discretizer using t, or zero-order hold when t is nil.
func New(t Transform) *Discretizer {
	if t == nil {
		t = c2d.ZOH{}
	}
	return &Discretizer{transform: t}
}

// Discretize samples plant at ts and returns (b1, a1) for
// y[k] = b1*u[k-1] - a1*y[k-1].
func (d *Discretizer) Discretize(plant dynamo.ContinuousPlant, ts float64) (dynamo.DiscreteCoefficients, error) {
	if !(ts > 0) {
		return dynamo.DiscreteCoefficients{}, fmt.Errorf("%w: ts=%g", dynamo.ErrInvalidSamplePeriod, ts)
	}

	raw, err := d.transform.C2D(plant, ts)
	if err != nil {
		return dynamo.DiscreteCoefficients{}, fmt.Errorf("c2d: %w", err)
	}

	num, den, err := Normalize(Flatten(raw.Num), Flatten(raw.Den))
	if err != nil {
		return dynamo.DiscreteCoefficients{}, err
	}
	num = PadNumerator(num)

	if len(den) != 2 {
		return dynamo.DiscreteCoefficients{}, &dynamo.OrderError{Den: den}
	}
	if len(num) != 2 {
		return dynamo.DiscreteCoefficients{}, fmt.Errorf("%w: numerator %v does not fit a first-order recurrence", dynamo.ErrUnexpectedOrder, num)
	}

	return dynamo.DiscreteCoefficients{
		B1:  num[1],
		A1:  den[1],
		Num: num,
		Den: den,
	}, nil
}

// Flatten concatenates rows into one ordered sequence.
func Flatten(rows [][]float64) []float64 {
	n := 0
	for _, r := range rows {
		n += len(r)
	}
	out := make([]float64, 0, n)
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

// Normalize scales num and den so that den[0] == 1. Already-normalized input
// is returned as copies, untouched.
func Normalize(num, den []float64) ([]float64, []float64, error) {
	if len(den) == 0 || den[0] == 0 {
		return nil, nil, fmt.Errorf("%w: den=%v", dynamo.ErrDegenerateModel, den)
	}

	n := append([]float64(nil), num...)
	d := append([]float64(nil), den...)
	if lead := d[0]; lead != 1 {
		for i := range n {
			n[i] /= lead
		}
		for i := range d {
			d[i] /= lead
		}
	}
	return n, d, nil
}

// PadNumerator treats a single coefficient as the z^-1 term by prepending a
// zero z^0 term. Other lengths are returned unchanged.
func PadNumerator(num []float64) []float64 {
	if len(num) != 1 {
		return num
	}
	return []float64{0, num[0]}
}
