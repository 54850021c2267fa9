package metrics

import (
	"math"

	"github.com/san-kum/dpisim/internal/dynamo"
)

// IAE is the integral of absolute tracking error.
type IAE struct {
	sum float64
}

func NewIAE() *IAE { return &IAE{} }

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(s dynamo.Sample) {
	m.sum += math.Abs(s.Err) * s.Dt
}

func (m *IAE) Value() float64 { return m.sum }
func (m *IAE) Reset()         { m.sum = 0 }

// ISE is the integral of squared tracking error.
type ISE struct {
	sum float64
}

func NewISE() *ISE { return &ISE{} }

func (m *ISE) Name() string { return "ise" }

func (m *ISE) Observe(s dynamo.Sample) {
	m.sum += s.Err * s.Err * s.Dt
}

func (m *ISE) Value() float64 { return m.sum }
func (m *ISE) Reset()         { m.sum = 0 }
