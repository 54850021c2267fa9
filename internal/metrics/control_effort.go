package metrics

import (
	"math"

	"github.com/san-kum/dpisim/internal/dynamo"
)

type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s dynamo.Sample) {
	c.sum += math.Abs(s.U)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// SaturationRatio is the fraction of steps whose raw command was clamped.
type SaturationRatio struct {
	saturated int
	samples   int
}

func NewSaturationRatio() *SaturationRatio { return &SaturationRatio{} }

func (m *SaturationRatio) Name() string { return "saturation_ratio" }

func (m *SaturationRatio) Observe(s dynamo.Sample) {
	m.samples++
	if s.Saturated {
		m.saturated++
	}
}

func (m *SaturationRatio) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.saturated) / float64(m.samples)
}

func (m *SaturationRatio) Reset() {
	m.saturated = 0
	m.samples = 0
}
