package metrics

import (
	"math"

	"github.com/san-kum/dpisim/internal/dynamo"
)

// Overshoot is the peak excursion above the final reference, in percent of it.
// For a zero reference the absolute peak is reported.
type Overshoot struct {
	peak    float64
	ref     float64
	samples int
}

func NewOvershoot() *Overshoot { return &Overshoot{} }

func (m *Overshoot) Name() string { return "overshoot_pct" }

func (m *Overshoot) Observe(s dynamo.Sample) {
	if m.samples == 0 || s.Y > m.peak {
		m.peak = s.Y
	}
	m.ref = s.Ref
	m.samples++
}

func (m *Overshoot) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	if m.ref == 0 {
		return math.Max(0, m.peak)
	}
	return math.Max(0, (m.peak-m.ref)/math.Abs(m.ref)*100)
}

func (m *Overshoot) Reset() {
	m.peak = 0
	m.ref = 0
	m.samples = 0
}

// SettlingTime is the first time after which |y - ref| stays within band*|ref|.
type SettlingTime struct {
	band        float64
	lastOutside float64
	outside     bool
	ever        bool
	samples     int
}

func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{band: band}
}

func (m *SettlingTime) Name() string { return "settling_time" }

func (m *SettlingTime) Observe(s dynamo.Sample) {
	m.samples++
	tol := m.band * math.Max(math.Abs(s.Ref), 1e-12)
	m.outside = math.Abs(s.Y-s.Ref) > tol
	if m.outside {
		m.lastOutside = s.T + s.Dt
		m.ever = true
	}
}

func (m *SettlingTime) Value() float64 {
	if m.samples == 0 || m.outside {
		return NotSettled
	}
	if !m.ever {
		return 0
	}
	return m.lastOutside
}

func (m *SettlingTime) Reset() {
	m.lastOutside = 0
	m.outside = false
	m.ever = false
	m.samples = 0
}
