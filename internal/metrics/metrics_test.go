package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dpisim/internal/dynamo"
)

func feed(m dynamo.Metric, ys []float64, ref, dt float64) {
	for k, y := range ys {
		m.Observe(dynamo.Sample{K: k, T: float64(k) * dt, Dt: dt, Ref: ref, Y: y, Err: ref - y, U: y})
	}
}

func TestIAEAndISE(t *testing.T) {
	iae, ise := NewIAE(), NewISE()
	ys := []float64{0, 0.5, 1.5}
	feed(iae, ys, 1, 0.1)
	feed(ise, ys, 1, 0.1)

	if math.Abs(iae.Value()-0.2) > 1e-12 {
		t.Errorf("expected iae 0.2, got %f", iae.Value())
	}
	if math.Abs(ise.Value()-0.15) > 1e-12 {
		t.Errorf("expected ise 0.15, got %f", ise.Value())
	}

	iae.Reset()
	if iae.Value() != 0 {
		t.Error("expected zero iae after reset")
	}
}

func TestOvershoot(t *testing.T) {
	m := NewOvershoot()
	feed(m, []float64{0, 0.8, 1.1, 1.0}, 1, 0.1)
	if math.Abs(m.Value()-10) > 1e-9 {
		t.Errorf("expected 10%% overshoot, got %f", m.Value())
	}

	m.Reset()
	feed(m, []float64{0, 0.5, 0.9}, 1, 0.1)
	if m.Value() != 0 {
		t.Errorf("expected no overshoot, got %f", m.Value())
	}
}

func TestSettlingTime(t *testing.T) {
	m := NewSettlingTime(0.02)
	feed(m, []float64{0, 0.5, 0.9, 0.99, 1.0, 1.0}, 1, 1)
	if m.Value() != 3 {
		t.Errorf("expected settling at t=3, got %f", m.Value())
	}

	m.Reset()
	feed(m, []float64{0, 0.5}, 1, 1)
	if m.Value() != NotSettled {
		t.Errorf("expected NotSettled, got %f", m.Value())
	}
}

func TestSaturationRatio(t *testing.T) {
	m := NewSaturationRatio()
	m.Observe(dynamo.Sample{Saturated: true})
	m.Observe(dynamo.Sample{})
	m.Observe(dynamo.Sample{})
	m.Observe(dynamo.Sample{Saturated: true})
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(dynamo.Sample{U: 2})
	m.Observe(dynamo.Sample{U: -4})
	if m.Value() != 3 {
		t.Errorf("expected 3, got %f", m.Value())
	}
}

func TestDefaultNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(seen))
	}
}
