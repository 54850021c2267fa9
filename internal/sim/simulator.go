package sim

import (
	"fmt"

	"github.com/san-kum/dpisim/internal/control"
	"github.com/san-kum/dpisim/internal/dynamo"
)

// Simulator runs the sampled loop: first-order discrete plant, incremental PI
// controller and actuator saturation. It keeps no state between runs.
type Simulator struct {
	plant     dynamo.DiscreteCoefficients
	ctrl      control.Incremental
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(plant dynamo.DiscreteCoefficients, ctrl control.Incremental) *Simulator {
	return &Simulator{
		plant:     plant,
		ctrl:      ctrl,
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run evaluates the loop for every k in [0, N). ref must hold exactly N samples.
func (s *Simulator) Run(ref []float64, cfg Config) (*Result, error) {
	n, err := s.validate(ref, cfg)
	if err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	series := dynamo.NewSeries(n, cfg.Ts)
	copy(series.Ref, ref)
	result := &Result{
		Series:  series,
		Metrics: make(map[string]float64),
	}

	var st dynamo.State
	for k := 0; k < n; k++ {
		// y[k] only depends on step k-1, so there is no algebraic loop
		y := s.plant.Next(st.UPrev, st.YPrev)
		e := ref[k] - y
		u, saturated := s.ctrl.Command(st.UPrev, e, st.ErrPrev)

		series.Y[k] = y
		series.U[k] = u
		series.Err[k] = e
		// the clamped command is the next step's u[k-1]
		st = dynamo.State{YPrev: y, UPrev: u, ErrPrev: e}

		if saturated {
			result.Saturated++
		}
		result.StepsTaken++

		if len(s.metrics) == 0 && len(s.observers) == 0 {
			continue
		}
		sample := dynamo.Sample{
			K:         k,
			T:         series.Times[k],
			Dt:        cfg.Ts,
			Ref:       ref[k],
			Y:         y,
			U:         u,
			Err:       e,
			Saturated: saturated,
		}
		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(sample)
		}
	}

	result.Final = st
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validate(ref []float64, cfg Config) (int, error) {
	n, err := cfg.Steps()
	if err != nil {
		return 0, err
	}
	if len(ref) != n {
		return 0, &dynamo.LengthError{Want: n, Got: len(ref)}
	}
	if err := s.ctrl.Limits.Validate(); err != nil {
		return 0, err
	}
	return n, nil
}

// Simulate is the functional form of Run: plant (b1, a1), incremental gains
// (k0, k1) and limits, returning the output and command sequences.
func Simulate(plant dynamo.DiscreteCoefficients, k0, k1 float64, ref []float64, cfg Config, limits dynamo.Limits) (y, u []float64, err error) {
	ctrl := control.Incremental{K0: k0, K1: k1, Limits: limits}
	res, err := New(plant, ctrl).Run(ref, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("simulate: %w", err)
	}
	return res.Series.Y, res.Series.U, nil
}
