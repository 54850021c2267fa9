// Package experiment wires a configuration through discretization, controller
// setup and the closed-loop simulator.
package experiment

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dpisim/internal/config"
	"github.com/san-kum/dpisim/internal/control"
	"github.com/san-kum/dpisim/internal/discretize"
	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/metrics"
	"github.com/san-kum/dpisim/internal/reference"
	"github.com/san-kum/dpisim/internal/sim"
)

// Run is a finished experiment.
type Run struct {
	Config       *config.Config
	Coefficients dynamo.DiscreteCoefficients
	Controller   control.Incremental
	Result       *sim.Result
}

// Runner builds and executes experiments.
type Runner struct {
	disc    *discretize.Discretizer
	log     *log.Logger
	metrics func() []dynamo.Metric
}

type Option func(*Runner)

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.log = l }
}

func WithTransform(t discretize.Transform) Option {
	return func(r *Runner) { r.disc = discretize.New(t) }
}

// WithMetrics replaces the metric factory; it is called once per run.
func WithMetrics(fn func() []dynamo.Metric) Option {
	return func(r *Runner) { r.metrics = fn }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		disc:    discretize.New(nil),
		log:     log.New(io.Discard),
		metrics: metrics.Default,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare validates cfg and returns everything needed to simulate it.
func (r *Runner) Prepare(cfg *config.Config) (sim.Job, *Run, error) {
	if err := cfg.Validate(); err != nil {
		return sim.Job{}, nil, err
	}

	coeffs, err := r.disc.Discretize(cfg.Plant, cfg.Ts)
	if err != nil {
		return sim.Job{}, nil, fmt.Errorf("discretize: %w", err)
	}
	r.log.Debug("discretized plant", "num", coeffs.Num, "den", coeffs.Den, "b1", coeffs.B1, "a1", coeffs.A1)
	if coeffs.Num[0] != 0 {
		r.log.Warn("plant has direct feedthrough; the recurrence ignores it", "b0", coeffs.Num[0], "plant", cfg.Plant.String())
	}

	ctrl, err := control.NewIncremental(cfg.Controller, cfg.Ts, cfg.Limits)
	if err != nil {
		return sim.Job{}, nil, fmt.Errorf("controller: %w", err)
	}
	r.log.Debug("incremental PI", "k0", ctrl.K0, "k1", ctrl.K1)

	simCfg := sim.Config{Ts: cfg.Ts, Duration: cfg.Duration}
	n, err := simCfg.Steps()
	if err != nil {
		return sim.Job{}, nil, err
	}
	gen, err := cfg.Reference.Build()
	if err != nil {
		return sim.Job{}, nil, err
	}

	s := sim.New(coeffs, ctrl)
	for _, m := range r.metrics() {
		s.AddMetric(m)
	}

	job := sim.Job{
		Name:   cfg.Name,
		Sim:    s,
		Ref:    reference.Sample(gen, cfg.Ts, n),
		Config: simCfg,
	}
	run := &Run{
		Config:       cfg,
		Coefficients: coeffs,
		Controller:   ctrl,
	}
	return job, run, nil
}

// Execute prepares and runs cfg.
func (r *Runner) Execute(cfg *config.Config, observers ...dynamo.Observer) (*Run, error) {
	job, run, err := r.Prepare(cfg)
	if err != nil {
		return nil, err
	}
	for _, o := range observers {
		job.Sim.AddObserver(o)
	}

	r.log.Info("simulating", "name", cfg.Name, "steps", len(job.Ref), "ts", cfg.Ts)
	res, err := job.Sim.Run(job.Ref, job.Config)
	if err != nil {
		return nil, err
	}
	run.Result = res

	if res.Saturated > 0 {
		r.log.Warn("actuator saturated", "steps", res.Saturated, "of", res.StepsTaken)
	}
	return run, nil
}
