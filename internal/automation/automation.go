package automation

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dpisim/internal/config"
	"github.com/san-kum/dpisim/internal/experiment"
	"github.com/san-kum/dpisim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of runs. Each step is decoded on top of
// a copy of the base configuration (or of the named preset), so a step only
// lists what it changes.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Base        *config.Config `yaml:"base"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario
type ScenarioStep struct {
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"overrides"`
	Save      bool      `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	scenario := Scenario{Base: config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve returns the configuration of step i.
func (s *Scenario) Resolve(i int) (*config.Config, error) {
	step := s.Steps[i]

	cfg := s.Base.Clone()
	if step.Preset != "" {
		cfg = config.GetPreset(step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", step.Preset, config.ListPresets())
		}
	}
	if !step.Overrides.IsZero() {
		if err := step.Overrides.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Name == "" || cfg.Name == s.Base.Name {
		cfg.Name = fmt.Sprintf("%s_%d", nonEmpty(s.Name, "scenario"), i+1)
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Steps marked save are persisted when store is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, runner *experiment.Runner, store *storage.Store, logger *log.Logger) ([]*experiment.Run, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	runs := make([]*experiment.Run, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return runs, err
		}

		cfg, err := scenario.Resolve(i)
		if err != nil {
			return runs, fmt.Errorf("step %d: %w", i+1, err)
		}
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "name", cfg.Name)

		run, err := runner.Execute(cfg)
		if err != nil {
			return runs, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if step.Save && store != nil {
			id, err := store.Save(run)
			if err != nil {
				return runs, fmt.Errorf("step %d save: %w", i+1, err)
			}
			logger.Info("saved", "id", id)
		}

		runs = append(runs, run)
	}

	return runs, nil
}

// MonteCarloConfig perturbs the plant gain and time constant around a base configuration
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64 // relative, e.g. 0.2 for +-20 %
	NumTrials    int
	Seed         int64
	Band         float64 // settled if the final error is within Band*|ref|
}

// MonteCarloResult holds one perturbed trial
type MonteCarloResult struct {
	TrialID   int
	Num       []float64
	Den       []float64
	FinalY    float64
	Overshoot float64
	Settled   bool
}

// RunMonteCarlo executes trials with randomly scaled plant coefficients
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, runner *experiment.Runner) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	band := cfg.Band
	if band <= 0 {
		band = 0.02
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		c := cfg.Base.Clone()
		c.Name = fmt.Sprintf("mc_%d", trial)
		for i := range c.Plant.Num {
			c.Plant.Num[i] *= 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		}
		for i := range c.Plant.Den {
			c.Plant.Den[i] *= 1 + (rng.Float64()-0.5)*2*cfg.Perturbation
		}

		run, err := runner.Execute(c)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		s := run.Result.Series
		last := s.Len() - 1
		results = append(results, MonteCarloResult{
			TrialID:   trial,
			Num:       c.Plant.Num,
			Den:       c.Plant.Den,
			FinalY:    s.Y[last],
			Overshoot: run.Result.Metrics["overshoot_pct"],
			Settled:   math.Abs(s.Err[last]) <= band*math.Max(math.Abs(s.Ref[last]), 1e-12),
		})
	}

	return results, nil
}

// MonteCarloStats counts settled and unsettled trials
func MonteCarloStats(results []MonteCarloResult) (settled int, unsettled int) {
	for _, r := range results {
		if r.Settled {
			settled++
		} else {
			unsettled++
		}
	}
	return
}

func nonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
