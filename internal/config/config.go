package config

import (
	"fmt"
	"os"

	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/reference"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTs       = 0.1
	DefaultDuration = 60.0
	DefaultKp       = 0.8
	DefaultTi       = 9.0
	DefaultSetpoint = 1.0
)

type Config struct {
	Name       string                 `yaml:"name,omitempty"`
	Plant      dynamo.ContinuousPlant `yaml:"plant"`
	Ts         float64                `yaml:"ts"`
	Duration   float64                `yaml:"duration"`
	Controller dynamo.Gains           `yaml:"controller"`
	Reference  reference.Spec         `yaml:"reference"`
	Limits     dynamo.Limits          `yaml:"limits"`
}

// DefaultConfig is the 20/(50s+1) plant under PI control tracking a unit step.
func DefaultConfig() *Config {
	return &Config{
		Name: "default",
		Plant: dynamo.ContinuousPlant{
			Num: []float64{20},
			Den: []float64{50, 1},
		},
		Ts:         DefaultTs,
		Duration:   DefaultDuration,
		Controller: dynamo.Gains{Kp: DefaultKp, Ti: DefaultTi},
		Reference:  reference.Spec{Kind: "step", Value: DefaultSetpoint},
		Limits:     dynamo.DefaultLimits,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Plant.Num = append([]float64(nil), c.Plant.Num...)
	out.Plant.Den = append([]float64(nil), c.Plant.Den...)
	return &out
}

// Validate reports the first problem that would stop a run.
func (c *Config) Validate() error {
	if err := c.Plant.Validate(); err != nil {
		return fmt.Errorf("plant: %w", err)
	}
	if order := c.Plant.Order(); order != 1 {
		return fmt.Errorf("plant: %w: continuous order %d, only first-order plants are simulated", dynamo.ErrUnexpectedOrder, order)
	}
	if _, err := dynamo.Horizon(c.Duration, c.Ts); err != nil {
		return err
	}
	if _, _, err := c.Controller.Incremental(c.Ts); err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if _, err := c.Reference.Build(); err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	return nil
}
