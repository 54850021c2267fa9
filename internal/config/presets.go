package config

import (
	"sort"

	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/reference"
)

var referencePlant = dynamo.ContinuousPlant{Num: []float64{20}, Den: []float64{50, 1}}

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"aggressive": {
		Name: "aggressive", Plant: referencePlant, Ts: 0.1, Duration: 60,
		Controller: dynamo.Gains{Kp: 3.0, Ti: 3.0},
		Reference:  reference.Spec{Kind: "step", Value: 1.0},
		Limits:     dynamo.DefaultLimits,
	},
	"sluggish": {
		Name: "sluggish", Plant: referencePlant, Ts: 0.1, Duration: 120,
		Controller: dynamo.Gains{Kp: 0.2, Ti: 30.0},
		Reference:  reference.Spec{Kind: "step", Value: 1.0},
		Limits:     dynamo.DefaultLimits,
	},
	"saturating": {
		Name: "saturating", Plant: referencePlant, Ts: 0.1, Duration: 60,
		Controller: dynamo.Gains{Kp: 5.0, Ti: 2.0},
		Reference:  reference.Spec{Kind: "step", Value: 1.0},
		Limits:     dynamo.Limits{Min: 0, Max: 1},
	},
	"fast_sample": {
		Name: "fast_sample", Plant: referencePlant, Ts: 0.01, Duration: 60,
		Controller: dynamo.Gains{Kp: 0.8, Ti: 9.0},
		Reference:  reference.Spec{Kind: "step", Value: 1.0},
		Limits:     dynamo.DefaultLimits,
	},
	"delayed_step": {
		Name: "delayed_step", Plant: referencePlant, Ts: 0.1, Duration: 80,
		Controller: dynamo.Gains{Kp: 0.8, Ti: 9.0},
		Reference:  reference.Spec{Kind: "step", Initial: 0, Value: 1.0, At: 10},
		Limits:     dynamo.DefaultLimits,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
