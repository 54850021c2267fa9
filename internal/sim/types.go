package sim

import "github.com/san-kum/dpisim/internal/dynamo"

// Config fixes the sampling grid of a run.
type Config struct {
	Ts       float64
	Duration float64
}

func DefaultConfig() Config {
	return Config{
		Ts:       0.1,
		Duration: 60,
	}
}

// Steps is the horizon N = floor(Duration/Ts) + 1.
func (c Config) Steps() (int, error) {
	return dynamo.Horizon(c.Duration, c.Ts)
}

type Result struct {
	Series     *dynamo.Series
	Final      dynamo.State
	Saturated  int
	Metrics    map[string]float64
	StepsTaken int
}
