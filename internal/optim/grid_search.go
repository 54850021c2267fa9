// Package optim searches PI gains for the lowest value of a run metric.
package optim

import (
	"errors"
	"context"
	"fmt"
	"math"

	"github.com/san-kum/dpisim/internal/config"
	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/experiment"
	"github.com/san-kum/dpisim/internal/sim"
)

// ErrNoFiniteScore is returned when every candidate scores +Inf, e.g. none settles.
var ErrNoFiniteScore = errors.New("optim: no candidate produced a finite score")

// Candidate is one evaluated gain pair.
type Candidate struct {
	Gains dynamo.Gains
	Score float64
}

type GridSearch struct {
	kps     []float64
	tis     []float64
	workers int
}

func NewGridSearch(kps, tis []float64, workers int) *GridSearch {
	return &GridSearch{kps: kps, tis: tis, workers: workers}
}

// Search evaluates every (kp, ti) pair on base and returns the best candidate
// plus all scores in grid order (kp-major). Ties keep the earliest pair. When no
// candidate scores finite the grid is still returned alongside ErrNoFiniteScore.
func (g *GridSearch) Search(ctx context.Context, runner *experiment.Runner, base *config.Config, metricName string) (Candidate, []Candidate, error) {
	if len(g.kps) == 0 || len(g.tis) == 0 {
		return Candidate{}, nil, fmt.Errorf("optim: empty grid")
	}

	jobs := make([]sim.Job, 0, len(g.kps)*len(g.tis))
	grid := make([]Candidate, 0, cap(jobs))
	for _, kp := range g.kps {
		for _, ti := range g.tis {
			cfg := base.Clone()
			cfg.Controller = dynamo.Gains{Kp: kp, Ti: ti}
			cfg.Name = fmt.Sprintf("kp=%g ti=%g", kp, ti)

			job, _, err := runner.Prepare(cfg)
			if err != nil {
				return Candidate{}, nil, fmt.Errorf("optim: %s: %w", cfg.Name, err)
			}
			jobs = append(jobs, job)
			grid = append(grid, Candidate{Gains: cfg.Controller})
		}
	}

	results, err := sim.NewEnsemble(g.workers).Run(ctx, jobs)
	if err != nil {
		return Candidate{}, nil, err
	}

	best := Candidate{Score: math.Inf(1)}
	for i, res := range results {
		val, ok := res.Metrics[metricName]
		if !ok {
			return Candidate{}, nil, fmt.Errorf("optim: unknown metric %q", metricName)
		}
		// an unsettled run is the worst possible settling time
		if val < 0 || math.IsNaN(val) {
			val = math.Inf(1)
		}
		grid[i].Score = val
		if val < best.Score {
			best = grid[i]
		}
	}

	if math.IsInf(best.Score, 1) {
		return Candidate{}, grid, fmt.Errorf("%w: %s", ErrNoFiniteScore, metricName)
	}
	return best, grid, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}
