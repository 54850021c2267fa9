package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run. Each job owns its Simulator, so metrics are not shared.
type Job struct {
	Name   string
	Sim    *Simulator
	Ref    []float64
	Config Config
}

// Ensemble runs independent simulations concurrently. The recurrence inside a
// run stays sequential.
type Ensemble struct {
	workers int
}

// NewEnsemble bounds concurrency to workers, or GOMAXPROCS when workers <= 0.
func NewEnsemble(workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Ensemble{workers: workers}
}

// Run returns results in job order. The first failing job cancels the rest.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := job.Sim.Run(job.Ref, job.Config)
			if err != nil {
				return &JobError{Name: job.Name, Index: i, Wrapped: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
