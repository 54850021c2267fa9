package sim_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpisim/internal/control"
	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/sim"
)

var _ = Describe("Ensemble", func() {
	plant := dynamo.DiscreteCoefficients{B1: 0.04, A1: -0.998}
	cfg := sim.Config{Ts: 0.1, Duration: 10}

	jobs := func(kps ...float64) []sim.Job {
		out := make([]sim.Job, 0, len(kps))
		for _, kp := range kps {
			c, err := control.NewIncremental(dynamo.Gains{Kp: kp, Ti: 9}, cfg.Ts, dynamo.DefaultLimits)
			Expect(err).NotTo(HaveOccurred())
			out = append(out, sim.Job{Sim: sim.New(plant, c), Ref: step(101, 1), Config: cfg})
		}
		return out
	}

	It("returns results in job order and matches sequential runs", func() {
		js := jobs(0.2, 0.8, 2.0, 5.0)
		results, err := sim.NewEnsemble(2).Run(context.Background(), js)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		for i, j := range js {
			want, err := j.Sim.Run(j.Ref, j.Config)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[i].Series).To(Equal(want.Series))
		}
	})

	It("reports the failing job", func() {
		js := jobs(0.8, 0.8)
		js[1].Name = "short"
		js[1].Ref = step(10, 1)

		_, err := sim.NewEnsemble(0).Run(context.Background(), js)
		Expect(err).To(MatchError(dynamo.ErrLengthMismatch))
		var je *sim.JobError
		Expect(err).To(BeAssignableToTypeOf(je))
		Expect(err.Error()).To(ContainSubstring("short"))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := sim.NewEnsemble(1).Run(ctx, jobs(0.8))
		Expect(err).To(MatchError(context.Canceled))
	})
})
