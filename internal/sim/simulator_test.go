package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dpisim/internal/control"
	"github.com/san-kum/dpisim/internal/discretize"
	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/metrics"
	"github.com/san-kum/dpisim/internal/sim"
)

func step(n int, v float64) []float64 {
	ref := make([]float64, n)
	for i := range ref {
		ref[i] = v
	}
	return ref
}

type recorder struct {
	samples []dynamo.Sample
}

func (r *recorder) OnStep(s dynamo.Sample) { r.samples = append(r.samples, s) }

var _ = Describe("Simulator", func() {
	var (
		plant dynamo.DiscreteCoefficients
		ctrl  control.Incremental
		cfg   sim.Config
		n     int
	)

	BeforeEach(func() {
		var err error
		plant, err = discretize.New(nil).Discretize(dynamo.ContinuousPlant{Num: []float64{20}, Den: []float64{50, 1}}, 0.1)
		Expect(err).NotTo(HaveOccurred())
		ctrl, err = control.NewIncremental(dynamo.Gains{Kp: 0.8, Ti: 9.0}, 0.1, dynamo.DefaultLimits)
		Expect(err).NotTo(HaveOccurred())
		cfg = sim.DefaultConfig()
		n, err = cfg.Steps()
		Expect(err).NotTo(HaveOccurred())
	})

	Context("reference scenario", func() {
		It("tracks a unit step within the actuator range", func() {
			res, err := sim.New(plant, ctrl).Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())

			s := res.Series
			Expect(s.Len()).To(Equal(601))
			Expect(s.Y[0]).To(Equal(0.0))
			Expect(s.Y[n-1]).To(BeNumerically("~", 1.0, 0.01))
			for k := range s.Y {
				Expect(s.Y[k]).To(BeNumerically("<", 1.15), "k=%d", k)
				Expect(s.U[k]).To(BeNumerically(">=", 0.0))
				Expect(s.U[k]).To(BeNumerically("<=", 100.0))
			}
			Expect(s.Times[n-1]).To(BeNumerically("~", 60.0, 1e-9))
		})

		It("computes the first command as K0 times the reference", func() {
			res, err := sim.New(plant, ctrl).Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Series.U[0]).To(Equal(ctrl.K0 * 1.0))
			Expect(res.Series.Err[0]).To(Equal(1.0))
		})

		It("follows the recurrence step by step", func() {
			res, err := sim.New(plant, ctrl).Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())

			s := res.Series
			for k := 1; k < n; k++ {
				Expect(s.Y[k]).To(BeNumerically("~", plant.B1*s.U[k-1]-plant.A1*s.Y[k-1], 1e-12))
				Expect(s.U[k]).To(BeNumerically("~", ctrl.Step(s.U[k-1], s.Err[k], s.Err[k-1]), 1e-12))
			}
			Expect(res.Final).To(Equal(dynamo.State{YPrev: s.Y[n-1], UPrev: s.U[n-1], ErrPrev: s.Err[n-1]}))
		})

		It("is bit-identical across runs", func() {
			a, err := sim.New(plant, ctrl).Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := sim.New(plant, ctrl).Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Series).To(Equal(b.Series))
		})
	})

	Context("saturation", func() {
		It("keeps every committed command inside the limits", func() {
			tight := ctrl
			tight.Limits = dynamo.Limits{Min: 0, Max: 0.5}
			res, err := sim.New(plant, tight).Run(step(n, 5.0), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Saturated).To(BeNumerically(">", 0))
			for _, u := range res.Series.U {
				Expect(u).To(BeNumerically(">=", 0.0))
				Expect(u).To(BeNumerically("<=", 0.5))
			}
		})

		It("clamps the first command to the nearest bound when zero is outside the range", func() {
			shifted := ctrl
			shifted.Limits = dynamo.Limits{Min: 10, Max: 20}
			res, err := sim.New(plant, shifted).Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Series.Y[0]).To(Equal(0.0))
			Expect(res.Series.U[0]).To(Equal(10.0))
		})

		It("resumes from the clamped command instead of an accumulated integral", func() {
			tight := ctrl
			tight.Limits = dynamo.Limits{Min: 0, Max: 0.5}
			res, err := sim.New(plant, tight).Run(step(n, 5.0), cfg)
			Expect(err).NotTo(HaveOccurred())

			s := res.Series
			for k := 1; k < n; k++ {
				Expect(s.U[k]).To(BeNumerically("~", tight.Limits.Clamp(s.U[k-1]+tight.K0*s.Err[k]+tight.K1*s.Err[k-1]), 1e-12))
			}
		})
	})

	It("outputs nothing with zero gains", func() {
		zero := control.Incremental{Limits: dynamo.DefaultLimits}
		res, err := sim.New(plant, zero).Run(step(n, 1.0), cfg)
		Expect(err).NotTo(HaveOccurred())
		for k := range res.Series.U {
			Expect(res.Series.U[k]).To(Equal(0.0))
			Expect(res.Series.Y[k]).To(Equal(0.0))
		}
	})

	Context("validation", func() {
		It("rejects a reference one sample short", func() {
			_, err := sim.New(plant, ctrl).Run(step(n-1, 1.0), cfg)
			Expect(err).To(MatchError(dynamo.ErrLengthMismatch))

			var le *dynamo.LengthError
			Expect(err).To(BeAssignableToTypeOf(le))
		})

		DescribeTable("rejects a non-positive horizon",
			func(c sim.Config) {
				_, err := sim.New(plant, ctrl).Run(step(1, 1.0), c)
				Expect(err).To(MatchError(dynamo.ErrInvalidHorizon))
			},
			Entry("zero ts", sim.Config{Ts: 0, Duration: 1}),
			Entry("negative ts", sim.Config{Ts: -0.1, Duration: 1}),
			Entry("zero duration", sim.Config{Ts: 0.1, Duration: 0}),
			Entry("negative duration", sim.Config{Ts: 0.1, Duration: -1}),
		)

		It("rejects inverted limits", func() {
			bad := ctrl
			bad.Limits = dynamo.Limits{Min: 1, Max: 0}
			_, err := sim.New(plant, bad).Run(step(n, 1.0), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidLimits))
		})

		It("wraps errors from the functional form", func() {
			_, _, err := sim.Simulate(plant, ctrl.K0, ctrl.K1, step(n-1, 1.0), cfg, dynamo.DefaultLimits)
			Expect(err).To(MatchError(dynamo.ErrLengthMismatch))
		})
	})

	Context("hooks", func() {
		It("feeds metrics and observers once per step", func() {
			s := sim.New(plant, ctrl)
			rec := &recorder{}
			s.AddObserver(rec)
			for _, m := range metrics.Default() {
				s.AddMetric(m)
			}

			res, err := s.Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.samples).To(HaveLen(n))
			Expect(rec.samples[n-1].K).To(Equal(n - 1))
			Expect(res.Metrics).To(HaveKey("iae"))
			Expect(res.Metrics["saturation_ratio"]).To(Equal(0.0))
			Expect(res.Metrics["overshoot_pct"]).To(BeNumerically(">", 0.0))
			Expect(math.IsNaN(res.Metrics["ise"])).To(BeFalse())
		})

		It("matches the functional form", func() {
			y, u, err := sim.Simulate(plant, ctrl.K0, ctrl.K1, step(n, 1.0), cfg, dynamo.DefaultLimits)
			Expect(err).NotTo(HaveOccurred())
			res, err := sim.New(plant, ctrl).Run(step(n, 1.0), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(y).To(Equal(res.Series.Y))
			Expect(u).To(Equal(res.Series.U))
		})
	})
})
