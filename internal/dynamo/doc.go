// Package dynamo provides the core types shared by the discretizer and the
// closed-loop simulator.
//
// The package defines the data model of a sampled single-loop control system:
//
//   - [ContinuousPlant]: Laplace-domain transfer function (num/den, highest power first)
//   - [DiscreteCoefficients]: canonical first-order recurrence y[k] = B1*u[k-1] - A1*y[k-1]
//   - [Gains]: PI gains and their incremental (K0, K1) form
//   - [Limits]: inclusive actuator saturation range
//   - [State]: one-step history threaded through the recurrence
//   - [Series]: per-step time series produced by a run
//
// # Example
//
//	n, _ := dynamo.Horizon(60, 0.1)          // 601 samples
//	k0, k1, _ := dynamo.Gains{Kp: 0.8, Ti: 9}.Incremental(0.1)
//
// All validation errors are sentinels (or wrap them) so callers can use
// errors.Is regardless of the diagnostic detail attached.
package dynamo
