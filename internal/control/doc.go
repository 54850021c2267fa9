// Package control provides the incremental PI law used by the closed-loop simulator.
//
// The controller is expressed as a correction to the previous command:
//
//	u[k] = clamp(u[k-1] + K0*e[k] + K1*e[k-1])
//
// The correction is applied to the clamped previous command, so the
// integral state never leaves the actuator range.
//
// # Usage
//
//	pi, _ := control.NewIncremental(dynamo.Gains{Kp: 0.8, Ti: 9}, 0.1, dynamo.DefaultLimits)
//	u := pi.Step(uPrev, e, ePrev)
package control
