// Package c2d converts continuous-time transfer functions to discrete time.
//
// [ZOH] samples a proper SISO transfer function under a zero-order hold:
// the plant is realized in controllable canonical form, the augmented
// matrix exp([[A B];[0 0]]*Ts) yields (Ad, Bd), and the discrete transfer
// function is recovered from characteristic polynomials.
//
//	raw, err := c2d.ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{20}, Den: []float64{50, 1}}, 0.1)
//	// raw.Num = [[0.03996...]]  raw.Den = [[1 -0.998002]]
package c2d
