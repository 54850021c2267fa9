package c2d

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/dpisim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// zeroTol is the relative size below which leading numerator terms are dropped.
const zeroTol = 1e-12

// ZOH is the zero-order-hold transform.
type ZOH struct{}

// C2D discretizes plant with sample period ts.
func (ZOH) C2D(plant dynamo.ContinuousPlant, ts float64) (dynamo.RawTransferFunction, error) {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return dynamo.RawTransferFunction{}, fmt.Errorf("%w: ts=%g", dynamo.ErrInvalidSamplePeriod, ts)
	}
	if err := plant.Validate(); err != nil {
		return dynamo.RawTransferFunction{}, err
	}

	num, den := plant.Trimmed()
	n := len(den) - 1

	// monic denominator, numerator padded to n+1 terms
	a := make([]float64, n+1)
	b := make([]float64, n+1)
	for i := range den {
		a[i] = den[i] / den[0]
	}
	for i, v := range num {
		b[n+1-len(num)+i] = v / den[0]
	}

	if n == 0 {
		return wrap([]float64{b[0]}, []float64{1}), nil
	}

	A, B, C, D := canonical(a, b)
	Ad, Bd := sample(A, B, ts)

	denD := charPoly(Ad)

	var BC mat.Dense
	BC.Outer(1, Bd, C)
	var closed mat.Dense
	closed.Sub(Ad, &BC)
	numD := charPoly(&closed)
	for i := range numD {
		numD[i] = numD[i] - denD[i] + D*denD[i]
	}

	return wrap(trimSmall(numD), denD), nil
}

func wrap(num, den []float64) dynamo.RawTransferFunction {
	return dynamo.RawTransferFunction{
		Num: [][]float64{num},
		Den: [][]float64{den},
	}
}

// canonical builds the controllable canonical realization of b(s)/a(s) with a monic.
func canonical(a, b []float64) (A *mat.Dense, B, C *mat.VecDense, D float64) {
	n := len(a) - 1
	A = mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		A.Set(0, j, -a[j+1])
	}
	for i := 1; i < n; i++ {
		A.Set(i, i-1, 1)
	}

	B = mat.NewVecDense(n, nil)
	B.SetVec(0, 1)

	D = b[0]
	C = mat.NewVecDense(n, nil)
	for i := 1; i <= n; i++ {
		C.SetVec(i-1, b[i]-D*a[i])
	}
	return A, B, C, D
}

// sample returns Ad = exp(A*ts) and Bd = int_0^ts exp(A*t) dt * B from the
// exponential of the augmented matrix, which stays valid for singular A.
func sample(A *mat.Dense, B *mat.VecDense, ts float64) (*mat.Dense, *mat.VecDense) {
	n, _ := A.Dims()
	M := mat.NewDense(n+1, n+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			M.Set(i, j, A.At(i, j)*ts)
		}
		M.Set(i, n, B.AtVec(i)*ts)
	}

	var E mat.Dense
	E.Exp(M)

	Ad := mat.NewDense(n, n, nil)
	Ad.Copy(E.Slice(0, n, 0, n))
	Bd := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		Bd.SetVec(i, E.At(i, n))
	}
	return Ad, Bd
}

// charPoly returns det(zI - M) as coefficients, highest power first.
func charPoly(M mat.Matrix) []float64 {
	n, _ := M.Dims()
	if n == 1 {
		return []float64{1, -M.At(0, 0)}
	}

	var eig mat.Eigen
	if !eig.Factorize(M, mat.EigenNone) {
		out := make([]float64, n+1)
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	roots := eig.Values(nil)

	poly := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(poly)+1)
		for i, c := range poly {
			next[i] += c
			next[i+1] -= c * r
		}
		poly = next
	}

	out := make([]float64, len(poly))
	for i, c := range poly {
		out[i] = real(c)
		if math.Abs(imag(c)) > 1e-9*math.Max(1, cmplx.Abs(c)) {
			// conjugate pairs cancel; anything left is a broken factorization
			out[i] = math.NaN()
		}
	}
	return out
}

// trimSmall drops leading coefficients that are negligible relative to the largest one.
func trimSmall(c []float64) []float64 {
	peak := 0.0
	for _, v := range c {
		peak = math.Max(peak, math.Abs(v))
	}
	i := 0
	for i < len(c)-1 && math.Abs(c[i]) <= zeroTol*peak {
		i++
	}
	return c[i:]
}
