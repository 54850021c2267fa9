package c2d

import (
	"math"
	"testing"

	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dcGain(num, den []float64) float64 {
	var sn, sd float64
	for _, v := range num {
		sn += v
	}
	for _, v := range den {
		sd += v
	}
	return sn / sd
}

func TestZOH_FirstOrder(t *testing.T) {
	raw, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{20}, Den: []float64{50, 1}}, 0.1)
	require.NoError(t, err)
	require.Len(t, raw.Num, 1)
	require.Len(t, raw.Den, 1)

	pole := math.Exp(-0.1 / 50)
	require.Len(t, raw.Num[0], 1, "leading zero of the numerator is trimmed")
	assert.InDelta(t, 20*(1-pole), raw.Num[0][0], 1e-12)
	require.Len(t, raw.Den[0], 2)
	assert.Equal(t, 1.0, raw.Den[0][0])
	assert.InDelta(t, -pole, raw.Den[0][1], 1e-12)
}

func TestZOH_NonMonicDenominator(t *testing.T) {
	a, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{2}, Den: []float64{4, 2}}, 0.5)
	require.NoError(t, err)
	b, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{1}, Den: []float64{2, 1}}, 0.5)
	require.NoError(t, err)

	assert.InDelta(t, b.Num[0][0], a.Num[0][0], 1e-12)
	assert.InDelta(t, b.Den[0][1], a.Den[0][1], 1e-12)
}

func TestZOH_SecondOrderPreservesDCGain(t *testing.T) {
	// 1/((s+1)(s+2))
	raw, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{1}, Den: []float64{1, 3, 2}}, 1.0)
	require.NoError(t, err)

	den := raw.Den[0]
	require.Len(t, den, 3)
	assert.InDelta(t, -(math.Exp(-1) + math.Exp(-2)), den[1], 1e-9)
	assert.InDelta(t, math.Exp(-3), den[2], 1e-9)
	assert.Len(t, raw.Num[0], 2)
	assert.InDelta(t, 0.5, dcGain(raw.Num[0], den), 1e-9)
}

func TestZOH_Integrator(t *testing.T) {
	raw, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{1}, Den: []float64{1, 0}}, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, raw.Num[0][0], 1e-12)
	assert.InDelta(t, -1.0, raw.Den[0][1], 1e-12)
}

func TestZOH_Biproper(t *testing.T) {
	// (s+2)/(s+1) keeps its direct feedthrough term
	raw, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{1, 2}, Den: []float64{1, 1}}, 0.1)
	require.NoError(t, err)

	require.Len(t, raw.Num[0], 2)
	assert.InDelta(t, 1.0, raw.Num[0][0], 1e-12)
	assert.InDelta(t, 2.0, dcGain(raw.Num[0], raw.Den[0]), 1e-9)
}

func TestZOH_StaticGain(t *testing.T) {
	raw, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{3}, Den: []float64{2}}, 0.1)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{1.5}}, raw.Num)
	assert.Equal(t, [][]float64{{1}}, raw.Den)
}

func TestZOH_Errors(t *testing.T) {
	_, err := ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{1, 0, 0}, Den: []float64{1, 1}}, 0.1)
	assert.ErrorIs(t, err, dynamo.ErrImproperPlant)

	_, err = ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{1}, Den: []float64{1, 1}}, 0)
	assert.ErrorIs(t, err, dynamo.ErrInvalidSamplePeriod)

	_, err = ZOH{}.C2D(dynamo.ContinuousPlant{Num: []float64{1}, Den: []float64{0}}, 0.1)
	assert.ErrorIs(t, err, dynamo.ErrDegenerateModel)
}
