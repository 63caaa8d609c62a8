package colext

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSimulatePreservesShapeAndMissingness(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 2, Years: 3, Occasions: 2}
	obs := mat.NewDense(2, 6, []float64{
		1, 0, nan, 0, 1, 1,
		0, 0, 0, nan, nan, 0,
	})
	ds, err := NewDataset(d, obs, nil, nil, nil)
	require.NoError(t, err)
	m := handModel(t, ModelSpec{Name: "null"}, ds,
		[]float64{Logit(0.6), Logit(0.2), Logit(0.8), Logit(0.7)})

	sim := m.Simulate(rand.New(rand.NewPCG(5, 0)))
	r, c := sim.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 6, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			orig := obs.At(i, j)
			v := sim.At(i, j)
			if math.IsNaN(orig) {
				assert.True(t, math.IsNaN(v), "missing occasion must stay missing")
				continue
			}
			assert.True(t, v == 0 || v == 1, "simulated value must be 0 or 1, got %v", v)
		}
	}
}

func TestSimulateDeterministicPerStream(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 10, Years: 4, Occasions: 2}
	ds := simulateConstant(t, d, 0.5, 0.2, 0.8, 0.6, 31)
	m := handModel(t, ModelSpec{Name: "null"}, ds,
		[]float64{Logit(0.5), Logit(0.2), Logit(0.8), Logit(0.6)})

	a := m.Simulate(rand.New(rand.NewPCG(7, 3)))
	b := m.Simulate(rand.New(rand.NewPCG(7, 3)))
	assert.True(t, mat.Equal(a, b), "same stream must reproduce the same draw")

	c := m.Simulate(rand.New(rand.NewPCG(7, 4)))
	assert.False(t, mat.Equal(a, c), "different streams should differ")
}

func TestSimulateExtremeParameters(t *testing.T) {
	t.Parallel()

	ds := singleSiteDataset(t, 3, 2, []float64{0, 0, 0, 0, 0, 0})

	// Occupancy certain, detection certain: every occasion is a detection.
	sure := handModel(t, ModelSpec{Name: "null"}, ds,
		[]float64{50, 0, 50, 50})
	sim := sure.Simulate(rand.New(rand.NewPCG(1, 0)))
	for j := 0; j < 6; j++ {
		assert.Equal(t, 1.0, sim.At(0, j))
	}

	// Occupancy impossible: nothing is ever detected.
	empty := handModel(t, ModelSpec{Name: "null"}, ds,
		[]float64{-50, -50, 0, 50})
	sim = empty.Simulate(rand.New(rand.NewPCG(2, 0)))
	for j := 0; j < 6; j++ {
		assert.Equal(t, 0.0, sim.At(0, j))
	}
}
