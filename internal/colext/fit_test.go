package colext

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// simulateConstant draws a dataset from a constant-parameter occupancy process
// for fitting tests.
func simulateConstant(t *testing.T, d SurveyDesign, psi, gamma, phi, p float64, seed uint64) *Dataset {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, 0))
	obs := mat.NewDense(d.Sites, d.SecondaryPeriods(), nil)
	for i := 0; i < d.Sites; i++ {
		occupied := rng.Float64() < psi
		for year := 0; year < d.Years; year++ {
			if year > 0 {
				if occupied {
					occupied = rng.Float64() < phi
				} else {
					occupied = rng.Float64() < gamma
				}
			}
			for o := 0; o < d.Occasions; o++ {
				v := 0.0
				if occupied && rng.Float64() < p {
					v = 1
				}
				obs.Set(i, d.Column(year, o), v)
			}
		}
	}
	ds, err := NewDataset(d, obs, nil, nil, nil)
	require.NoError(t, err)
	return ds
}

func TestFitNullModel(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 80, Years: 5, Occasions: 3}
	ds := simulateConstant(t, d, 0.6, 0.2, 0.8, 0.7, 42)

	spec := ModelSpec{Name: "null"}
	model, err := Fit(spec, ds, FitOptions{})
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.Equal(t, 4, model.K())
	assert.True(t, isFinite(model.LogLik))
	assert.InDelta(t, -2*model.LogLik+8, model.AIC(), 1e-9)

	// The maximum cannot be worse than the likelihood at the generating
	// parameters.
	b, err := newBinding(spec, ds)
	require.NoError(t, err)
	truth := []float64{Logit(0.6), Logit(0.2), Logit(0.8), Logit(0.7)}
	assert.LessOrEqual(t, -model.LogLik, b.negLogLik(truth)+1e-6)

	// With 80 sites the estimates should land near the truth.
	assert.InDelta(t, 0.6, InvLogit(model.Coefs[0]), 0.15)
	assert.InDelta(t, 0.2, InvLogit(model.Coefs[1]), 0.15)
	assert.InDelta(t, 0.8, InvLogit(model.Coefs[2]), 0.15)
	assert.InDelta(t, 0.7, InvLogit(model.Coefs[3]), 0.15)
}

func TestFitReportsStandardErrors(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 60, Years: 4, Occasions: 2}
	ds := simulateConstant(t, d, 0.5, 0.3, 0.7, 0.6, 7)

	model, err := Fit(ModelSpec{Name: "null"}, ds, FitOptions{})
	require.NoError(t, err)
	require.Len(t, model.StdErrs, 4)
	for i, se := range model.StdErrs {
		assert.False(t, math.IsNaN(se), "standard error %d", i)
		assert.Greater(t, se, 0.0)
	}

	coefs := model.Coefficients()
	require.Len(t, coefs, 4)
	assert.Equal(t, "psi(Int)", coefs[0].Name)
	assert.Equal(t, "p(Int)", coefs[3].Name)
}

func TestFitIsDeterministic(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 40, Years: 3, Occasions: 2}
	ds := simulateConstant(t, d, 0.5, 0.2, 0.8, 0.6, 11)

	first, err := Fit(ModelSpec{Name: "null"}, ds, FitOptions{})
	require.NoError(t, err)
	second, err := Fit(ModelSpec{Name: "null"}, ds, FitOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.Coefs, second.Coefs)
	assert.Equal(t, first.LogLik, second.LogLik)
}

func TestFitMissingCovariate(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 10, Years: 2, Occasions: 2}
	ds := simulateConstant(t, d, 0.5, 0.2, 0.8, 0.6, 3)

	_, err := Fit(ModelSpec{Name: "psi", Psi: WithCovariate("elev")}, ds, FitOptions{})
	require.Error(t, err)
}

func TestFitHandlesMissingObservations(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 40, Years: 3, Occasions: 2}
	ds := simulateConstant(t, d, 0.6, 0.2, 0.8, 0.7, 19)

	// Blank out one occasion per site.
	obs := mat.DenseCopyOf(ds.Observations)
	for i := 0; i < d.Sites; i++ {
		obs.Set(i, i%d.SecondaryPeriods(), math.NaN())
	}
	withGaps := ds.WithObservations(obs)

	model, err := Fit(ModelSpec{Name: "null"}, withGaps, FitOptions{})
	require.NoError(t, err)
	assert.True(t, isFinite(model.LogLik))
}

func TestFitOptionDefaults(t *testing.T) {
	t.Parallel()

	opts := FitOptions{}.withDefaults()
	assert.Equal(t, 500, opts.MaxIterations)
	assert.InDelta(t, 1e-6, opts.Tolerance, 1e-12)

	custom := FitOptions{MaxIterations: 50, Tolerance: 1e-4}.withDefaults()
	assert.Equal(t, 50, custom.MaxIterations)
	assert.InDelta(t, 1e-4, custom.Tolerance, 1e-12)
}
