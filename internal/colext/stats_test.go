package colext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecostats/dynocc-go/internal/errors"
)

func TestFitStatsOnHandModel(t *testing.T) {
	t.Parallel()

	// All parameters at 0.5 give fitted values of 0.25 in the first season
	// and psi2 = 0.5*0.5 + 0.5*0.5 = 0.5, so 0.25 again in the second.
	ds := singleSiteDataset(t, 2, 1, []float64{1, 0})
	m := handModel(t, ModelSpec{Name: "null"}, ds, []float64{0, 0, 0, 0})

	// SSE = (1-0.25)^2 + (0-0.25)^2
	assert.InDelta(t, 0.625, SSE(m), 1e-12)
	// FT = (1-sqrt(0.25))^2 + (0-sqrt(0.25))^2
	assert.InDelta(t, 0.5, FreemanTukey(m), 1e-12)
}

func TestFitStatsSkipMissing(t *testing.T) {
	t.Parallel()

	ds := singleSiteDataset(t, 2, 1, []float64{1, nan})
	m := handModel(t, ModelSpec{Name: "null"}, ds, []float64{0, 0, 0, 0})

	assert.InDelta(t, 0.5625, SSE(m), 1e-12)
	assert.InDelta(t, 0.25, FreemanTukey(m), 1e-12)
}

func TestDefaultFitStats(t *testing.T) {
	t.Parallel()

	stats := DefaultFitStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "SSE", stats[0].Name)
	assert.Equal(t, "Freeman-Tukey", stats[1].Name)
	require.NotNil(t, stats[0].Compute)
	require.NotNil(t, stats[1].Compute)
}

func TestLikelihoodRatioTest(t *testing.T) {
	t.Parallel()

	ds := singleSiteDataset(t, 2, 1, []float64{1, 0})
	simple := handModel(t, ModelSpec{Name: "true",
		Psi: WithCovariate("elev"), Gamma: WithCovariate("precip"), Phi: WithCovariate("forest")},
		ds, make([]float64, 7))
	rich := handModel(t, ModelSpec{Name: "global",
		Psi: WithCovariate("elev"), Gamma: WithCovariate("precip"), Phi: WithCovariate("forest"),
		P: WithCovariate("effort")},
		ds, make([]float64, 8))
	simple.LogLik = -100
	rich.LogLik = -98

	lrt, err := LikelihoodRatioTest(simple, rich)
	require.NoError(t, err)
	assert.Equal(t, "true", lrt.Simple)
	assert.Equal(t, "global", lrt.Rich)
	assert.InDelta(t, 4.0, lrt.Statistic, 1e-12)
	assert.Equal(t, 1, lrt.DF)
	// Chi-square with 1 df: P(X >= 4) = 0.0455.
	assert.InDelta(t, 0.0455, lrt.PValue, 1e-3)
}

func TestLikelihoodRatioTestClampsNegativeStatistic(t *testing.T) {
	t.Parallel()

	ds := singleSiteDataset(t, 2, 1, []float64{1, 0})
	simple := handModel(t, ModelSpec{Name: "null"}, ds, make([]float64, 4))
	rich := handModel(t, ModelSpec{Name: "psi", Psi: WithCovariate("elev")}, ds, make([]float64, 5))
	simple.LogLik = -100
	rich.LogLik = -100.001

	lrt, err := LikelihoodRatioTest(simple, rich)
	require.NoError(t, err)
	assert.Equal(t, 0.0, lrt.Statistic)
	assert.InDelta(t, 1.0, lrt.PValue, 1e-12)
}

func TestLikelihoodRatioTestRejectsNonNested(t *testing.T) {
	t.Parallel()

	ds := singleSiteDataset(t, 2, 1, []float64{1, 0})
	detOnly := handModel(t, ModelSpec{Name: "p", P: WithCovariate("effort")}, ds, make([]float64, 5))
	truth := handModel(t, ModelSpec{Name: "true",
		Psi: WithCovariate("elev"), Gamma: WithCovariate("precip"), Phi: WithCovariate("forest")},
		ds, make([]float64, 7))

	_, err := LikelihoodRatioTest(detOnly, truth)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNonNested))
}

func TestLikelihoodRatioTestRejectsEqualParameterCounts(t *testing.T) {
	t.Parallel()

	ds := singleSiteDataset(t, 2, 1, []float64{1, 0})
	a := handModel(t, ModelSpec{Name: "null"}, ds, make([]float64, 4))
	b := handModel(t, ModelSpec{Name: "null"}, ds, make([]float64, 4))

	_, err := LikelihoodRatioTest(a, b)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
