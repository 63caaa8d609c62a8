package colext

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ecostats/dynocc-go/internal/errors"
)

var nan = math.NaN()

func TestReshape(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 2, Years: 2, Occasions: 2}
	detections := [][][]float64{
		{{1, 0}, {0, nan}},
		{{0, 0}, {1, 1}},
	}
	wide, err := Reshape(d, detections)
	require.NoError(t, err)

	r, c := wide.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 4, c)

	// Site 0: year 0 occupies columns 0-1, year 1 columns 2-3.
	assert.Equal(t, 1.0, wide.At(0, 0))
	assert.Equal(t, 0.0, wide.At(0, 1))
	assert.Equal(t, 0.0, wide.At(0, 2))
	assert.True(t, math.IsNaN(wide.At(0, 3)))
	assert.Equal(t, 1.0, wide.At(1, 2))
	assert.Equal(t, 1.0, wide.At(1, 3))
}

func TestReshapeShapeErrors(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 2, Years: 2, Occasions: 2}

	tests := []struct {
		name       string
		detections [][][]float64
	}{
		{"wrong site count", [][][]float64{{{1, 0}, {0, 0}}}},
		{"wrong year count", [][][]float64{
			{{1, 0}},
			{{0, 0}, {1, 1}},
		}},
		{"wrong occasion count", [][][]float64{
			{{1, 0}, {0}},
			{{0, 0}, {1, 1}},
		}},
		{"invalid value", [][][]float64{
			{{1, 2}, {0, 0}},
			{{0, 0}, {1, 1}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Reshape(d, tt.detections)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryDataShape))
		})
	}
}

func TestNewDatasetValidatesCovariateShapes(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 2, Years: 2, Occasions: 1}
	obs := mat.NewDense(2, 2, []float64{1, 0, 0, 1})

	_, err := NewDataset(d, obs, map[string][]float64{"elev": {0.1}}, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDataShape))

	_, err = NewDataset(d, obs, nil,
		map[string]*mat.Dense{"precip": mat.NewDense(2, 2, nil)}, nil)
	require.Error(t, err, "yearly covariate must have Years-1 columns")

	_, err = NewDataset(d, obs, nil, nil,
		map[string]*mat.Dense{"effort": mat.NewDense(1, 2, nil)})
	require.Error(t, err)

	ds, err := NewDataset(d, obs,
		map[string][]float64{"elev": {0.1, -0.3}},
		map[string]*mat.Dense{"precip": mat.NewDense(2, 1, nil)},
		map[string]*mat.Dense{"effort": mat.NewDense(2, 2, nil)})
	require.NoError(t, err)
	require.NotNil(t, ds)
}

func TestNewDatasetRejectsBadObservationValues(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 1, Years: 2, Occasions: 1}
	obs := mat.NewDense(1, 2, []float64{1, 0.5})
	_, err := NewDataset(d, obs, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDataShape))
}

func TestResample(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 3, Years: 2, Occasions: 1}
	obs := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	ds, err := NewDataset(d, obs,
		map[string][]float64{"elev": {10, 20, 30}},
		map[string]*mat.Dense{"precip": mat.NewDense(3, 1, []float64{0.1, 0.2, 0.3})},
		nil)
	require.NoError(t, err)

	picked, err := ds.Resample([]int{2, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, picked.Design.Sites)
	assert.Equal(t, []float64{1, 1}, picked.Observations.RawRowView(0))
	assert.Equal(t, []float64{1, 1}, picked.Observations.RawRowView(1))
	assert.Equal(t, []float64{1, 0}, picked.Observations.RawRowView(2))
	assert.Equal(t, []float64{30, 30, 10}, picked.SiteCovs["elev"])
	assert.Equal(t, 0.3, picked.YearlyCovs["precip"].At(0, 0))
	assert.Equal(t, 0.1, picked.YearlyCovs["precip"].At(2, 0))

	_, err = ds.Resample([]int{0, 1, 3})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDataShape))
}

func TestWithObservationsSharesCovariates(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 2, Years: 2, Occasions: 1}
	obs := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	ds, err := NewDataset(d, obs, map[string][]float64{"elev": {1, 2}}, nil, nil)
	require.NoError(t, err)

	replacement := mat.NewDense(2, 2, []float64{0, 0, 1, 1})
	swapped := ds.WithObservations(replacement)

	assert.Same(t, ds.Observations, obs)
	assert.Same(t, swapped.Observations, replacement)
	assert.Equal(t, ds.SiteCovs["elev"], swapped.SiteCovs["elev"])
	assert.Equal(t, ds.Design, swapped.Design)
}

func TestObservedOccupied(t *testing.T) {
	t.Parallel()

	d := SurveyDesign{Sites: 3, Years: 2, Occasions: 2}
	obs := mat.NewDense(3, 4, []float64{
		1, 0, 0, 0,
		0, 0, nan, 1,
		0, 0, 0, 0,
	})
	ds, err := NewDataset(d, obs, nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1}, ds.ObservedOccupied())
}
