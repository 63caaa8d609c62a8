package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTrajectory(t *testing.T) {
	t.Parallel()

	trueCounts := []int{40, 35, 30}
	observed := []int{28, 25, 22}
	expected := []float64{38.5, 34.2, 29.9}
	stdErrs := []float64{2.1, 1.8, 1.5}

	rows := BuildTrajectory(trueCounts, observed, expected, stdErrs)
	require.Len(t, rows, 9)

	// Series-major: all True rows, then Observed, then Expected.
	for i := 0; i < 3; i++ {
		assert.Equal(t, SeriesTrue, rows[i].Series)
		assert.Equal(t, i+1, rows[i].Year)
		assert.Equal(t, float64(trueCounts[i]), rows[i].Count)
		assert.True(t, math.IsNaN(rows[i].StdErr))
	}
	for i := 0; i < 3; i++ {
		row := rows[3+i]
		assert.Equal(t, SeriesObserved, row.Series)
		assert.Equal(t, i+1, row.Year)
		assert.Equal(t, float64(observed[i]), row.Count)
		assert.True(t, math.IsNaN(row.StdErr))
	}
	for i := 0; i < 3; i++ {
		row := rows[6+i]
		assert.Equal(t, SeriesExpected, row.Series)
		assert.Equal(t, i+1, row.Year)
		assert.Equal(t, expected[i], row.Count)
		assert.Equal(t, stdErrs[i], row.StdErr)
	}
}

func TestBuildTrajectoryWithoutTruth(t *testing.T) {
	t.Parallel()

	rows := BuildTrajectory(nil, []int{10, 12}, []float64{11.0, 11.5}, []float64{0.5, 0.6})
	require.Len(t, rows, 4)
	assert.Equal(t, SeriesObserved, rows[0].Series)
	assert.Equal(t, SeriesObserved, rows[1].Series)
	assert.Equal(t, SeriesExpected, rows[2].Series)
	assert.Equal(t, SeriesExpected, rows[3].Series)
}

func TestBuildTrajectoryWithoutStandardErrors(t *testing.T) {
	t.Parallel()

	rows := BuildTrajectory([]int{5}, []int{4}, []float64{4.8}, nil)
	require.Len(t, rows, 3)
	last := rows[len(rows)-1]
	assert.Equal(t, SeriesExpected, last.Series)
	assert.True(t, math.IsNaN(last.StdErr))
}
