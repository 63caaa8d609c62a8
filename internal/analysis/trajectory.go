// trajectory.go assembles the long-format yearly comparison of true, observed
// and model-expected occupied-site counts.
package analysis

import "math"

// TrajectorySeries names one series of the yearly occupancy comparison.
type TrajectorySeries string

const (
	SeriesTrue     TrajectorySeries = "True"
	SeriesObserved TrajectorySeries = "Observed"
	SeriesExpected TrajectorySeries = "Expected"
)

// TrajectoryRow is one (year, series) cell of the comparison table. StdErr is
// NaN except for Expected rows backed by a successful bootstrap.
type TrajectoryRow struct {
	Year   int // 1-based display year
	Series TrajectorySeries
	Count  float64
	StdErr float64
}

// BuildTrajectory assembles the comparison rows, series-major in the order
// True, Observed, Expected. The true counts may be nil when the latent states
// are unknown, as with imported field data; the bootstrap standard errors may
// be nil when the bootstrap failed or was skipped.
func BuildTrajectory(trueCounts, observed []int, expected, stdErrs []float64) []TrajectoryRow {
	years := len(expected)
	rows := make([]TrajectoryRow, 0, 3*years)

	if trueCounts != nil {
		for year := 0; year < years; year++ {
			rows = append(rows, TrajectoryRow{
				Year:   year + 1,
				Series: SeriesTrue,
				Count:  float64(trueCounts[year]),
				StdErr: math.NaN(),
			})
		}
	}
	for year := 0; year < years; year++ {
		rows = append(rows, TrajectoryRow{
			Year:   year + 1,
			Series: SeriesObserved,
			Count:  float64(observed[year]),
			StdErr: math.NaN(),
		})
	}
	for year := 0; year < years; year++ {
		se := math.NaN()
		if stdErrs != nil {
			se = stdErrs[year]
		}
		rows = append(rows, TrajectoryRow{
			Year:   year + 1,
			Series: SeriesExpected,
			Count:  expected[year],
			StdErr: se,
		})
	}
	return rows
}
